package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/repository"
	"github.com/bea-academy/academy-go-api/internal/service"
	"github.com/bea-academy/academy-go-api/internal/utils"
)

// ReportHandler exposes the read-only assignment activity reports.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler builds a report handler instance.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/assignments", h.allStats)
	router.Get("/assignments/:kind", h.kindStats)
	router.Get("/assignments/:kind/performance", h.performance)
}

func (h *ReportHandler) reportFilter(c *fiber.Ctx) (repository.ReportFilter, error) {
	var filter repository.ReportFilter
	classID, err := parseQueryUint(c, "class_id")
	if err != nil {
		return filter, err
	}
	filter.ClassID = classID

	programID, err := parseQueryUint(c, "program_id")
	if err != nil {
		return filter, err
	}
	filter.ProgramID = programID

	return filter, nil
}

func (h *ReportHandler) allStats(c *fiber.Ctx) error {
	filter, err := h.reportFilter(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.AllKindStats(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment stats retrieved", stats)
}

func (h *ReportHandler) kindStats(c *fiber.Ctx) error {
	kind, err := kindFromParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter, err := h.reportFilter(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.KindStats(c.Context(), kind, filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment stats retrieved", stats)
}

func (h *ReportHandler) performance(c *fiber.Ctx) error {
	kind, err := kindFromParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter, err := h.reportFilter(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.service.PerformanceClusters(c.Context(), kind, filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "performance report retrieved", report)
}

func (h *ReportHandler) handleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, models.ErrInvalidKind) {
		return utils.SendError(c, fiber.StatusBadRequest, "unsupported assignment kind")
	}

	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
