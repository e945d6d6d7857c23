package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/service"
	"github.com/bea-academy/academy-go-api/internal/utils"
)

// EnrollmentHandler exposes the class assignment endpoint that triggers the
// migration procedure.
type EnrollmentHandler struct {
	migration service.MigrationService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEnrollmentHandler builds an enrollment handler instance.
func NewEnrollmentHandler(migration service.MigrationService, validate *validator.Validate, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		migration: migration,
		validator: validate,
		logger:    logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	router.Post("/:id/assign-class", h.assignClass)
}

func (h *EnrollmentHandler) assignClass(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignClassRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.migration.AssignClass(c.Context(), studentID, payload.ClassID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student assigned to class", summary)
}

func (h *EnrollmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
