package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/service"
	"github.com/bea-academy/academy-go-api/internal/utils"
)

// AssignmentHandler manages the assignment catalog endpoints. The kind is
// always a path segment; the union listing is the one kindless route.
type AssignmentHandler struct {
	catalog service.AssignmentCatalogService
	logger  zerolog.Logger
}

// NewAssignmentHandler builds an assignment handler instance.
func NewAssignmentHandler(catalog service.AssignmentCatalogService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		catalog: catalog,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/:kind", h.create)
	router.Get("/:kind/:id", h.get)
	router.Patch("/:kind/:id", h.update)
	router.Delete("/:kind/:id", h.delete)
	router.Post("/:kind/:id/close", h.close)
	router.Post("/:kind/:id/reopen", h.reopen)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	request := dto.AssignmentListRequest{Kind: c.Query("kind")}

	classID, err := parseQueryUint(c, "class_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	request.ClassID = classID

	programID, err := parseQueryUint(c, "program_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	request.ProgramID = programID

	createdBy, err := parseQueryUint(c, "created_by")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	request.CreatedBy = createdBy

	assignments, err := h.catalog.List(c.Context(), request)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	kind, err := kindFromParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.catalog.Create(c.Context(), kind, payload, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	kind, id, err := h.kindAndID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.catalog.Get(c.Context(), kind, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	kind, id, err := h.kindAndID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.catalog.Update(c.Context(), kind, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	kind, id, err := h.kindAndID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.catalog.Delete(c.Context(), kind, id, userIDFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment deleted", nil)
}

func (h *AssignmentHandler) close(c *fiber.Ctx) error {
	kind, id, err := h.kindAndID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.catalog.Close(c.Context(), kind, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment closed", assignment)
}

func (h *AssignmentHandler) reopen(c *fiber.Ctx) error {
	kind, id, err := h.kindAndID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.catalog.Reopen(c.Context(), kind, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment reopened", assignment)
}

func (h *AssignmentHandler) kindAndID(c *fiber.Ctx) (models.AssignmentKind, uint, error) {
	kind, err := kindFromParam(c)
	if err != nil {
		return "", 0, err
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, models.ErrInvalidKind):
		return utils.SendError(c, fiber.StatusBadRequest, "unsupported assignment kind")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrInvalidQuestionSet):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
