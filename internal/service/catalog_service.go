package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

// ErrAssignmentNotFound indicates the assignment definition does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrInvalidQuestionSet indicates the submitted question JSON violates the
// question schema.
var ErrInvalidQuestionSet = errors.New("invalid question set")

// questionSetSchema is deliberately permissive about question types:
// unknown types are stored as-is and simply score zero when auto-graded.
const questionSetSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["questionText"],
    "properties": {
      "questionText": {"type": "string", "minLength": 1},
      "type": {"type": "string"},
      "options": {"type": "array", "items": {"type": "string"}},
      "correctOption": {"type": "integer", "minimum": 0},
      "correctAnswer": {"type": "string"},
      "answer": {"type": "string"},
      "points": {"type": "number", "minimum": 0}
    }
  }
}`

var compiledQuestionSchema = jsonschema.MustCompileString("questions.json", questionSetSchema)

// AssignmentCatalogService manages assignment definitions across the four
// kinds. Every operation is bound to an explicit kind; the cross-kind union
// exists only in List.
type AssignmentCatalogService interface {
	Create(ctx context.Context, kind models.AssignmentKind, payload dto.AssignmentCreateRequest, actorID uint) (dto.AssignmentResponse, error)
	Update(ctx context.Context, kind models.AssignmentKind, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, kind models.AssignmentKind, id uint) (dto.AssignmentResponse, error)
	List(ctx context.Context, payload dto.AssignmentListRequest) ([]dto.AssignmentResponse, error)
	Delete(ctx context.Context, kind models.AssignmentKind, id, actorID uint) error
	Close(ctx context.Context, kind models.AssignmentKind, id uint) (dto.AssignmentResponse, error)
	Reopen(ctx context.Context, kind models.AssignmentKind, id uint) (dto.AssignmentResponse, error)
}

type assignmentCatalogService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentCatalogService constructs the catalog service.
func NewAssignmentCatalogService(assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentCatalogService {
	return &assignmentCatalogService{
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_catalog_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentCatalogService) Create(ctx context.Context, kind models.AssignmentKind, payload dto.AssignmentCreateRequest, actorID uint) (dto.AssignmentResponse, error) {
	if !kind.Valid() {
		return dto.AssignmentResponse{}, models.ErrInvalidKind
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := parseDueDate(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:            payload.Title,
		Description:      payload.Description,
		ClassID:          payload.ClassID,
		ProgramID:        payload.ProgramID,
		DueDate:          dueDate,
		Status:           models.AssignmentStatusActive,
		CreatedBy:        actorID,
		WordCount:        payload.WordCount,
		Requirements:     payload.Requirements,
		Duration:         payload.Duration,
		SubmissionFormat: payload.SubmissionFormat,
		SubprogramID:     payload.SubprogramID,
		Unit:             payload.Unit,
	}
	if payload.TotalPoints != nil {
		assignment.TotalPoints = *payload.TotalPoints
	}
	if payload.Status != nil {
		assignment.Status = *payload.Status
	}

	if kind.HasQuestions() && len(payload.Questions) > 0 {
		encoded, err := normalizeQuestions(payload.Questions)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Questions = encoded
	}

	assignment.NullIrrelevantFields(kind)

	if err := s.assignments.Create(ctx, kind, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Str("kind", kind.String()).
		Uint("assignment_id", assignment.ID).
		Uint("class_id", assignment.ClassID).
		Msg("assignment created")

	return dto.NewAssignmentResponse(kind, assignment), nil
}

func (s *assignmentCatalogService) Update(ctx context.Context, kind models.AssignmentKind, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.getOrNotFound(ctx, kind, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.ClassID != nil {
		assignment.ClassID = *payload.ClassID
	}
	if payload.ProgramID != nil {
		assignment.ProgramID = payload.ProgramID
	}
	if payload.DueDate != nil {
		dueDate, err := parseDueDate(payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.DueDate = dueDate
	}
	if payload.TotalPoints != nil {
		assignment.TotalPoints = *payload.TotalPoints
	}
	if payload.Status != nil {
		assignment.Status = *payload.Status
	}
	if payload.WordCount != nil {
		assignment.WordCount = payload.WordCount
	}
	if payload.Requirements != nil {
		assignment.Requirements = payload.Requirements
	}
	if payload.Duration != nil {
		assignment.Duration = payload.Duration
	}
	if payload.SubmissionFormat != nil {
		assignment.SubmissionFormat = payload.SubmissionFormat
	}
	if payload.SubprogramID != nil {
		assignment.SubprogramID = payload.SubprogramID
	}
	if payload.Unit != nil {
		assignment.Unit = payload.Unit
	}

	if kind.HasQuestions() && len(payload.Questions) > 0 {
		encoded, err := normalizeQuestions(payload.Questions)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Questions = encoded
	}

	assignment.NullIrrelevantFields(kind)

	if err := s.assignments.Update(ctx, kind, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(kind, assignment), nil
}

func (s *assignmentCatalogService) Get(ctx context.Context, kind models.AssignmentKind, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.getOrNotFound(ctx, kind, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(kind, assignment), nil
}

func (s *assignmentCatalogService) List(ctx context.Context, payload dto.AssignmentListRequest) ([]dto.AssignmentResponse, error) {
	filter := repository.AssignmentFilter{
		ClassID:   payload.ClassID,
		ProgramID: payload.ProgramID,
		CreatedBy: payload.CreatedBy,
	}

	if payload.Kind == "" {
		union, err := s.assignments.ListAllKinds(ctx, filter)
		if err != nil {
			return nil, err
		}
		return dto.NewAssignmentResponseSlice(union), nil
	}

	kind, err := models.ParseKind(payload.Kind)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignments.List(ctx, kind, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewAssignmentResponse(kind, assignment))
	}

	return responses, nil
}

func (s *assignmentCatalogService) Delete(ctx context.Context, kind models.AssignmentKind, id, actorID uint) error {
	if err := s.assignments.DeleteWithTombstone(ctx, kind, id, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().
		Str("kind", kind.String()).
		Uint("assignment_id", id).
		Uint("deleted_by", actorID).
		Msg("assignment deleted")

	return nil
}

func (s *assignmentCatalogService) Close(ctx context.Context, kind models.AssignmentKind, id uint) (dto.AssignmentResponse, error) {
	return s.setStatus(ctx, kind, id, models.AssignmentStatusClosed)
}

func (s *assignmentCatalogService) Reopen(ctx context.Context, kind models.AssignmentKind, id uint) (dto.AssignmentResponse, error) {
	return s.setStatus(ctx, kind, id, models.AssignmentStatusActive)
}

func (s *assignmentCatalogService) setStatus(ctx context.Context, kind models.AssignmentKind, id uint, status string) (dto.AssignmentResponse, error) {
	assignment, err := s.getOrNotFound(ctx, kind, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.Status != status {
		assignment.Status = status
		if err := s.assignments.Update(ctx, kind, &assignment); err != nil {
			return dto.AssignmentResponse{}, err
		}
	}

	return dto.NewAssignmentResponse(kind, assignment), nil
}

func (s *assignmentCatalogService) getOrNotFound(ctx context.Context, kind models.AssignmentKind, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	return assignment, nil
}

// normalizeQuestions validates the raw question JSON against the schema and
// re-encodes it through the typed set, dropping unknown fields.
func normalizeQuestions(raw json.RawMessage) (datatypes.JSON, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionSet, err)
	}
	if err := compiledQuestionSchema.Validate(decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionSet, err)
	}

	var questions []models.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionSet, err)
	}

	return models.EncodeQuestions(questions)
}

func parseDueDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date, expected RFC3339: %w", err)
	}
	return &parsed, nil
}
