package dto

import (
	"encoding/json"
	"time"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// AssignmentCreateRequest carries the shared and kind-specific fields for a
// new assignment definition. Fields not belonging to the target kind are
// nulled before persistence, never stored.
type AssignmentCreateRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Description string   `json:"description"`
	ClassID     uint     `json:"class_id" validate:"required,gt=0"`
	ProgramID   *uint    `json:"program_id" validate:"omitempty,gt=0"`
	DueDate     *string  `json:"due_date" validate:"omitempty"`
	TotalPoints *float64 `json:"total_points" validate:"omitempty,gte=0"`
	Status      *string  `json:"status" validate:"omitempty,oneof=active closed inactive"`

	WordCount        *int    `json:"word_count" validate:"omitempty,gt=0"`
	Requirements     *string `json:"requirements"`
	Duration         *int    `json:"duration" validate:"omitempty,gt=0"`
	SubmissionFormat *string `json:"submission_format" validate:"omitempty,max=100"`
	SubprogramID     *uint   `json:"subprogram_id" validate:"omitempty,gt=0"`
	Unit             *string `json:"unit" validate:"omitempty,max=100"`

	Questions json.RawMessage `json:"questions"`
}

// AssignmentUpdateRequest updates shared or kind-specific fields. Absent
// fields keep their stored values; kind-specific fields of other kinds are
// never resurrected by an update.
type AssignmentUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description"`
	ClassID     *uint    `json:"class_id" validate:"omitempty,gt=0"`
	ProgramID   *uint    `json:"program_id" validate:"omitempty,gt=0"`
	DueDate     *string  `json:"due_date"`
	TotalPoints *float64 `json:"total_points" validate:"omitempty,gte=0"`
	Status      *string  `json:"status" validate:"omitempty,oneof=active closed inactive"`

	WordCount        *int    `json:"word_count" validate:"omitempty,gt=0"`
	Requirements     *string `json:"requirements"`
	Duration         *int    `json:"duration" validate:"omitempty,gt=0"`
	SubmissionFormat *string `json:"submission_format" validate:"omitempty,max=100"`
	SubprogramID     *uint   `json:"subprogram_id" validate:"omitempty,gt=0"`
	Unit             *string `json:"unit" validate:"omitempty,max=100"`

	Questions json.RawMessage `json:"questions"`
}

// AssignmentListRequest holds catalog listing filters. Kind empty means the
// union across all four kinds.
type AssignmentListRequest struct {
	Kind      string `query:"kind"`
	ClassID   *uint  `query:"class_id"`
	ProgramID *uint  `query:"program_id"`
	CreatedBy *uint  `query:"created_by"`
}

// AssignmentResponse is returned to API clients when viewing definitions.
type AssignmentResponse struct {
	ID          uint       `json:"id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ClassID     uint       `json:"class_id"`
	ProgramID   *uint      `json:"program_id"`
	DueDate     *time.Time `json:"due_date"`
	TotalPoints float64    `json:"total_points"`
	Status      string     `json:"status"`
	CreatedBy   uint       `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	WordCount        *int    `json:"word_count,omitempty"`
	Requirements     *string `json:"requirements,omitempty"`
	Duration         *int    `json:"duration,omitempty"`
	SubmissionFormat *string `json:"submission_format,omitempty"`
	SubprogramID     *uint   `json:"subprogram_id,omitempty"`
	Unit             *string `json:"unit,omitempty"`

	Questions []models.Question `json:"questions,omitempty"`
}

// NewAssignmentResponse converts a model row into a DTO. Undecodable
// question JSON is surfaced as an empty set; listings never fail on it.
func NewAssignmentResponse(kind models.AssignmentKind, model models.Assignment) AssignmentResponse {
	questions, err := model.QuestionSet()
	if err != nil {
		questions = []models.Question{}
	}

	return AssignmentResponse{
		ID:               model.ID,
		Kind:             kind.String(),
		Title:            model.Title,
		Description:      model.Description,
		ClassID:          model.ClassID,
		ProgramID:        model.ProgramID,
		DueDate:          model.DueDate,
		TotalPoints:      model.TotalPoints,
		Status:           model.Status,
		CreatedBy:        model.CreatedBy,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
		WordCount:        model.WordCount,
		Requirements:     model.Requirements,
		Duration:         model.Duration,
		SubmissionFormat: model.SubmissionFormat,
		SubprogramID:     model.SubprogramID,
		Unit:             model.Unit,
		Questions:        questions,
	}
}

// NewAssignmentResponseSlice converts a tagged union listing into DTOs.
func NewAssignmentResponseSlice(rows []models.TaggedAssignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, NewAssignmentResponse(row.Kind, row.Assignment))
	}

	return responses
}
