package dto

import (
	"time"

	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

// SubmitRequest carries a student's work for one assignment. Content holds
// free text for writing tasks and course work, or an answer map encoded as
// JSON for auto-gradable kinds. Files arrive as multipart form parts.
type SubmitRequest struct {
	AssignmentID uint   `json:"assignment_id" form:"assignment_id" validate:"required,gt=0"`
	StudentID    uint   `json:"student_id" form:"student_id" validate:"required,gt=0"`
	Content      string `json:"content" form:"content"`
}

// SubmissionListRequest narrows kind-wide submission listings.
type SubmissionListRequest struct {
	ClassID   *uint   `query:"class_id"`
	ProgramID *uint   `query:"program_id"`
	StudentID *uint   `query:"student_id"`
	Status    *string `query:"status" validate:"omitempty,oneof=submitted graded"`
}

// SubmissionResponse is the client view of a stored submission.
type SubmissionResponse struct {
	ID              uint       `json:"id"`
	Kind            string     `json:"kind"`
	AssignmentID    uint       `json:"assignment_id"`
	StudentID       uint       `json:"student_id"`
	Content         string     `json:"content"`
	FileURL         *string    `json:"file_url"`
	Score           *float64   `json:"score"`
	Status          string     `json:"status"`
	Feedback        *string    `json:"feedback"`
	FeedbackFileURL *string    `json:"feedback_file_url"`
	SubmissionDate  time.Time `json:"submission_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewSubmissionResponse converts a model row into a DTO.
func NewSubmissionResponse(kind models.AssignmentKind, model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:              model.ID,
		Kind:            kind.String(),
		AssignmentID:    model.AssignmentID,
		StudentID:       model.StudentID,
		Content:         model.Content,
		FileURL:         model.FileURL,
		Score:           model.Score,
		Status:          model.Status,
		Feedback:        model.Feedback,
		FeedbackFileURL: model.FeedbackFileURL,
		SubmissionDate:  model.SubmissionDate,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// SubmissionWithStudentResponse pairs a submission with the submitting
// student's identity for per-assignment teacher views.
type SubmissionWithStudentResponse struct {
	SubmissionResponse
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// NewSubmissionWithStudentSlice converts joined repository rows into DTOs.
func NewSubmissionWithStudentSlice(kind models.AssignmentKind, rows []repository.SubmissionWithStudent) []SubmissionWithStudentResponse {
	responses := make([]SubmissionWithStudentResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, SubmissionWithStudentResponse{
			SubmissionResponse: NewSubmissionResponse(kind, row.Submission),
			StudentName:        row.StudentName,
			StudentEmail:       row.StudentEmail,
		})
	}

	return responses
}

// SubmissionDetailResponse is the kind-wide listing row with assignment,
// class and program context attached.
type SubmissionDetailResponse struct {
	SubmissionResponse
	StudentName     string  `json:"student_name"`
	AssignmentTitle string  `json:"assignment_title"`
	TotalPoints     float64 `json:"total_points"`
	ClassID         uint    `json:"class_id"`
	ClassName       string  `json:"class_name"`
	ProgramName     string  `json:"program_name"`
}

// NewSubmissionDetailSlice converts joined repository rows into DTOs.
func NewSubmissionDetailSlice(kind models.AssignmentKind, rows []repository.SubmissionDetail) []SubmissionDetailResponse {
	responses := make([]SubmissionDetailResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, SubmissionDetailResponse{
			SubmissionResponse: NewSubmissionResponse(kind, row.Submission),
			StudentName:        row.StudentName,
			AssignmentTitle:    row.AssignmentTitle,
			TotalPoints:        row.TotalPoints,
			ClassID:            row.ClassID,
			ClassName:          row.ClassName,
			ProgramName:        row.ProgramName,
		})
	}

	return responses
}
