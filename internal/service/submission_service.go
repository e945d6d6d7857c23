package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/grading"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/observability"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrAssignmentClosed indicates the assignment no longer accepts submissions.
var ErrAssignmentClosed = errors.New("assignment is closed")

// ErrStudentNotFound indicates the submitting student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// SubmissionService orchestrates the submit path and submission listings.
// Submitting is an upsert: one row per (assignment, student), resubmission
// overwrites content and resets the grading state but never touches feedback.
type SubmissionService interface {
	Submit(ctx context.Context, kind models.AssignmentKind, payload dto.SubmitRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	Get(ctx context.Context, kind models.AssignmentKind, id uint) (dto.SubmissionResponse, error)
	GetForStudent(ctx context.Context, kind models.AssignmentKind, assignmentID, studentID uint) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, kind models.AssignmentKind, assignmentID uint) ([]dto.SubmissionWithStudentResponse, error)
	ListForKind(ctx context.Context, kind models.AssignmentKind, payload dto.SubmissionListRequest) ([]dto.SubmissionDetailResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	validator   *validator.Validate
	uploads     *uploader
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. The storage
// backend may be nil when uploads are disabled.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	storage FileStorage,
	maxUploadMB int,
	logger zerolog.Logger,
) SubmissionService {
	service := &submissionService{
		submissions: submissions,
		assignments: assignments,
		students:    students,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/bea-academy/academy-go-api/internal/service/submission"),
		now:         time.Now,
	}
	if storage != nil {
		service.uploads = newUploader(storage, maxUploadMB, logger)
	}
	return service
}

func (s *submissionService) Submit(ctx context.Context, kind models.AssignmentKind, payload dto.SubmitRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submissions.submit", trace.WithAttributes(
		attribute.String("submission.kind", kind.String()),
		attribute.Int64("submission.assignment_id", int64(payload.AssignmentID)),
		attribute.Int64("submission.student_id", int64(payload.StudentID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, kind, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assignment_not_found")
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if assignment.IsClosed() {
		span.SetStatus(codes.Error, "assignment_closed")
		return dto.SubmissionResponse{}, ErrAssignmentClosed
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "student_not_found")
			return dto.SubmissionResponse{}, ErrStudentNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID:   payload.AssignmentID,
		StudentID:      payload.StudentID,
		Content:        payload.Content,
		Status:         models.SubmissionStatusSubmitted,
		SubmissionDate: s.now(),
	}

	if file != nil {
		if s.uploads == nil {
			return dto.SubmissionResponse{}, errors.New("file uploads are not configured")
		}
		url, err := s.uploads.Store(ctx, file)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "upload_failed")
			return dto.SubmissionResponse{}, err
		}
		submission.FileURL = &url
	}

	autoGraded := s.autoGrade(kind, assignment, &submission)
	span.SetAttributes(attribute.Bool("submission.autograded", autoGraded))

	if err := s.submissions.Upsert(ctx, kind, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert_failed")
		return dto.SubmissionResponse{}, err
	}

	stored, err := s.submissions.GetByAssignmentAndStudent(ctx, kind, payload.AssignmentID, payload.StudentID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsTotal().WithLabelValues(kind.String(), strconv.FormatBool(autoGraded)).Inc()
	s.logger.Info().
		Str("kind", kind.String()).
		Uint("assignment_id", payload.AssignmentID).
		Uint("student_id", payload.StudentID).
		Bool("autograded", autoGraded).
		Msg("submission stored")

	return dto.NewSubmissionResponse(kind, stored), nil
}

// autoGrade scores the submission inline when the kind supports it and the
// assignment carries questions. Any failure downgrades to a plain ungraded
// submission; a malformed answer payload must never block the submit.
func (s *submissionService) autoGrade(kind models.AssignmentKind, assignment models.Assignment, submission *models.Submission) bool {
	if !kind.AutoGradable() {
		return false
	}

	questions, err := assignment.QuestionSet()
	if err != nil {
		s.logger.Warn().Err(err).
			Str("kind", kind.String()).
			Uint("assignment_id", assignment.ID).
			Msg("stored question set is unreadable, skipping auto-grade")
		return false
	}
	if len(questions) == 0 {
		return false
	}

	answers, err := grading.ParseAnswers(submission.Content)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("kind", kind.String()).
			Uint("assignment_id", assignment.ID).
			Uint("student_id", submission.StudentID).
			Msg("answers not parseable, storing ungraded")
		return false
	}

	result := grading.Grade(questions, answers)
	if !result.Gradable {
		return false
	}

	score := result.Score
	submission.Score = &score
	submission.Status = models.SubmissionStatusGraded

	return true
}

func (s *submissionService) Get(ctx context.Context, kind models.AssignmentKind, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(kind, submission), nil
}

func (s *submissionService) GetForStudent(ctx context.Context, kind models.AssignmentKind, assignmentID, studentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, kind, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(kind, submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, kind models.AssignmentKind, assignmentID uint) ([]dto.SubmissionWithStudentResponse, error) {
	if _, err := s.assignments.GetByID(ctx, kind, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	rows, err := s.submissions.ListByAssignment(ctx, kind, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionWithStudentSlice(kind, rows), nil
}

func (s *submissionService) ListForKind(ctx context.Context, kind models.AssignmentKind, payload dto.SubmissionListRequest) ([]dto.SubmissionDetailResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	rows, err := s.submissions.ListForKind(ctx, kind, repository.SubmissionFilter{
		ClassID:   payload.ClassID,
		ProgramID: payload.ProgramID,
		StudentID: payload.StudentID,
		Status:    payload.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionDetailSlice(kind, rows), nil
}
