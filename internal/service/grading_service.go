package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

// ErrScoreExceedsMax indicates a grading score surpasses the assignment's
// total points.
var ErrScoreExceedsMax = errors.New("score exceeds assignment total points")

// GradingService applies manual grades to stored submissions. Grading always
// overwrites: a second grade replaces score and feedback wholesale. The
// student notification is a side effect, never a precondition — a broker
// outage does not lose a grade.
type GradingService interface {
	Grade(ctx context.Context, kind models.AssignmentKind, submissionID uint, payload dto.GradeSubmissionRequest, feedbackFile *multipart.FileHeader, actorID uint) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions   repository.SubmissionRepository
	assignments   repository.AssignmentRepository
	notifications NotificationService
	validator     *validator.Validate
	uploads       *uploader
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewGradingService constructs the grading service. Notifications may be nil
// when the notification pipeline is disabled.
func NewGradingService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	notifications NotificationService,
	validate *validator.Validate,
	storage FileStorage,
	maxUploadMB int,
	logger zerolog.Logger,
) GradingService {
	service := &gradingService{
		submissions:   submissions,
		assignments:   assignments,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "grading_service").Logger(),
		tracer:        otel.Tracer("github.com/bea-academy/academy-go-api/internal/service/grading"),
		now:           time.Now,
	}
	if storage != nil {
		service.uploads = newUploader(storage, maxUploadMB, logger)
	}
	return service
}

func (s *gradingService) Grade(ctx context.Context, kind models.AssignmentKind, submissionID uint, payload dto.GradeSubmissionRequest, feedbackFile *multipart.FileHeader, actorID uint) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.update", trace.WithAttributes(
		attribute.String("grading.kind", kind.String()),
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actorID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, kind, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, kind, submission.AssignmentID)
	if err == nil && assignment.TotalPoints > 0 && payload.Score > assignment.TotalPoints+1e-9 {
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.SubmissionResponse{}, ErrScoreExceedsMax
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if feedbackFile != nil {
		if s.uploads == nil {
			return dto.SubmissionResponse{}, errors.New("file uploads are not configured")
		}
		url, err := s.uploads.Store(ctx, feedbackFile)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "feedback_upload_failed")
			return dto.SubmissionResponse{}, err
		}
		submission.FeedbackFileURL = &url
	}

	score := payload.Score
	feedback := strings.TrimSpace(payload.Feedback)
	submission.Score = &score
	submission.Feedback = &feedback
	submission.Status = models.SubmissionStatusGraded

	if err := s.submissions.Update(ctx, kind, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update_failed")
		return dto.SubmissionResponse{}, err
	}

	s.notifyStudent(ctx, kind, submission, actorID)

	span.SetAttributes(attribute.Float64("grading.score", score))
	s.logger.Info().
		Str("kind", kind.String()).
		Uint("submission_id", submission.ID).
		Uint("student_id", submission.StudentID).
		Float64("score", score).
		Msg("submission graded")

	return dto.NewSubmissionResponse(kind, submission), nil
}

// notifyStudent publishes the grading notification best-effort. The grade is
// already durable; failures here are logged and dropped.
func (s *gradingService) notifyStudent(ctx context.Context, kind models.AssignmentKind, submission models.Submission, actorID uint) {
	if s.notifications == nil {
		return
	}

	sender := actorID
	request := dto.NotificationCreateRequest{
		UserID:   submission.StudentID,
		SenderID: &sender,
		Type:     models.NotificationTypeGradeSubmission,
		Title:    "Your submission has been graded",
		Message:  "A teacher has graded your submission. Open it to see your score and feedback.",
		Metadata: map[string]interface{}{
			"submission_id": submission.ID,
			"assignment_id": submission.AssignmentID,
			"kind":          kind.String(),
			"score":         submission.Score,
		},
	}

	if _, err := s.notifications.Publish(ctx, request); err != nil {
		s.logger.Warn().Err(err).
			Uint("submission_id", submission.ID).
			Uint("student_id", submission.StudentID).
			Msg("failed to publish grading notification")
	}
}
