package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
)

type fakeNotificationService struct {
	published []dto.NotificationCreateRequest
	err       error
}

func (f *fakeNotificationService) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if f.err != nil {
		return dto.NotificationResponse{}, f.err
	}
	f.published = append(f.published, payload)
	return dto.NotificationResponse{UserID: payload.UserID, Type: payload.Type}, nil
}

func (f *fakeNotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	return nil, nil
}

func (f *fakeNotificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (f *fakeNotificationService) Subscribe(userID uint) (<-chan dto.NotificationResponse, func()) {
	return nil, func() {}
}

func (f *fakeNotificationService) Start(ctx context.Context) {}

func seedGradedSetup(t *testing.T) (*fakeAssignmentRepo, *fakeSubmissionRepo, models.Submission) {
	t.Helper()
	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo()

	assignment := models.Assignment{Title: "Essay", ClassID: 1, TotalPoints: 100, Status: models.AssignmentStatusActive, CreatedBy: 1}
	require.NoError(t, assignments.Create(context.Background(), models.KindWritingTask, &assignment))

	submission := models.Submission{
		AssignmentID:   assignment.ID,
		StudentID:      5,
		Content:        "draft",
		Status:         models.SubmissionStatusSubmitted,
		SubmissionDate: time.Now(),
	}
	require.NoError(t, submissions.Upsert(context.Background(), models.KindWritingTask, &submission))

	return assignments, submissions, submission
}

func TestGradeOverwritesScoreAndNotifies(t *testing.T) {
	assignments, submissions, submission := seedGradedSetup(t)
	notifications := &fakeNotificationService{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(submissions, assignments, notifications, validate, nil, 10, testLogger())

	graded, err := svc.Grade(context.Background(), models.KindWritingTask, submission.ID, dto.GradeSubmissionRequest{
		Score:    88,
		Feedback: "  well argued  ",
	}, nil, 42)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.NotNil(t, graded.Score)
	require.Equal(t, 88.0, *graded.Score)
	require.Equal(t, "well argued", *graded.Feedback)

	require.Len(t, notifications.published, 1)
	note := notifications.published[0]
	require.Equal(t, uint(5), note.UserID)
	require.Equal(t, models.NotificationTypeGradeSubmission, note.Type)
	require.Equal(t, uint(42), *note.SenderID)
	require.Equal(t, "writing_task", note.Metadata["kind"])

	// Second grade replaces the first wholesale.
	regraded, err := svc.Grade(context.Background(), models.KindWritingTask, submission.ID, dto.GradeSubmissionRequest{
		Score:    65,
		Feedback: "reconsidered",
	}, nil, 42)
	require.NoError(t, err)
	require.Equal(t, 65.0, *regraded.Score)
	require.Equal(t, "reconsidered", *regraded.Feedback)
	require.Len(t, notifications.published, 2)
}

func TestGradeSucceedsWhenNotificationFails(t *testing.T) {
	assignments, submissions, submission := seedGradedSetup(t)
	notifications := &fakeNotificationService{err: errors.New("broker down")}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(submissions, assignments, notifications, validate, nil, 10, testLogger())

	graded, err := svc.Grade(context.Background(), models.KindWritingTask, submission.ID, dto.GradeSubmissionRequest{
		Score: 75,
	}, nil, 42)
	require.NoError(t, err, "a notification outage must not lose the grade")
	require.Equal(t, 75.0, *graded.Score)

	stored, err := submissions.GetByID(context.Background(), models.KindWritingTask, submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusGraded, stored.Status)
}

func TestGradeRejectsScoreAboveTotalPoints(t *testing.T) {
	assignments, submissions, submission := seedGradedSetup(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(submissions, assignments, nil, validate, nil, 10, testLogger())

	_, err := svc.Grade(context.Background(), models.KindWritingTask, submission.ID, dto.GradeSubmissionRequest{
		Score: 150,
	}, nil, 42)
	require.ErrorIs(t, err, ErrScoreExceedsMax)

	stored, err := submissions.GetByID(context.Background(), models.KindWritingTask, submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, stored.Status)
}

func TestGradeMissingSubmission(t *testing.T) {
	assignments, submissions, _ := seedGradedSetup(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewGradingService(submissions, assignments, nil, validate, nil, 10, testLogger())

	_, err := svc.Grade(context.Background(), models.KindWritingTask, 999, dto.GradeSubmissionRequest{Score: 50}, nil, 42)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
