package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
)

type fakeNotificationRepo struct {
	created []models.Notification
	nextID  uint
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	f.nextID++
	notification.ID = f.nextID
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, row := range f.created {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID uint) (models.Notification, error) {
	for i, row := range f.created {
		if row.ID == id && row.UserID == userID {
			f.created[i].Read = true
			return f.created[i], nil
		}
	}
	return models.Notification{}, gorm.ErrRecordNotFound
}

func newNotificationServiceForTest(repo *fakeNotificationRepo) NotificationService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewNotificationService(repo, nil, "", nil, validate, testLogger())
}

func TestNotificationPublishSanitizesAndPersists(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newNotificationServiceForTest(repo)

	sender := uint(7)
	response, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:   5,
		SenderID: &sender,
		Type:     models.NotificationTypeGradeSubmission,
		Title:    "Graded",
		Message:  `Your essay scored <script>alert("x")</script>88 points`,
		Metadata: map[string]interface{}{"submission_id": 12},
	})
	require.NoError(t, err)
	require.NotContains(t, response.Message, "<script>")
	require.Contains(t, response.Message, "88 points")
	require.Len(t, repo.created, 1)
	require.Equal(t, uint(5), repo.created[0].UserID)
}

func TestNotificationPublishRejectsEmptyAfterSanitize(t *testing.T) {
	svc := newNotificationServiceForTest(&fakeNotificationRepo{})

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  5,
		Type:    "generic",
		Message: `<script>only markup</script>`,
	})
	require.Error(t, err)
}

func TestNotificationSubscribeReceivesPublished(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newNotificationServiceForTest(repo)

	channel, cleanup := svc.Subscribe(5)
	defer cleanup()

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  5,
		Type:    "generic",
		Message: "hello",
	})
	require.NoError(t, err)

	select {
	case received := <-channel:
		require.Equal(t, uint(5), received.UserID)
		require.Equal(t, "hello", received.Message)
	default:
		t.Fatal("expected a buffered notification for the subscriber")
	}
}

func TestNotificationListAndMarkRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newNotificationServiceForTest(repo)
	ctx := context.Background()

	published, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  5,
		Type:    "generic",
		Message: "unread",
	})
	require.NoError(t, err)

	listed, err := svc.List(ctx, 5, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.False(t, listed[0].Read)

	marked, err := svc.MarkRead(ctx, published.ID, 5)
	require.NoError(t, err)
	require.True(t, marked.Read)
}
