package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/models"
)

const notificationPageSize = 50

// NotificationRepository handles persistence for notification rows.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) (models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Scopes(pageScope(limit, offset)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkRead flips the read flag and returns the updated row. Marking an
// already-read notification is a no-op, not an error.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uint) (models.Notification, error) {
	var row models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if err != nil {
		return models.Notification{}, err
	}

	if !row.Read {
		row.Read = true
		if err := r.db.WithContext(ctx).Model(&row).Update("read", true).Error; err != nil {
			return models.Notification{}, err
		}
	}
	return row, nil
}

func pageScope(limit, offset int) func(*gorm.DB) *gorm.DB {
	if limit <= 0 || limit > 100 {
		limit = notificationPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit).Offset(offset)
	}
}
