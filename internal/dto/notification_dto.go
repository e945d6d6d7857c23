package dto

import (
	"time"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// NotificationCreateRequest publishes a notification to one user. Message
// text is sanitized before persistence.
type NotificationCreateRequest struct {
	UserID   uint                   `json:"user_id" validate:"required,gt=0"`
	SenderID *uint                  `json:"sender_id" validate:"omitempty,gt=0"`
	Type     string                 `json:"type" validate:"required,max=64"`
	Title    string                 `json:"title" validate:"max=255"`
	Message  string                 `json:"message" validate:"required,max=2000"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NotificationResponse is the client view of one notification.
type NotificationResponse struct {
	ID        uint                   `json:"id"`
	UserID    uint                   `json:"user_id"`
	SenderID  *uint                  `json:"sender_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotificationResponse converts a model row into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		SenderID:  model.SenderID,
		Type:      model.Type,
		Title:     model.Title,
		Message:   model.Message,
		Metadata:  model.Metadata,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts model rows into DTOs.
func NewNotificationResponseSlice(rows []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, NewNotificationResponse(row))
	}

	return responses
}
