package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bea-academy/academy-go-api/internal/dto"
	"github.com/bea-academy/academy-go-api/internal/models"
	"github.com/bea-academy/academy-go-api/internal/observability"
	"github.com/bea-academy/academy-go-api/internal/repository"
)

const (
	subscriberBuffer = 16
	natsQueueGroup   = "academy-notifications"
)

// NotificationService persists notifications and delivers them to connected
// clients. Delivery fans out in-process first; when Redis or NATS are
// configured the event is republished so subscribers on other nodes see it.
type NotificationService interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error)
	Subscribe(userID uint) (<-chan dto.NotificationResponse, func())
	Start(ctx context.Context)
}

// wireEvent is the cross-node envelope. Origin carries the publishing node's
// identity so a node never re-delivers its own events.
type wireEvent struct {
	Origin       string                   `json:"origin"`
	Notification dto.NotificationResponse `json:"notification"`
	PublishedAt  time.Time                `json:"published_at"`
}

type notificationService struct {
	repo      repository.NotificationRepository
	redis     *redis.Client
	nats      *nats.Conn
	channel   string
	subject   string
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	hub       *subscriberHub
	nodeID    string
}

// NewNotificationService constructs a notification service. Redis and NATS
// are optional; with both nil the service still delivers in-process.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	var channel, subject string
	if channelBase != "" {
		channel = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:      repo,
		redis:     redisClient,
		nats:      natsConn,
		channel:   channel,
		subject:   subject,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "notification_service").Logger(),
		tracer:    otel.Tracer("github.com/bea-academy/academy-go-api/internal/service/notification"),
		hub:       newSubscriberHub(),
		nodeID:    uuid.NewString(),
	}
}

// Start launches the cross-node consumers. Safe to call when neither broker
// is configured.
func (s *notificationService) Start(ctx context.Context) {
	if s.redis != nil && s.channel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.subject != "" {
		s.consumeNATS(ctx)
	}
}

func (s *notificationService) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, err
	}

	message := s.clean(payload.Message)
	if message == "" {
		return dto.NotificationResponse{}, errors.New("notification message empty after sanitization")
	}

	ctx, span := s.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(
		attribute.Int64("notification.user_id", int64(payload.UserID)),
		attribute.String("notification.type", payload.Type),
	))
	defer span.End()

	row := models.Notification{
		UserID:   payload.UserID,
		SenderID: payload.SenderID,
		Type:     payload.Type,
		Title:    s.clean(payload.Title),
		Message:  message,
		Metadata: payload.Metadata,
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(row)
	s.hub.push(response.UserID, response)
	if err := s.republish(ctx, response); err != nil {
		s.logger.Warn().Err(err).Msg("failed to republish notification")
	}
	observability.NotificationsPublishedTotal().WithLabelValues(response.Type).Inc()

	return response, nil
}

func (s *notificationService) List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	if userID == 0 {
		return nil, errors.New("user id is required")
	}

	rows, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(rows), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "notifications.mark_read", trace.WithAttributes(
		attribute.Int64("notification.id", int64(id)),
		attribute.Int64("notification.user_id", int64(userID)),
	))
	defer span.End()

	row, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, err
	}
	return dto.NewNotificationResponse(row), nil
}

func (s *notificationService) Subscribe(userID uint) (<-chan dto.NotificationResponse, func()) {
	ch := s.hub.add(userID)
	observability.StreamClientsActive().Inc()

	return ch, func() {
		s.hub.remove(userID, ch)
		observability.StreamClientsActive().Dec()
	}
}

func (s *notificationService) clean(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *notificationService) republish(ctx context.Context, notification dto.NotificationResponse) error {
	payload, err := json.Marshal(wireEvent{
		Origin:       s.nodeID,
		Notification: notification,
		PublishedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if s.redis != nil && s.channel != "" {
		if err := s.redis.Publish(ctx, s.channel, payload).Err(); err != nil {
			return err
		}
	}
	if s.nats != nil && s.subject != "" {
		if err := s.nats.Publish(s.subject, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *notificationService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.channel)
	defer func() { _ = pubsub.Close() }()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				s.logger.Error().Msg("notification redis subscription closed")
				return
			}
			s.relay([]byte(msg.Payload))
		}
	}
}

func (s *notificationService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.subject, natsQueueGroup, func(msg *nats.Msg) {
		s.relay(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats notifications subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain nats notification subscription")
		}
	}()
}

// relay delivers an event that originated on another node to local
// subscribers. The row was already persisted by the origin node.
func (s *notificationService) relay(payload []byte) {
	var event wireEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid notification event payload")
		return
	}
	if event.Origin == s.nodeID {
		return
	}

	s.hub.push(event.Notification.UserID, event.Notification)
}

// subscriberHub tracks per-user delivery channels. Slow consumers drop
// events rather than block the publisher.
type subscriberHub struct {
	mu    sync.RWMutex
	users map[uint]map[chan dto.NotificationResponse]struct{}
}

func newSubscriberHub() *subscriberHub {
	return &subscriberHub{users: make(map[uint]map[chan dto.NotificationResponse]struct{})}
}

func (h *subscriberHub) add(userID uint) chan dto.NotificationResponse {
	ch := make(chan dto.NotificationResponse, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan dto.NotificationResponse]struct{})
	}
	h.users[userID][ch] = struct{}{}
	return ch
}

func (h *subscriberHub) remove(userID uint, ch <-chan dto.NotificationResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for candidate := range h.users[userID] {
		if candidate == ch {
			delete(h.users[userID], candidate)
			close(candidate)
			break
		}
	}
	if len(h.users[userID]) == 0 {
		delete(h.users, userID)
	}
}

func (h *subscriberHub) push(userID uint, notification dto.NotificationResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.users[userID] {
		select {
		case ch <- notification:
		default:
		}
	}
}
