package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

const notificationSendTimeout = 5 * time.Second

// NotificationService stores notifications and fans them out to the
// delivery collaborators. Fan-out is fire-and-forget: engine operations
// never wait on it and a delivery failure never rolls engine state back.
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	nodeID      string
}

type notificationEvent struct {
	Source       string                   `json:"source"`
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationService constructs the notification service. Redis and
// NATS are optional; a nil client disables that fan-out path.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) NotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:        repo,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "notification_service").Logger(),
		nodeID:      uuid.NewString(),
	}
}

// Send persists the notification and fans it out without blocking the
// caller. Failures are logged only.
func (s *notificationService) Send(ctx context.Context, notification models.Notification) {
	notification.Message = strings.TrimSpace(s.sanitizer.Sanitize(notification.Message))
	if notification.Message == "" || notification.UserID == 0 {
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
		defer cancel()

		if err := s.repo.Create(sendCtx, &notification); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", notification.UserID).Msg("failed to store notification")
			return
		}
		s.fanOut(sendCtx, dto.NewNotificationResponse(notification))
	}()
}

func (s *notificationService) ClearByType(ctx context.Context, hackathonID uint, notificationType string) (int64, error) {
	return s.repo.DeleteByHackathonAndType(ctx, hackathonID, notificationType)
}

func (s *notificationService) List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}
	if notification.UserID != userID {
		return dto.NotificationResponse{}, ErrNotificationNotFound
	}

	if !notification.Read {
		notification.Read = true
		if err := s.repo.Update(ctx, &notification); err != nil {
			return dto.NotificationResponse{}, err
		}
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) fanOut(ctx context.Context, notification dto.NotificationResponse) {
	event := notificationEvent{
		Source:       s.nodeID,
		Notification: notification,
		SentAt:       time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode notification event")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		err := s.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: s.redisStream,
			Values: map[string]interface{}{"payload": string(payload)},
		}).Err()
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish notification to redis stream")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish notification to nats")
		}
	}
}
