package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// NotificationRepository defines data operations for stored notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error)
	GetByID(ctx context.Context, id uint) (models.Notification, error)
	Update(ctx context.Context, notification *models.Notification) error
	// DeleteByHackathonAndType removes every notification of the given type
	// for a hackathon. Winner reassignment uses this to drop stale
	// announcements before emitting new ones.
	DeleteByHackathonAndType(ctx context.Context, hackathonID uint, notificationType string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository instantiates the repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return models.Notification{}, err
	}
	return notification, nil
}

func (r *notificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}

func (r *notificationRepository) DeleteByHackathonAndType(ctx context.Context, hackathonID uint, notificationType string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("hackathon_id = ? AND type = ?", hackathonID, notificationType).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
