package dto

import (
	"time"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// NotificationResponse serializes a stored notification.
type NotificationResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	HackathonID uint      `json:"hackathon_id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotificationResponse maps the model to its response form.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          notification.ID,
		UserID:      notification.UserID,
		HackathonID: notification.HackathonID,
		Type:        notification.Type,
		Message:     notification.Message,
		Read:        notification.Read,
		CreatedAt:   notification.CreatedAt,
	}
}

// NewNotificationResponseSlice maps a list of notifications.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}
	return responses
}
