package models

import "time"

// Notification types emitted by the engine.
const (
	NotificationTypeJudgeAssignment    = "judge_assignment"
	NotificationTypeShortlist          = "shortlist"
	NotificationTypeWinnerAnnouncement = "winner_announcement"
)

// Notification is a stored message for a user. Delivery (email, push) is
// owned by an external collaborator; the engine only records and fans out.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	HackathonID uint      `gorm:"not null;index" json:"hackathon_id"`
	Type        string    `gorm:"size:48;not null" json:"type"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
