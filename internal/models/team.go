package models

import "time"

// Participant is a snapshot of a registered user. Authentication and profile
// ownership live in the external identity service; the engine only needs the
// id and a display name for notifications.
type Participant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Team groups participants for a hackathon. The leader submits on behalf of
// the team; eligibility cascades to every member.
type Team struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	HackathonID uint         `gorm:"not null;index" json:"hackathon_id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	LeaderID    uint         `gorm:"not null" json:"leader_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Members     []TeamMember `gorm:"constraint:OnDelete:CASCADE" json:"members"`
}

// MemberIDs returns the participant ids of every member, leader included.
func (t Team) MemberIDs() []uint {
	ids := make([]uint, 0, len(t.Members)+1)
	seen := map[uint]struct{}{t.LeaderID: {}}
	ids = append(ids, t.LeaderID)
	for _, member := range t.Members {
		if _, ok := seen[member.ParticipantID]; ok {
			continue
		}
		seen[member.ParticipantID] = struct{}{}
		ids = append(ids, member.ParticipantID)
	}
	return ids
}

// TeamMember links a participant to a team.
type TeamMember struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TeamID        uint      `gorm:"not null;uniqueIndex:idx_team_member" json:"team_id"`
	ParticipantID uint      `gorm:"not null;uniqueIndex:idx_team_member" json:"participant_id"`
	CreatedAt     time.Time `json:"created_at"`
}
