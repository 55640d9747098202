package models

import (
	"time"

	"gorm.io/datatypes"
)

// RoundProgress records the outcome of shortlisting (or winner resolution)
// for one round. Absence of a row means the round has not been decided yet.
type RoundProgress struct {
	ID                       uint                      `gorm:"primaryKey" json:"id"`
	HackathonID              uint                      `gorm:"not null;uniqueIndex:idx_progress_hackathon_round" json:"hackathon_id"`
	RoundIndex               int                       `gorm:"not null;uniqueIndex:idx_progress_hackathon_round" json:"round_index"`
	ShortlistedSubmissionIDs datatypes.JSONSlice[uint] `json:"shortlisted_submission_ids"`
	ShortlistedTeamIDs       datatypes.JSONSlice[uint] `json:"shortlisted_team_ids"`
	EligibleParticipantIDs   datatypes.JSONSlice[uint] `json:"eligible_participant_ids"`
	RoundCompleted           bool                      `gorm:"not null" json:"round_completed"`
	Version                  int                       `gorm:"not null;default:0" json:"-"`
	CreatedAt                time.Time                 `json:"created_at"`
	UpdatedAt                time.Time                 `json:"updated_at"`
}

// AllowsActor reports whether the given actor id appears in the eligible
// team or participant sets.
func (p RoundProgress) AllowsActor(actorID uint) bool {
	for _, id := range p.ShortlistedTeamIDs {
		if id == actorID {
			return true
		}
	}
	for _, id := range p.EligibleParticipantIDs {
		if id == actorID {
			return true
		}
	}
	return false
}

// ContainsSubmission reports whether the submission id was shortlisted.
func (p RoundProgress) ContainsSubmission(submissionID uint) bool {
	for _, id := range p.ShortlistedSubmissionIDs {
		if id == submissionID {
			return true
		}
	}
	return false
}
