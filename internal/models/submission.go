package models

import "time"

// Submission kinds distinguish presentation decks from project references.
const (
	SubmissionKindPresentation = "presentation"
	SubmissionKindProject      = "project"
)

// Submission statuses. The evaluation engine moves submissions between
// submitted, shortlisted and winner; rejected is set by organizer CRUD.
const (
	SubmissionStatusSubmitted   = "submitted"
	SubmissionStatusShortlisted = "shortlisted"
	SubmissionStatusWinner      = "winner"
	SubmissionStatusRejected    = "rejected"
)

// Submission is one team's (or individual's) entry for a round.
type Submission struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	HackathonID         uint             `gorm:"not null;index" json:"hackathon_id"`
	RoundIndex          int              `gorm:"not null;index" json:"round_index"`
	TeamID              *uint            `json:"team_id"`
	ParticipantID       uint             `gorm:"not null" json:"participant_id"`
	ProblemStatementID  uint             `gorm:"not null" json:"problem_statement_id"`
	Kind                string           `gorm:"size:16;not null" json:"kind"`
	Title               string           `gorm:"size:255" json:"title"`
	AssetURL            string           `gorm:"size:512" json:"asset_url"`
	RepoURL             string           `gorm:"size:512" json:"repo_url"`
	Status              string           `gorm:"size:16;not null" json:"status"`
	RoundScore          *float64         `json:"round_score"`
	CombinedScore       *float64         `json:"combined_score"`
	ScoreCount          int              `json:"score_count"`
	ShortlistedAt       *time.Time       `json:"shortlisted_at"`
	ShortlistedForRound *int             `json:"shortlisted_for_round"`
	SubmittedAt         time.Time        `gorm:"not null" json:"submitted_at"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	Team                *Team            `gorm:"constraint:OnDelete:SET NULL" json:"team,omitempty"`
	Participant         Participant      `json:"participant"`
	ProblemStatement    ProblemStatement `json:"problem_statement"`
}

// ActorID identifies who the submission belongs to for eligibility purposes:
// the team when one exists, otherwise the individual participant.
func (s Submission) ActorID() uint {
	if s.TeamID != nil {
		return *s.TeamID
	}
	return s.ParticipantID
}

// IsEvaluated reports whether at least one judge scored the submission. A
// zero average with no scores means "not evaluated", not a true zero.
func (s Submission) IsEvaluated() bool {
	return s.ScoreCount > 0
}
