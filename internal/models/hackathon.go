package models

import (
	"time"

	"gorm.io/datatypes"
)

// Hackathon is the root record for one competition and owns its rounds,
// problem statements and per-round progress.
type Hackathon struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	Slug              string             `gorm:"size:128;uniqueIndex;not null" json:"slug"`
	Title             string             `gorm:"size:255;not null" json:"title"`
	Description       string             `gorm:"type:text" json:"description"`
	OrganizerID       uint               `gorm:"not null;index" json:"organizer_id"`
	MultiJudge        bool               `json:"multi_judge"`
	JudgesPerProject  int                `json:"judges_per_project"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Rounds            []Round            `gorm:"constraint:OnDelete:CASCADE" json:"rounds"`
	ProblemStatements []ProblemStatement `gorm:"constraint:OnDelete:CASCADE" json:"problem_statements"`
	Progress          []RoundProgress    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// FinalRoundIndex returns the index of the last configured round, or -1 when
// the hackathon has no rounds.
func (h Hackathon) FinalRoundIndex() int {
	return len(h.Rounds) - 1
}

// RoundAt returns the round with the given index.
func (h Hackathon) RoundAt(index int) (Round, bool) {
	for _, round := range h.Rounds {
		if round.Index == index {
			return round, true
		}
	}
	return Round{}, false
}

// Round types determine which submission kinds a round accepts.
const (
	RoundTypePPT     = "ppt"
	RoundTypeProject = "project"
	RoundTypeBoth    = "both"
)

// Criterion defines one judging criterion for a round and submission kind.
type Criterion struct {
	Name     string  `json:"name"`
	MaxScore float64 `json:"max_score"`
	Weight   float64 `json:"weight"`
}

// Round is one phase of a hackathon with its own submission window and
// judging criteria per submission kind.
type Round struct {
	ID                   uint                           `gorm:"primaryKey" json:"id"`
	HackathonID          uint                           `gorm:"not null;uniqueIndex:idx_round_hackathon_index" json:"hackathon_id"`
	Index                int                            `gorm:"column:round_index;not null;uniqueIndex:idx_round_hackathon_index" json:"index"`
	Name                 string                         `gorm:"size:255;not null" json:"name"`
	Type                 string                         `gorm:"size:16;not null" json:"type"`
	StartsAt             time.Time                      `gorm:"not null" json:"starts_at"`
	EndsAt               *time.Time                     `json:"ends_at"`
	PresentationCriteria datatypes.JSONSlice[Criterion] `json:"presentation_criteria"`
	ProjectCriteria      datatypes.JSONSlice[Criterion] `json:"project_criteria"`
	CreatedAt            time.Time                      `json:"created_at"`
	UpdatedAt            time.Time                      `json:"updated_at"`
}

// IsOpen reports whether the round accepts submissions at the reference time.
func (r Round) IsOpen(reference time.Time) bool {
	if reference.Before(r.StartsAt) {
		return false
	}
	if r.EndsAt != nil && reference.After(*r.EndsAt) {
		return false
	}
	return true
}

// CriteriaFor returns the criteria list for submissions of the given kind.
func (r Round) CriteriaFor(kind string) []Criterion {
	if kind == SubmissionKindProject {
		return r.ProjectCriteria
	}
	return r.PresentationCriteria
}

// Problem statement types control which judges may evaluate submissions
// under the statement.
const (
	ProblemStatementGeneral   = "general"
	ProblemStatementSponsored = "sponsored"
)

// ProblemStatement is a challenge topic participants submit against.
type ProblemStatement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	HackathonID uint      `gorm:"not null;index" json:"hackathon_id"`
	Statement   string    `gorm:"type:text;not null" json:"statement"`
	Type        string    `gorm:"size:16;not null" json:"type"`
	Sponsor     string    `gorm:"size:255" json:"sponsor"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsSponsored reports whether the statement is sponsor-owned.
func (p ProblemStatement) IsSponsored() bool {
	return p.Type == ProblemStatementSponsored
}
