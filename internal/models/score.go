package models

import (
	"time"

	"gorm.io/datatypes"
)

// CriterionScore is one judge's score against a single criterion.
type CriterionScore struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Weight   float64 `json:"weight"`
}

// Score is one judge's evaluation of one submission in one round. A score
// either carries per-criterion entries or only the precomputed total; the
// aggregator normalizes both shapes. Scores are written by judges and only
// read by the engine.
type Score struct {
	ID           uint                                `gorm:"primaryKey" json:"id"`
	SubmissionID uint                                `gorm:"not null;uniqueIndex:idx_score_unique" json:"submission_id"`
	JudgeID      uint                                `gorm:"not null;uniqueIndex:idx_score_unique" json:"judge_id"`
	RoundIndex   int                                 `gorm:"not null;uniqueIndex:idx_score_unique" json:"round_index"`
	Kind         string                              `gorm:"size:16;not null;uniqueIndex:idx_score_unique" json:"kind"`
	HackathonID  uint                                `gorm:"not null;index" json:"hackathon_id"`
	Criteria     datatypes.JSONSlice[CriterionScore] `json:"criteria"`
	Total        float64                             `json:"total"`
	CreatedAt    time.Time                           `json:"created_at"`
	UpdatedAt    time.Time                           `json:"updated_at"`
}

// HasCriteria reports whether the score carries per-criterion entries.
func (s Score) HasCriteria() bool {
	return len(s.Criteria) > 0
}
