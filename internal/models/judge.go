package models

import (
	"time"

	"gorm.io/datatypes"
)

// Judge types determine problem-statement compatibility: sponsored
// statements go to sponsor/hybrid judges (or platform judges with explicit
// permission), general statements to platform/hybrid judges.
const (
	JudgeTypePlatform = "platform"
	JudgeTypeSponsor  = "sponsor"
	JudgeTypeHybrid   = "hybrid"
)

// JudgeAssignment is the per-(hackathon, judge) record holding the judge's
// type, permissions, capacity and the submissions assigned per round.
type JudgeAssignment struct {
	ID                  uint                      `gorm:"primaryKey" json:"id"`
	HackathonID         uint                      `gorm:"not null;uniqueIndex:idx_judge_hackathon" json:"hackathon_id"`
	JudgeID             uint                      `gorm:"not null;uniqueIndex:idx_judge_hackathon" json:"judge_id"`
	Type                string                    `gorm:"size:16;not null" json:"type"`
	SponsorCompany      string                    `gorm:"size:255" json:"sponsor_company"`
	CanJudgeGeneralPS   bool                      `json:"can_judge_general_ps"`
	CanJudgeSponsoredPS bool                      `json:"can_judge_sponsored_ps"`
	Active              bool                      `gorm:"not null;default:true" json:"active"`
	MaxSubmissions      int                       `json:"max_submissions"`
	ProblemStatementIDs datatypes.JSONSlice[uint] `json:"problem_statement_ids"`
	Version             int                       `gorm:"not null;default:0" json:"-"`
	CreatedAt           time.Time                 `json:"created_at"`
	UpdatedAt           time.Time                 `json:"updated_at"`
	RoundAssignments    []RoundAssignment         `gorm:"constraint:OnDelete:CASCADE" json:"round_assignments"`
}

// RoundAssignmentFor returns the judge's assignment entry for the round.
func (j JudgeAssignment) RoundAssignmentFor(roundIndex int) (RoundAssignment, bool) {
	for _, ra := range j.RoundAssignments {
		if ra.RoundIndex == roundIndex {
			return ra, true
		}
	}
	return RoundAssignment{}, false
}

// CanEvaluate reports whether the judge may be offered a submission under
// the given problem statement.
func (j JudgeAssignment) CanEvaluate(statement ProblemStatement) bool {
	if statement.IsSponsored() {
		switch j.Type {
		case JudgeTypeSponsor:
			return j.SponsorCompany == statement.Sponsor
		case JudgeTypeHybrid:
			return true
		case JudgeTypePlatform:
			return j.CanJudgeSponsoredPS
		}
		return false
	}

	// General statements are platform territory: sponsor judges are never
	// offered them, whatever their permission flags say.
	switch j.Type {
	case JudgeTypePlatform, JudgeTypeHybrid:
		return true
	}
	return false
}

// RoundAssignment holds the submissions a judge received for one round. The
// submission id list is a set: merges never introduce duplicates.
type RoundAssignment struct {
	ID                uint                      `gorm:"primaryKey" json:"id"`
	JudgeAssignmentID uint                      `gorm:"not null;uniqueIndex:idx_round_assignment" json:"judge_assignment_id"`
	RoundIndex        int                       `gorm:"not null;uniqueIndex:idx_round_assignment" json:"round_index"`
	SubmissionIDs     datatypes.JSONSlice[uint] `json:"submission_ids"`
	MaxSubmissions    int                       `json:"max_submissions"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// Contains reports whether the submission is already assigned.
func (r RoundAssignment) Contains(submissionID uint) bool {
	for _, id := range r.SubmissionIDs {
		if id == submissionID {
			return true
		}
	}
	return false
}
