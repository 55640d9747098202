package dto

import (
	"time"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// JudgeCreateRequest registers a judge for a hackathon.
type JudgeCreateRequest struct {
	JudgeID             uint   `json:"judge_id" validate:"required,gt=0"`
	Type                string `json:"type" validate:"required,oneof=platform sponsor hybrid"`
	SponsorCompany      string `json:"sponsor_company" validate:"required_unless=Type platform"`
	CanJudgeGeneralPS   bool   `json:"can_judge_general_ps"`
	CanJudgeSponsoredPS bool   `json:"can_judge_sponsored_ps"`
	MaxSubmissions      int    `json:"max_submissions" validate:"omitempty,gte=1"`
	ProblemStatementIDs []uint `json:"problem_statement_ids"`
}

// JudgeUpdateRequest mutates an existing judge assignment record.
type JudgeUpdateRequest struct {
	Type                *string `json:"type" validate:"omitempty,oneof=platform sponsor hybrid"`
	SponsorCompany      *string `json:"sponsor_company"`
	CanJudgeGeneralPS   *bool   `json:"can_judge_general_ps"`
	CanJudgeSponsoredPS *bool   `json:"can_judge_sponsored_ps"`
	Active              *bool   `json:"active"`
	MaxSubmissions      *int    `json:"max_submissions" validate:"omitempty,gte=1"`
	ProblemStatementIDs *[]uint `json:"problem_statement_ids"`
}

// RoundAssignmentResponse serializes a judge's docket for one round.
type RoundAssignmentResponse struct {
	RoundIndex     int    `json:"round_index"`
	SubmissionIDs  []uint `json:"submission_ids"`
	MaxSubmissions int    `json:"max_submissions"`
}

// JudgeResponse serializes a judge assignment record.
type JudgeResponse struct {
	ID                  uint                      `json:"id"`
	HackathonID         uint                      `json:"hackathon_id"`
	JudgeID             uint                      `json:"judge_id"`
	Type                string                    `json:"type"`
	SponsorCompany      string                    `json:"sponsor_company"`
	CanJudgeGeneralPS   bool                      `json:"can_judge_general_ps"`
	CanJudgeSponsoredPS bool                      `json:"can_judge_sponsored_ps"`
	Active              bool                      `json:"active"`
	MaxSubmissions      int                       `json:"max_submissions"`
	ProblemStatementIDs []uint                    `json:"problem_statement_ids"`
	RoundAssignments    []RoundAssignmentResponse `json:"round_assignments"`
	CreatedAt           time.Time                 `json:"created_at"`
}

// NewJudgeResponse maps the model to its response form.
func NewJudgeResponse(assignment models.JudgeAssignment) JudgeResponse {
	rounds := make([]RoundAssignmentResponse, 0, len(assignment.RoundAssignments))
	for _, ra := range assignment.RoundAssignments {
		rounds = append(rounds, RoundAssignmentResponse{
			RoundIndex:     ra.RoundIndex,
			SubmissionIDs:  ra.SubmissionIDs,
			MaxSubmissions: ra.MaxSubmissions,
		})
	}

	return JudgeResponse{
		ID:                  assignment.ID,
		HackathonID:         assignment.HackathonID,
		JudgeID:             assignment.JudgeID,
		Type:                assignment.Type,
		SponsorCompany:      assignment.SponsorCompany,
		CanJudgeGeneralPS:   assignment.CanJudgeGeneralPS,
		CanJudgeSponsoredPS: assignment.CanJudgeSponsoredPS,
		Active:              assignment.Active,
		MaxSubmissions:      assignment.MaxSubmissions,
		ProblemStatementIDs: assignment.ProblemStatementIDs,
		RoundAssignments:    rounds,
		CreatedAt:           assignment.CreatedAt,
	}
}

// NewJudgeResponseSlice maps a list of judge assignments.
func NewJudgeResponseSlice(assignments []models.JudgeAssignment) []JudgeResponse {
	responses := make([]JudgeResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewJudgeResponse(assignment))
	}
	return responses
}
