package dto

import (
	"time"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting an entry.
// Presentation submissions additionally carry a multipart file.
type SubmissionCreateRequest struct {
	HackathonID        uint   `json:"hackathon_id" form:"hackathon_id" validate:"required,gt=0"`
	RoundIndex         int    `json:"round_index" form:"round_index" validate:"gte=0"`
	TeamID             *uint  `json:"team_id" form:"team_id"`
	ParticipantID      uint   `json:"participant_id" form:"participant_id" validate:"required,gt=0"`
	ProblemStatementID uint   `json:"problem_statement_id" form:"problem_statement_id" validate:"required,gt=0"`
	Kind               string `json:"kind" form:"kind" validate:"required,oneof=presentation project"`
	Title              string `json:"title" form:"title" validate:"required,min=3,max=255"`
	RepoURL            string `json:"repo_url" form:"repo_url" validate:"required_if=Kind project,omitempty,url"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	HackathonID   *uint   `query:"hackathon_id"`
	RoundIndex    *int    `query:"round_index"`
	TeamID        *uint   `query:"team_id"`
	ParticipantID *uint   `query:"participant_id"`
	Status        *string `query:"status" validate:"omitempty,oneof=submitted shortlisted winner rejected"`
	Kind          *string `query:"kind" validate:"omitempty,oneof=presentation project"`
}

// TeamLite summarizes a team in submission responses.
type TeamLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ParticipantLite summarizes a participant.
type ParticipantLite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                  uint             `json:"id"`
	HackathonID         uint             `json:"hackathon_id"`
	RoundIndex          int              `json:"round_index"`
	Kind                string           `json:"kind"`
	Title               string           `json:"title"`
	AssetURL            string           `json:"asset_url,omitempty"`
	RepoURL             string           `json:"repo_url,omitempty"`
	Status              string           `json:"status"`
	RoundScore          *float64         `json:"round_score"`
	CombinedScore       *float64         `json:"combined_score"`
	ScoreCount          int              `json:"score_count"`
	ShortlistedAt       *time.Time       `json:"shortlisted_at"`
	ShortlistedForRound *int             `json:"shortlisted_for_round"`
	SubmittedAt         time.Time        `json:"submitted_at"`
	Team                *TeamLite        `json:"team,omitempty"`
	Participant         ParticipantLite  `json:"participant"`
	ProblemStatementID  uint             `json:"problem_statement_id"`
}

// NewSubmissionResponse maps the model to its response form.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:                  submission.ID,
		HackathonID:         submission.HackathonID,
		RoundIndex:          submission.RoundIndex,
		Kind:                submission.Kind,
		Title:               submission.Title,
		AssetURL:            submission.AssetURL,
		RepoURL:             submission.RepoURL,
		Status:              submission.Status,
		RoundScore:          submission.RoundScore,
		CombinedScore:       submission.CombinedScore,
		ScoreCount:          submission.ScoreCount,
		ShortlistedAt:       submission.ShortlistedAt,
		ShortlistedForRound: submission.ShortlistedForRound,
		SubmittedAt:         submission.SubmittedAt,
		Participant: ParticipantLite{
			ID:   submission.Participant.ID,
			Name: submission.Participant.Name,
		},
		ProblemStatementID: submission.ProblemStatementID,
	}

	if submission.Team != nil {
		response.Team = &TeamLite{ID: submission.Team.ID, Name: submission.Team.Name}
	}
	if response.Participant.ID == 0 {
		response.Participant.ID = submission.ParticipantID
	}

	return response
}

// NewSubmissionResponseSlice maps a list of submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
