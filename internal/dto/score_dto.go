package dto

import (
	"time"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// CriterionScorePayload carries one criterion score in a judge evaluation.
type CriterionScorePayload struct {
	Name  string  `json:"name" validate:"required"`
	Score float64 `json:"score" validate:"gte=0"`
}

// ScoreSubmitRequest is a judge's evaluation of a submission. Either
// per-criterion entries or a flat total must be provided.
type ScoreSubmitRequest struct {
	SubmissionID uint                    `json:"submission_id" validate:"required,gt=0"`
	Kind         string                  `json:"kind" validate:"required,oneof=presentation project"`
	Criteria     []CriterionScorePayload `json:"criteria" validate:"dive"`
	Total        *float64                `json:"total" validate:"omitempty,gte=0,lte=10"`
}

// ScoreResponse serializes a stored score.
type ScoreResponse struct {
	ID           uint                    `json:"id"`
	SubmissionID uint                    `json:"submission_id"`
	JudgeID      uint                    `json:"judge_id"`
	RoundIndex   int                     `json:"round_index"`
	Kind         string                  `json:"kind"`
	Criteria     []models.CriterionScore `json:"criteria"`
	Total        float64                 `json:"total"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// NewScoreResponse maps the model to its response form.
func NewScoreResponse(score models.Score) ScoreResponse {
	return ScoreResponse{
		ID:           score.ID,
		SubmissionID: score.SubmissionID,
		JudgeID:      score.JudgeID,
		RoundIndex:   score.RoundIndex,
		Kind:         score.Kind,
		Criteria:     score.Criteria,
		Total:        score.Total,
		UpdatedAt:    score.UpdatedAt,
	}
}
