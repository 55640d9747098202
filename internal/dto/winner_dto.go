package dto

// WinnerResolveRequest selects final-round winners.
type WinnerResolveRequest struct {
	Mode          string   `json:"mode" validate:"required,oneof=topN threshold manual"`
	TopN          *int     `json:"top_n" validate:"omitempty,gte=1"`
	Threshold     *float64 `json:"threshold" validate:"omitempty,gte=0,lte=10"`
	SubmissionIDs []uint   `json:"submission_ids"`
}

// WinnerEntry is one selected winner with its score breakdown.
type WinnerEntry struct {
	SubmissionID       uint     `json:"submission_id"`
	Title              string   `json:"title"`
	TeamID             *uint    `json:"team_id"`
	ParticipantID      uint     `json:"participant_id"`
	CombinedScore      float64  `json:"combined_score"`
	PreviousRoundScore *float64 `json:"previous_round_score,omitempty"`
	CurrentRoundScore  float64  `json:"current_round_score"`
	Rank               int      `json:"rank"`
}

// WinnerResult summarizes a winner-resolution call.
type WinnerResult struct {
	RoundIndex          int           `json:"round_index"`
	Winners             []WinnerEntry `json:"winners"`
	IsReassignment      bool          `json:"is_reassignment"`
	Displaced           int           `json:"displaced"`
	Failed              int           `json:"failed"`
	FailedSubmissionIDs []uint        `json:"failed_submission_ids,omitempty"`
}
