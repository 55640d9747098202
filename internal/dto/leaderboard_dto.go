package dto

import "time"

// LeaderboardEntry is one ranked row of a round's leaderboard.
type LeaderboardEntry struct {
	Rank               int        `json:"rank"`
	SubmissionID       uint       `json:"submission_id"`
	Title              string     `json:"title"`
	TeamID             *uint      `json:"team_id"`
	ParticipantID      uint       `json:"participant_id"`
	Score              float64    `json:"score"`
	ScoreCount         int        `json:"score_count"`
	Status             string     `json:"status"`
	SubmittedAt        time.Time  `json:"submitted_at"`
	PreviousRoundScore *float64   `json:"previous_round_score,omitempty"`
	CurrentRoundScore  *float64   `json:"current_round_score,omitempty"`
}

// LeaderboardResponse is the ranked projection for one round.
type LeaderboardResponse struct {
	HackathonID uint               `json:"hackathon_id"`
	RoundIndex  int                `json:"round_index"`
	FinalRound  bool               `json:"final_round"`
	Entries     []LeaderboardEntry `json:"entries"`
}
