package dto

// ShortlistRequest selects which submissions advance from a round.
type ShortlistRequest struct {
	RoundIndex int      `json:"round_index" validate:"gte=0"`
	Mode       string   `json:"mode" validate:"required,oneof=topN threshold date"`
	TopN       *int     `json:"top_n" validate:"omitempty,gte=1"`
	Threshold  *float64 `json:"threshold" validate:"omitempty,gte=0,lte=10"`
}

// ShortlistResult summarizes a shortlisting decision.
type ShortlistResult struct {
	RoundIndex             int    `json:"round_index"`
	SelectedSubmissionIDs  []uint `json:"selected_submission_ids"`
	SelectedActorIDs       []uint `json:"selected_actor_ids"`
	EligibleParticipantIDs []uint `json:"eligible_participant_ids"`
	Updated                int    `json:"updated"`
	Failed                 int    `json:"failed"`
	FailedSubmissionIDs    []uint `json:"failed_submission_ids,omitempty"`
}

// ToggleShortlistRequest flips a single submission in or out of the round's
// shortlist.
type ToggleShortlistRequest struct {
	RoundIndex   int  `json:"round_index" validate:"gte=0"`
	SubmissionID uint `json:"submission_id" validate:"required,gt=0"`
	Shortlisted  bool `json:"shortlisted"`
}

// EligibilityResponse answers "can this actor submit to round R now".
// Eligible and round-open are distinct: a team can be eligible before the
// round window opens.
type EligibilityResponse struct {
	HackathonID uint   `json:"hackathon_id"`
	RoundIndex  int    `json:"round_index"`
	ActorID     uint   `json:"actor_id"`
	Eligible    bool   `json:"eligible"`
	RoundOpen   bool   `json:"round_open"`
	Source      string `json:"source"`
}
