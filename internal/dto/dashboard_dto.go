package dto

// RoundBreakdown counts submissions per status within one round.
type RoundBreakdown struct {
	RoundIndex  int            `json:"round_index"`
	Submissions int            `json:"submissions"`
	ByStatus    map[string]int `json:"by_status"`
	Evaluated   int            `json:"evaluated"`
}

// JudgeCoverage reports how loaded one judge is for a hackathon.
type JudgeCoverage struct {
	JudgeID        uint `json:"judge_id"`
	Assigned       int  `json:"assigned"`
	Scored         int  `json:"scored"`
	MaxSubmissions int  `json:"max_submissions"`
}

// OrganizerDashboardResponse aggregates a hackathon's evaluation state for
// the organizer view.
type OrganizerDashboardResponse struct {
	HackathonID      uint             `json:"hackathon_id"`
	TotalSubmissions int              `json:"total_submissions"`
	TotalJudges      int              `json:"total_judges"`
	ActiveJudges     int              `json:"active_judges"`
	Rounds           []RoundBreakdown `json:"rounds"`
	Judges           []JudgeCoverage  `json:"judges"`
}
