package dto

// AllocationRequest asks the engine to distribute submissions to judges for
// one round.
type AllocationRequest struct {
	RoundIndex         int          `json:"round_index" validate:"gte=0"`
	SubmissionIDs      []uint       `json:"submission_ids" validate:"required,min=1"`
	JudgeAssignmentIDs []uint       `json:"judge_assignment_ids" validate:"required,min=1"`
	Mode               string       `json:"mode" validate:"required,oneof=single multi"`
	Distribution       string       `json:"distribution" validate:"required,oneof=manual equal"`
	Capacities         map[uint]int `json:"capacities"`
	JudgesPerProject   int          `json:"judges_per_project" validate:"omitempty,gte=1,lte=10"`
}

// JudgeAllocation reports what one judge received in an allocation call.
type JudgeAllocation struct {
	JudgeAssignmentID uint   `json:"judge_assignment_id"`
	JudgeID           uint   `json:"judge_id"`
	AssignedIDs       []uint `json:"assigned_ids"`
}

// AllocationFailure reports a per-judge or per-submission failure that did
// not abort the batch.
type AllocationFailure struct {
	JudgeAssignmentID uint   `json:"judge_assignment_id,omitempty"`
	SubmissionID      uint   `json:"submission_id,omitempty"`
	Reason            string `json:"reason"`
}

// AllocationResult is the structured summary of one allocation call.
type AllocationResult struct {
	RoundIndex      int                 `json:"round_index"`
	Allocations     []JudgeAllocation   `json:"allocations"`
	Assigned        int                 `json:"assigned"`
	AlreadyAssigned int                 `json:"already_assigned"`
	Unassignable    int                 `json:"unassignable"`
	Failures        []AllocationFailure `json:"failures"`
}
