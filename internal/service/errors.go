package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the evaluation services. Handlers map these to
// HTTP status codes.
var (
	// ErrHackathonNotFound indicates the hackathon does not exist.
	ErrHackathonNotFound = errors.New("hackathon not found")
	// ErrJudgeNotFound indicates the judge assignment record does not exist.
	ErrJudgeNotFound = errors.New("judge assignment not found")
	// ErrSubmissionNotFound indicates the submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrTeamNotFound indicates the team does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrNotificationNotFound indicates the notification does not exist.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrProblemStatementNotFound indicates the referenced statement does not
	// belong to the hackathon.
	ErrProblemStatementNotFound = errors.New("problem statement not found")

	// ErrInvalidRound indicates the round index is outside the hackathon's
	// configured rounds. Rejected before any mutation.
	ErrInvalidRound = errors.New("invalid round index")
	// ErrMissingModeParam indicates the selection mode lacks its required
	// parameter (top_n or threshold).
	ErrMissingModeParam = errors.New("missing selection mode parameter")
	// ErrNotFinalRound indicates winner resolution was invoked for a round
	// other than the last.
	ErrNotFinalRound = errors.New("winner resolution applies to the final round only")

	// ErrNotEligible indicates the actor did not advance from the previous
	// round.
	ErrNotEligible = errors.New("not eligible for this round")
	// ErrRoundClosed indicates the round's submission window is not open.
	ErrRoundClosed = errors.New("round is not open for submissions")
	// ErrDuplicateSubmission indicates the actor already submitted for the
	// round.
	ErrDuplicateSubmission = errors.New("submission already exists for this round")

	// ErrJudgeNotAssigned indicates a judge tried to score a submission that
	// was never allocated to them.
	ErrJudgeNotAssigned = errors.New("submission is not assigned to this judge")
	// ErrJudgeInactive indicates the judge assignment record is deactivated.
	ErrJudgeInactive = errors.New("judge is not active")
	// ErrScoreExceedsMax indicates a criterion score surpasses the criterion
	// maximum configured on the round.
	ErrScoreExceedsMax = errors.New("criterion score exceeds maximum")
	// ErrScoreShapeMissing indicates a score carries neither criterion
	// entries nor a total.
	ErrScoreShapeMissing = errors.New("either criteria or total must be provided")
)

// CompatibilityError reports a judge-type / problem-statement-type mismatch.
// In bulk operations it is recorded per item and never aborts the batch.
type CompatibilityError struct {
	JudgeID      uint
	SubmissionID uint
	Reason       string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("judge %d incompatible with submission %d: %s", e.JudgeID, e.SubmissionID, e.Reason)
}
