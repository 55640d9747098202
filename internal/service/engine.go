package service

import (
	"context"
	"io"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// Allocation and selection modes accepted by the engine.
const (
	AllocationModeSingle = "single"
	AllocationModeMulti  = "multi"

	DistributionManual = "manual"
	DistributionEqual  = "equal"

	SelectionModeTopN      = "topN"
	SelectionModeThreshold = "threshold"
	SelectionModeDate      = "date"
	SelectionModeManual    = "manual"
)

// EngineOptions carries the behavior switches the engine exposes instead of
// hardcoding historically ambiguous choices.
type EngineOptions struct {
	// ApplyCriterionWeights switches score aggregation from the unweighted
	// criterion mean to a weighted one. Off by default.
	ApplyCriterionWeights bool
	// EligibilityCascadeRounds is how many completed rounds back the
	// eligibility check may look. The default of 1 only consults the
	// immediately preceding round.
	EligibilityCascadeRounds int
}

// Normalize fills defaults for zero-valued options.
func (o EngineOptions) Normalize() EngineOptions {
	if o.EligibilityCascadeRounds < 1 {
		o.EligibilityCascadeRounds = 1
	}
	return o
}

// Notifier is the fire-and-forget notification capability the engine emits
// through. Send never blocks engine correctness; failures are logged by the
// implementation.
type Notifier interface {
	Send(ctx context.Context, notification models.Notification)
	ClearByType(ctx context.Context, hackathonID uint, notificationType string) (int64, error)
}

// FileUploader stores a submission asset and returns its public URL. Object
// storage is an external collaborator; pkg/cloudinary provides the
// production implementation.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}
