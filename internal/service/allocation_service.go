package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/observability"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

// AllocationService distributes candidate submissions to judges for a round.
// Allocation merges into existing round assignments and is idempotent:
// repeated calls never double-assign a submission to the same judge.
type AllocationService interface {
	Allocate(ctx context.Context, hackathonID uint, payload dto.AllocationRequest) (dto.AllocationResult, error)
}

type allocationService struct {
	hackathons  repository.HackathonRepository
	judges      repository.JudgeRepository
	submissions repository.SubmissionRepository
	notifier    Notifier
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewAllocationService constructs the allocator.
func NewAllocationService(hackathons repository.HackathonRepository, judges repository.JudgeRepository, submissions repository.SubmissionRepository, notifier Notifier, validate *validator.Validate, logger zerolog.Logger) AllocationService {
	return &allocationService{
		hackathons:  hackathons,
		judges:      judges,
		submissions: submissions,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "allocation_service").Logger(),
		tracer:      otel.Tracer("github.com/hackmate-io/hackmate-api/internal/service/allocation"),
	}
}

// judgeState tracks one judge's standing while the plan is built.
type judgeState struct {
	record    models.JudgeAssignment
	assigned  map[uint]struct{}
	remaining int
	planned   []uint
}

func (j *judgeState) has(submissionID uint) bool {
	_, ok := j.assigned[submissionID]
	return ok
}

func (j *judgeState) plan(submissionID uint) {
	j.assigned[submissionID] = struct{}{}
	j.planned = append(j.planned, submissionID)
	if j.remaining > 0 {
		j.remaining--
	}
}

func (s *allocationService) Allocate(ctx context.Context, hackathonID uint, payload dto.AllocationRequest) (dto.AllocationResult, error) {
	ctx, span := s.tracer.Start(ctx, "allocation.allocate", trace.WithAttributes(
		attribute.Int64("hackathon_id", int64(hackathonID)),
		attribute.Int("round_index", payload.RoundIndex),
		attribute.String("mode", payload.Mode),
	))
	defer span.End()

	started := time.Now()
	defer func() {
		observability.EngineLatency().WithLabelValues("allocate").Observe(time.Since(started).Seconds())
	}()

	if err := s.validator.Struct(payload); err != nil {
		return dto.AllocationResult{}, err
	}

	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AllocationResult{}, ErrHackathonNotFound
		}
		return dto.AllocationResult{}, err
	}
	if _, ok := hackathon.RoundAt(payload.RoundIndex); !ok {
		return dto.AllocationResult{}, ErrInvalidRound
	}

	result := dto.AllocationResult{RoundIndex: payload.RoundIndex}

	judges, failures := s.loadJudges(ctx, hackathonID, payload.JudgeAssignmentIDs)
	result.Failures = append(result.Failures, failures...)
	if len(judges) == 0 {
		return result, nil
	}

	// Union of every judge's assignment for the round, so earlier allocation
	// calls are never repeated.
	judgeCountBySubmission, err := s.roundAssignmentCounts(ctx, hackathonID, payload.RoundIndex)
	if err != nil {
		return dto.AllocationResult{}, err
	}

	candidates, candidateFailures, alreadyAssigned := s.loadCandidates(ctx, hackathonID, payload, judgeCountBySubmission)
	result.Failures = append(result.Failures, candidateFailures...)
	result.AlreadyAssigned = alreadyAssigned
	result.Unassignable = len(candidateFailures)

	if payload.Mode == AllocationModeMulti {
		s.planMulti(hackathon, payload, judges, candidates, judgeCountBySubmission, &result)
	} else {
		s.planSingle(payload, judges, candidates, &result)
	}

	s.persistPlan(ctx, hackathonID, payload, judges, &result)

	observability.EngineAllocations().WithLabelValues(payload.Mode, payload.Distribution).Inc()
	span.SetAttributes(
		attribute.Int("assigned", result.Assigned),
		attribute.Int("already_assigned", result.AlreadyAssigned),
		attribute.Int("unassignable", result.Unassignable),
	)

	return result, nil
}

// loadJudges resolves the requested judge assignments. A missing or inactive
// judge produces a per-judge failure entry without aborting the batch.
func (s *allocationService) loadJudges(ctx context.Context, hackathonID uint, ids []uint) ([]*judgeState, []dto.AllocationFailure) {
	records, err := s.judges.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load judge assignments")
		return nil, []dto.AllocationFailure{{Reason: "failed to load judge assignments"}}
	}

	byID := make(map[uint]models.JudgeAssignment, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	var states []*judgeState
	var failures []dto.AllocationFailure
	for _, id := range ids {
		record, ok := byID[id]
		if !ok || record.HackathonID != hackathonID {
			failures = append(failures, dto.AllocationFailure{JudgeAssignmentID: id, Reason: "judge assignment not found"})
			continue
		}
		if !record.Active {
			failures = append(failures, dto.AllocationFailure{JudgeAssignmentID: id, Reason: ErrJudgeInactive.Error()})
			continue
		}
		states = append(states, &judgeState{record: record, assigned: map[uint]struct{}{}})
	}
	return states, failures
}

// roundAssignmentCounts returns, for every submission already assigned in
// the round, how many judges hold it.
func (s *allocationService) roundAssignmentCounts(ctx context.Context, hackathonID uint, roundIndex int) (map[uint]int, error) {
	all, err := s.judges.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int)
	for _, judge := range all {
		if entry, ok := judge.RoundAssignmentFor(roundIndex); ok {
			for _, id := range entry.SubmissionIDs {
				counts[id]++
			}
		}
	}
	return counts, nil
}

// loadCandidates resolves the candidate submissions in request order,
// dropping ids that are missing, belong elsewhere, or are already assigned
// (single mode only counts those as alreadyAssigned).
func (s *allocationService) loadCandidates(ctx context.Context, hackathonID uint, payload dto.AllocationRequest, judgeCounts map[uint]int) ([]models.Submission, []dto.AllocationFailure, int) {
	records, err := s.submissions.ListByIDs(ctx, payload.SubmissionIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load candidate submissions")
		return nil, []dto.AllocationFailure{{Reason: "failed to load candidate submissions"}}, 0
	}

	byID := make(map[uint]models.Submission, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	var candidates []models.Submission
	var failures []dto.AllocationFailure
	alreadyAssigned := 0
	seen := make(map[uint]struct{}, len(payload.SubmissionIDs))

	for _, id := range payload.SubmissionIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		record, ok := byID[id]
		if !ok || record.HackathonID != hackathonID {
			failures = append(failures, dto.AllocationFailure{SubmissionID: id, Reason: "submission not found"})
			continue
		}
		if record.RoundIndex != payload.RoundIndex {
			failures = append(failures, dto.AllocationFailure{SubmissionID: id, Reason: "submission belongs to a different round"})
			continue
		}

		if payload.Mode == AllocationModeSingle && judgeCounts[id] > 0 {
			alreadyAssigned++
			continue
		}

		candidates = append(candidates, record)
	}

	return candidates, failures, alreadyAssigned
}

// planSingle assigns each remaining candidate to exactly one judge.
func (s *allocationService) planSingle(payload dto.AllocationRequest, judges []*judgeState, candidates []models.Submission, result *dto.AllocationResult) {
	s.applyCapacities(payload, judges, len(candidates))

	for _, candidate := range candidates {
		placed := false
		incompatible := 0

		for _, judge := range judges {
			if judge.remaining == 0 || judge.has(candidate.ID) {
				continue
			}
			if !judge.record.CanEvaluate(candidate.ProblemStatement) {
				incompatible++
				continue
			}
			judge.plan(candidate.ID)
			placed = true
			break
		}

		if placed {
			continue
		}

		result.Unassignable++
		reason := "no judge capacity remaining"
		if incompatible == len(judges) {
			compatErr := &CompatibilityError{SubmissionID: candidate.ID, Reason: "no compatible judge for problem statement"}
			reason = compatErr.Error()
		}
		result.Failures = append(result.Failures, dto.AllocationFailure{SubmissionID: candidate.ID, Reason: reason})
	}
}

// planMulti fans each candidate out to up to K distinct judges.
func (s *allocationService) planMulti(hackathon models.Hackathon, payload dto.AllocationRequest, judges []*judgeState, candidates []models.Submission, judgeCounts map[uint]int, result *dto.AllocationResult) {
	k := payload.JudgesPerProject
	if k <= 0 {
		k = hackathon.JudgesPerProject
	}
	if k <= 0 {
		k = 1
	}

	s.applyCapacities(payload, judges, len(candidates)*k)

	for _, candidate := range candidates {
		needed := k - judgeCounts[candidate.ID]
		if needed <= 0 {
			result.AlreadyAssigned++
			continue
		}

		granted := 0
		incompatible := 0
		for _, judge := range judges {
			if granted >= needed {
				break
			}
			if judge.remaining == 0 || judge.has(candidate.ID) {
				continue
			}
			if !judge.record.CanEvaluate(candidate.ProblemStatement) {
				incompatible++
				continue
			}
			judge.plan(candidate.ID)
			granted++
		}

		if granted == 0 {
			result.Unassignable++
			reason := "no judge capacity remaining"
			if incompatible > 0 && incompatible == len(judges) {
				reason = (&CompatibilityError{SubmissionID: candidate.ID, Reason: "no compatible judge for problem statement"}).Error()
			}
			result.Failures = append(result.Failures, dto.AllocationFailure{SubmissionID: candidate.ID, Reason: reason})
		}
	}
}

// applyCapacities seeds each judge's remaining quota. Manual distribution
// uses the explicit per-judge capacities; equal distribution splits the
// workload as evenly as possible, never exceeding a judge's configured
// maximum for the round.
func (s *allocationService) applyCapacities(payload dto.AllocationRequest, judges []*judgeState, workload int) {
	headrooms := make([]int, len(judges))
	for i, judge := range judges {
		existing := 0
		configuredMax := judge.record.MaxSubmissions
		if entry, ok := judge.record.RoundAssignmentFor(payload.RoundIndex); ok {
			existing = len(entry.SubmissionIDs)
			if entry.MaxSubmissions > 0 {
				configuredMax = entry.MaxSubmissions
			}
			for _, id := range entry.SubmissionIDs {
				judge.assigned[id] = struct{}{}
			}
		}

		headroom := workload
		if configuredMax > 0 {
			headroom = configuredMax - existing
			if headroom < 0 {
				headroom = 0
			}
		}
		headrooms[i] = headroom

		if payload.Distribution == DistributionManual {
			quota := payload.Capacities[judge.record.ID]
			if quota > headroom {
				quota = headroom
			}
			judge.remaining = quota
		}
	}

	if payload.Distribution == DistributionManual {
		return
	}

	// Even split respecting per-judge maxima: deal the workload out one
	// submission at a time so a capped judge's share spills over to judges
	// with headroom left. Earlier judges absorb any remainder.
	for left := workload; left > 0; {
		progressed := false
		for i, judge := range judges {
			if left == 0 {
				break
			}
			if judge.remaining >= headrooms[i] {
				continue
			}
			judge.remaining++
			left--
			progressed = true
		}
		if !progressed {
			break
		}
	}
}

// persistPlan merges each judge's planned ids into its round assignment.
// Failures are per judge; the rest of the batch proceeds.
func (s *allocationService) persistPlan(ctx context.Context, hackathonID uint, payload dto.AllocationRequest, judges []*judgeState, result *dto.AllocationResult) {
	for _, judge := range judges {
		if len(judge.planned) == 0 {
			continue
		}

		capacity := 0
		if payload.Distribution == DistributionManual {
			capacity = payload.Capacities[judge.record.ID]
		}

		added, err := s.judges.MergeRoundAssignment(ctx, judge.record.ID, payload.RoundIndex, judge.planned, capacity)
		if err != nil {
			s.logger.Error().Err(err).
				Uint("judge_assignment_id", judge.record.ID).
				Int("round_index", payload.RoundIndex).
				Msg("failed to persist round assignment")
			result.Failures = append(result.Failures, dto.AllocationFailure{
				JudgeAssignmentID: judge.record.ID,
				Reason:            fmt.Sprintf("failed to persist assignment: %v", err),
			})
			continue
		}

		result.Assigned += len(added)
		result.AlreadyAssigned += len(judge.planned) - len(added)
		result.Allocations = append(result.Allocations, dto.JudgeAllocation{
			JudgeAssignmentID: judge.record.ID,
			JudgeID:           judge.record.JudgeID,
			AssignedIDs:       added,
		})

		if len(added) > 0 && s.notifier != nil {
			s.notifier.Send(ctx, models.Notification{
				UserID:      judge.record.JudgeID,
				HackathonID: hackathonID,
				Type:        models.NotificationTypeJudgeAssignment,
				Message:     fmt.Sprintf("You have %d new submissions to evaluate in round %d.", len(added), payload.RoundIndex+1),
			})
		}
	}
}
