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
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/observability"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

// ShortlistService decides which submissions advance from a round and
// persists the decision as the round's progress record. Re-running the
// decision overwrites it; it never accumulates.
type ShortlistService interface {
	Shortlist(ctx context.Context, hackathonID uint, payload dto.ShortlistRequest) (dto.ShortlistResult, error)
	Toggle(ctx context.Context, hackathonID uint, payload dto.ToggleShortlistRequest) (dto.SubmissionResponse, error)
}

type shortlistService struct {
	hackathons  repository.HackathonRepository
	submissions repository.SubmissionRepository
	teams       repository.TeamRepository
	progress    repository.RoundProgressRepository
	leaderboard LeaderboardService
	notifier    Notifier
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewShortlistService constructs the shortlisting engine.
func NewShortlistService(hackathons repository.HackathonRepository, submissions repository.SubmissionRepository, teams repository.TeamRepository, progress repository.RoundProgressRepository, leaderboard LeaderboardService, notifier Notifier, validate *validator.Validate, logger zerolog.Logger) ShortlistService {
	return &shortlistService{
		hackathons:  hackathons,
		submissions: submissions,
		teams:       teams,
		progress:    progress,
		leaderboard: leaderboard,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "shortlist_service").Logger(),
		tracer:      otel.Tracer("github.com/hackmate-io/hackmate-api/internal/service/shortlist"),
		now:         time.Now,
	}
}

func (s *shortlistService) Shortlist(ctx context.Context, hackathonID uint, payload dto.ShortlistRequest) (dto.ShortlistResult, error) {
	ctx, span := s.tracer.Start(ctx, "shortlist.decide", trace.WithAttributes(
		attribute.Int64("hackathon_id", int64(hackathonID)),
		attribute.Int("round_index", payload.RoundIndex),
		attribute.String("mode", payload.Mode),
	))
	defer span.End()

	started := time.Now()
	defer func() {
		observability.EngineLatency().WithLabelValues("shortlist").Observe(time.Since(started).Seconds())
	}()

	if err := s.validator.Struct(payload); err != nil {
		return dto.ShortlistResult{}, err
	}
	if err := validateSelectionParams(payload.Mode, payload.TopN, payload.Threshold); err != nil {
		return dto.ShortlistResult{}, err
	}

	board, err := s.leaderboard.Build(ctx, hackathonID, payload.RoundIndex)
	if err != nil {
		return dto.ShortlistResult{}, err
	}

	selected := selectEntries(board.Entries, payload.Mode, payload.TopN, payload.Threshold)

	result := dto.ShortlistResult{RoundIndex: payload.RoundIndex}
	nextRound := payload.RoundIndex + 2 // 1-based index of the round being advanced to

	actorSet := make(map[uint]struct{})
	teamIDs := make([]uint, 0)
	individualIDs := make([]uint, 0)

	for _, entry := range selected {
		if err := s.markShortlisted(ctx, entry.SubmissionID, nextRound); err != nil {
			s.logger.Error().Err(err).Uint("submission_id", entry.SubmissionID).Msg("failed to mark submission shortlisted")
			result.Failed++
			result.FailedSubmissionIDs = append(result.FailedSubmissionIDs, entry.SubmissionID)
			continue
		}

		result.Updated++
		result.SelectedSubmissionIDs = append(result.SelectedSubmissionIDs, entry.SubmissionID)

		actorID := entry.ParticipantID
		if entry.TeamID != nil {
			actorID = *entry.TeamID
		}
		if _, ok := actorSet[actorID]; !ok {
			actorSet[actorID] = struct{}{}
			result.SelectedActorIDs = append(result.SelectedActorIDs, actorID)
			if entry.TeamID != nil {
				teamIDs = append(teamIDs, *entry.TeamID)
			} else {
				individualIDs = append(individualIDs, entry.ParticipantID)
			}
		}
	}

	eligible, err := s.eligibleParticipants(ctx, teamIDs, individualIDs)
	if err != nil {
		return dto.ShortlistResult{}, err
	}
	result.EligibleParticipantIDs = eligible

	progress := models.RoundProgress{
		HackathonID:              hackathonID,
		RoundIndex:               payload.RoundIndex,
		ShortlistedSubmissionIDs: datatypes.JSONSlice[uint](result.SelectedSubmissionIDs),
		ShortlistedTeamIDs:       datatypes.JSONSlice[uint](result.SelectedActorIDs),
		EligibleParticipantIDs:   datatypes.JSONSlice[uint](eligible),
		RoundCompleted:           true,
	}
	if err := s.progress.Upsert(ctx, &progress); err != nil {
		return dto.ShortlistResult{}, err
	}

	s.notifyShortlisted(ctx, hackathonID, payload.RoundIndex, eligible)

	observability.EngineShortlists().WithLabelValues(payload.Mode).Inc()
	span.SetAttributes(attribute.Int("selected", result.Updated), attribute.Int("failed", result.Failed))

	return result, nil
}

func (s *shortlistService) Toggle(ctx context.Context, hackathonID uint, payload dto.ToggleShortlistRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if submission.HackathonID != hackathonID || submission.RoundIndex != payload.RoundIndex {
		return dto.SubmissionResponse{}, ErrSubmissionNotFound
	}

	if payload.Shortlisted {
		if err := s.markShortlisted(ctx, submission.ID, payload.RoundIndex+2); err != nil {
			return dto.SubmissionResponse{}, err
		}
	} else {
		submission.Status = models.SubmissionStatusSubmitted
		submission.ShortlistedAt = nil
		submission.ShortlistedForRound = nil
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	if err := s.rebuildProgress(ctx, hackathonID, payload.RoundIndex, submission.ID, payload.Shortlisted); err != nil {
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(updated), nil
}

func (s *shortlistService) markShortlisted(ctx context.Context, submissionID uint, nextRound int) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}

	stamp := s.now()
	submission.Status = models.SubmissionStatusShortlisted
	submission.ShortlistedAt = &stamp
	submission.ShortlistedForRound = &nextRound

	return s.submissions.Update(ctx, &submission)
}

// eligibleParticipants derives every member id of the shortlisted teams plus
// the shortlisted individuals.
func (s *shortlistService) eligibleParticipants(ctx context.Context, teamIDs, individualIDs []uint) ([]uint, error) {
	seen := make(map[uint]struct{})
	eligible := make([]uint, 0, len(individualIDs))

	teams, err := s.teams.ListByIDs(ctx, teamIDs)
	if err != nil {
		return nil, err
	}
	for _, team := range teams {
		for _, memberID := range team.MemberIDs() {
			if _, ok := seen[memberID]; ok {
				continue
			}
			seen[memberID] = struct{}{}
			eligible = append(eligible, memberID)
		}
	}

	for _, id := range individualIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		eligible = append(eligible, id)
	}

	return eligible, nil
}

// rebuildProgress recomputes the round's progress sets from the submissions
// currently marked shortlisted, so a toggle stays consistent with bulk
// decisions.
func (s *shortlistService) rebuildProgress(ctx context.Context, hackathonID uint, roundIndex int, submissionID uint, added bool) error {
	existing, err := s.progress.GetByRound(ctx, hackathonID, roundIndex)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// No decision exists for the round yet; removing a submission must
		// not fabricate a completed one.
		if !added {
			return nil
		}
	}

	ids := make([]uint, 0, len(existing.ShortlistedSubmissionIDs)+1)
	for _, id := range existing.ShortlistedSubmissionIDs {
		if id == submissionID && !added {
			continue
		}
		ids = append(ids, id)
	}
	if added && !existing.ContainsSubmission(submissionID) {
		ids = append(ids, submissionID)
	}

	submissions, err := s.submissions.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}

	actorSet := make(map[uint]struct{})
	actorIDs := make([]uint, 0, len(submissions))
	teamIDs := make([]uint, 0)
	individualIDs := make([]uint, 0)
	for _, submission := range submissions {
		actorID := submission.ActorID()
		if _, ok := actorSet[actorID]; ok {
			continue
		}
		actorSet[actorID] = struct{}{}
		actorIDs = append(actorIDs, actorID)
		if submission.TeamID != nil {
			teamIDs = append(teamIDs, *submission.TeamID)
		} else {
			individualIDs = append(individualIDs, submission.ParticipantID)
		}
	}

	eligible, err := s.eligibleParticipants(ctx, teamIDs, individualIDs)
	if err != nil {
		return err
	}

	progress := models.RoundProgress{
		HackathonID:              hackathonID,
		RoundIndex:               roundIndex,
		ShortlistedSubmissionIDs: datatypes.JSONSlice[uint](ids),
		ShortlistedTeamIDs:       datatypes.JSONSlice[uint](actorIDs),
		EligibleParticipantIDs:   datatypes.JSONSlice[uint](eligible),
		RoundCompleted:           true,
	}
	return s.progress.Upsert(ctx, &progress)
}

func (s *shortlistService) notifyShortlisted(ctx context.Context, hackathonID uint, roundIndex int, participantIDs []uint) {
	if s.notifier == nil {
		return
	}
	for _, participantID := range participantIDs {
		s.notifier.Send(ctx, models.Notification{
			UserID:      participantID,
			HackathonID: hackathonID,
			Type:        models.NotificationTypeShortlist,
			Message:     fmt.Sprintf("Congratulations! You advanced past round %d.", roundIndex+1),
		})
	}
}

// validateSelectionParams enforces the per-mode required parameter before
// any mutation happens.
func validateSelectionParams(mode string, topN *int, threshold *float64) error {
	switch mode {
	case SelectionModeTopN:
		if topN == nil {
			return ErrMissingModeParam
		}
	case SelectionModeThreshold:
		if threshold == nil {
			return ErrMissingModeParam
		}
	}
	return nil
}

// selectEntries applies a selection mode to ranked leaderboard entries.
// topN only ever selects evaluated submissions; threshold is inclusive at
// the boundary; date advances everyone.
func selectEntries(entries []dto.LeaderboardEntry, mode string, topN *int, threshold *float64) []dto.LeaderboardEntry {
	switch mode {
	case SelectionModeTopN:
		selected := make([]dto.LeaderboardEntry, 0, *topN)
		for _, entry := range entries {
			if len(selected) == *topN {
				break
			}
			if entry.ScoreCount == 0 {
				continue
			}
			selected = append(selected, entry)
		}
		return selected
	case SelectionModeThreshold:
		var selected []dto.LeaderboardEntry
		for _, entry := range entries {
			if entry.Score >= *threshold {
				selected = append(selected, entry)
			}
		}
		return selected
	case SelectionModeDate:
		return entries
	}
	return nil
}
