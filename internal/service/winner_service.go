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

// WinnerService resolves final-round winners. Resolution is idempotent and
// safely repeatable: a second call with different criteria displaces the
// previous winner set instead of accumulating.
type WinnerService interface {
	Resolve(ctx context.Context, hackathonID uint, payload dto.WinnerResolveRequest) (dto.WinnerResult, error)
}

type winnerService struct {
	hackathons  repository.HackathonRepository
	submissions repository.SubmissionRepository
	progress    repository.RoundProgressRepository
	teams       repository.TeamRepository
	leaderboard LeaderboardService
	notifier    Notifier
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewWinnerService constructs the winner resolver.
func NewWinnerService(hackathons repository.HackathonRepository, submissions repository.SubmissionRepository, progress repository.RoundProgressRepository, teams repository.TeamRepository, leaderboard LeaderboardService, notifier Notifier, validate *validator.Validate, logger zerolog.Logger) WinnerService {
	return &winnerService{
		hackathons:  hackathons,
		submissions: submissions,
		progress:    progress,
		teams:       teams,
		leaderboard: leaderboard,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "winner_service").Logger(),
		tracer:      otel.Tracer("github.com/hackmate-io/hackmate-api/internal/service/winner"),
		now:         time.Now,
	}
}

func (s *winnerService) Resolve(ctx context.Context, hackathonID uint, payload dto.WinnerResolveRequest) (dto.WinnerResult, error) {
	ctx, span := s.tracer.Start(ctx, "winner.resolve", trace.WithAttributes(
		attribute.Int64("hackathon_id", int64(hackathonID)),
		attribute.String("mode", payload.Mode),
	))
	defer span.End()

	started := time.Now()
	defer func() {
		observability.EngineLatency().WithLabelValues("resolve_winners").Observe(time.Since(started).Seconds())
	}()

	if err := s.validator.Struct(payload); err != nil {
		return dto.WinnerResult{}, err
	}
	if err := s.validateMode(payload); err != nil {
		return dto.WinnerResult{}, err
	}

	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WinnerResult{}, ErrHackathonNotFound
		}
		return dto.WinnerResult{}, err
	}

	finalRound := hackathon.FinalRoundIndex()
	if finalRound < 0 {
		return dto.WinnerResult{}, ErrInvalidRound
	}

	// Manual selections are validated before any mutation.
	if payload.Mode == SelectionModeManual {
		if err := s.validateManualSelection(ctx, hackathonID, finalRound, payload.SubmissionIDs); err != nil {
			return dto.WinnerResult{}, err
		}
	}

	displaced, err := s.submissions.ResetStatusByRound(ctx, hackathonID, finalRound, models.SubmissionStatusWinner, models.SubmissionStatusSubmitted)
	if err != nil {
		return dto.WinnerResult{}, err
	}

	board, err := s.leaderboard.Build(ctx, hackathonID, finalRound)
	if err != nil {
		return dto.WinnerResult{}, err
	}

	// Persist the recomputed combined scores for every entry, not just the
	// winners, so subsequent views reflect the current ranking.
	s.persistScores(ctx, board.Entries)

	selected := s.selectWinners(board.Entries, payload)

	result := dto.WinnerResult{
		RoundIndex:     finalRound,
		IsReassignment: displaced > 0,
		Displaced:      int(displaced),
	}

	actorSet := make(map[uint]struct{})
	var submissionIDs, actorIDs, teamIDs, individualIDs []uint

	for _, entry := range selected {
		if err := s.markWinner(ctx, entry.SubmissionID); err != nil {
			s.logger.Error().Err(err).Uint("submission_id", entry.SubmissionID).Msg("failed to mark winner")
			result.Failed++
			result.FailedSubmissionIDs = append(result.FailedSubmissionIDs, entry.SubmissionID)
			continue
		}

		winner := dto.WinnerEntry{
			SubmissionID:       entry.SubmissionID,
			Title:              entry.Title,
			TeamID:             entry.TeamID,
			ParticipantID:      entry.ParticipantID,
			CombinedScore:      entry.Score,
			PreviousRoundScore: entry.PreviousRoundScore,
			Rank:               entry.Rank,
		}
		if entry.CurrentRoundScore != nil {
			winner.CurrentRoundScore = *entry.CurrentRoundScore
		} else {
			winner.CurrentRoundScore = entry.Score
		}
		result.Winners = append(result.Winners, winner)

		submissionIDs = append(submissionIDs, entry.SubmissionID)
		actorID := entry.ParticipantID
		if entry.TeamID != nil {
			actorID = *entry.TeamID
		}
		if _, ok := actorSet[actorID]; !ok {
			actorSet[actorID] = struct{}{}
			actorIDs = append(actorIDs, actorID)
			if entry.TeamID != nil {
				teamIDs = append(teamIDs, *entry.TeamID)
			} else {
				individualIDs = append(individualIDs, entry.ParticipantID)
			}
		}
	}

	if err := s.persistProgress(ctx, hackathonID, finalRound, submissionIDs, actorIDs, teamIDs, individualIDs); err != nil {
		return dto.WinnerResult{}, err
	}

	s.announceWinners(ctx, hackathonID, result.Winners)

	observability.EngineWinnerResolutions().WithLabelValues(payload.Mode).Inc()
	span.SetAttributes(
		attribute.Int("winners", len(result.Winners)),
		attribute.Bool("reassignment", result.IsReassignment),
	)

	return result, nil
}

func (s *winnerService) validateMode(payload dto.WinnerResolveRequest) error {
	switch payload.Mode {
	case SelectionModeTopN:
		if payload.TopN == nil {
			return ErrMissingModeParam
		}
	case SelectionModeThreshold:
		if payload.Threshold == nil {
			return ErrMissingModeParam
		}
	case SelectionModeManual:
		if len(payload.SubmissionIDs) == 0 {
			return ErrMissingModeParam
		}
	}
	return nil
}

func (s *winnerService) validateManualSelection(ctx context.Context, hackathonID uint, finalRound int, ids []uint) error {
	records, err := s.submissions.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uint]models.Submission, len(records))
	for _, record := range records {
		if record.HackathonID == hackathonID {
			found[record.ID] = record
		}
	}
	for _, id := range ids {
		record, ok := found[id]
		if !ok {
			return fmt.Errorf("%w: submission %d", ErrSubmissionNotFound, id)
		}
		if record.RoundIndex != finalRound {
			return fmt.Errorf("%w: submission %d", ErrNotFinalRound, id)
		}
	}
	return nil
}

func (s *winnerService) selectWinners(entries []dto.LeaderboardEntry, payload dto.WinnerResolveRequest) []dto.LeaderboardEntry {
	if payload.Mode == SelectionModeManual {
		wanted := make(map[uint]struct{}, len(payload.SubmissionIDs))
		for _, id := range payload.SubmissionIDs {
			wanted[id] = struct{}{}
		}
		var selected []dto.LeaderboardEntry
		for _, entry := range entries {
			if _, ok := wanted[entry.SubmissionID]; ok {
				selected = append(selected, entry)
			}
		}
		return selected
	}
	return selectEntries(entries, payload.Mode, payload.TopN, payload.Threshold)
}

// persistScores writes the recomputed round and combined scores back to the
// submissions. Failures are logged per record; the batch continues.
func (s *winnerService) persistScores(ctx context.Context, entries []dto.LeaderboardEntry) {
	for _, entry := range entries {
		submission, err := s.submissions.GetByID(ctx, entry.SubmissionID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", entry.SubmissionID).Msg("failed to load submission for score persistence")
			continue
		}

		combined := entry.Score
		submission.CombinedScore = &combined
		if entry.CurrentRoundScore != nil {
			current := *entry.CurrentRoundScore
			submission.RoundScore = &current
		} else {
			submission.RoundScore = &combined
		}
		submission.ScoreCount = entry.ScoreCount

		if err := s.submissions.Update(ctx, &submission); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", entry.SubmissionID).Msg("failed to persist combined score")
		}
	}
}

func (s *winnerService) markWinner(ctx context.Context, submissionID uint) error {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	submission.Status = models.SubmissionStatusWinner
	return s.submissions.Update(ctx, &submission)
}

func (s *winnerService) persistProgress(ctx context.Context, hackathonID uint, finalRound int, submissionIDs, actorIDs, teamIDs, individualIDs []uint) error {
	seen := make(map[uint]struct{})
	eligible := make([]uint, 0, len(individualIDs))

	teams, err := s.teams.ListByIDs(ctx, teamIDs)
	if err != nil {
		return err
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

	progress := models.RoundProgress{
		HackathonID:              hackathonID,
		RoundIndex:               finalRound,
		ShortlistedSubmissionIDs: datatypes.JSONSlice[uint](submissionIDs),
		ShortlistedTeamIDs:       datatypes.JSONSlice[uint](actorIDs),
		EligibleParticipantIDs:   datatypes.JSONSlice[uint](eligible),
		RoundCompleted:           true,
	}
	return s.progress.Upsert(ctx, &progress)
}

// announceWinners drops stale winner announcements before emitting fresh
// ones, so a reassignment never leaves duplicate messages behind.
func (s *winnerService) announceWinners(ctx context.Context, hackathonID uint, winners []dto.WinnerEntry) {
	if s.notifier == nil {
		return
	}

	if _, err := s.notifier.ClearByType(ctx, hackathonID, models.NotificationTypeWinnerAnnouncement); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear previous winner announcements")
	}

	for _, winner := range winners {
		s.notifier.Send(ctx, models.Notification{
			UserID:      winner.ParticipantID,
			HackathonID: hackathonID,
			Type:        models.NotificationTypeWinnerAnnouncement,
			Message:     fmt.Sprintf("Congratulations! Your submission %q won with a combined score of %.1f.", winner.Title, winner.CombinedScore),
		})
	}
}
