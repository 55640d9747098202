package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

// LeaderboardService produces the ranked projection for a round. It is a
// read-time view: statuses are overlaid from round progress without writing
// anything back.
type LeaderboardService interface {
	Build(ctx context.Context, hackathonID uint, roundIndex int) (dto.LeaderboardResponse, error)
}

type leaderboardService struct {
	hackathons  repository.HackathonRepository
	submissions repository.SubmissionRepository
	scores      repository.ScoreRepository
	progress    repository.RoundProgressRepository
	options     EngineOptions
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewLeaderboardService constructs the leaderboard builder.
func NewLeaderboardService(hackathons repository.HackathonRepository, submissions repository.SubmissionRepository, scores repository.ScoreRepository, progress repository.RoundProgressRepository, options EngineOptions, logger zerolog.Logger) LeaderboardService {
	return &leaderboardService{
		hackathons:  hackathons,
		submissions: submissions,
		scores:      scores,
		progress:    progress,
		options:     options.Normalize(),
		logger:      logger.With().Str("component", "leaderboard_service").Logger(),
		tracer:      otel.Tracer("github.com/hackmate-io/hackmate-api/internal/service/leaderboard"),
	}
}

func (s *leaderboardService) Build(ctx context.Context, hackathonID uint, roundIndex int) (dto.LeaderboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "leaderboard.build", trace.WithAttributes(
		attribute.Int64("hackathon_id", int64(hackathonID)),
		attribute.Int("round_index", roundIndex),
	))
	defer span.End()

	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LeaderboardResponse{}, ErrHackathonNotFound
		}
		return dto.LeaderboardResponse{}, err
	}

	if _, ok := hackathon.RoundAt(roundIndex); !ok {
		return dto.LeaderboardResponse{}, ErrInvalidRound
	}

	submissions, err := s.submissions.ListByRound(ctx, hackathonID, roundIndex)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	roundScores, err := s.scores.ListByRound(ctx, hackathonID, roundIndex)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}
	grouped := groupScoresBySubmission(roundScores)

	finalRound := roundIndex == hackathon.FinalRoundIndex() && roundIndex > 0

	var previousByActor map[uint]scoreAggregate
	if finalRound {
		previousByActor, err = s.previousRoundAggregates(ctx, hackathonID, roundIndex-1)
		if err != nil {
			return dto.LeaderboardResponse{}, err
		}
	}

	overlay := s.statusOverlay(ctx, hackathonID, roundIndex)

	entries := make([]dto.LeaderboardEntry, 0, len(submissions))
	for _, submission := range submissions {
		aggregate := aggregateScores(grouped[submission.ID], s.options.ApplyCriterionWeights)

		entry := dto.LeaderboardEntry{
			SubmissionID:  submission.ID,
			Title:         submission.Title,
			TeamID:        submission.TeamID,
			ParticipantID: submission.ParticipantID,
			Score:         aggregate.Average,
			ScoreCount:    aggregate.Count,
			Status:        submission.Status,
			SubmittedAt:   submission.SubmittedAt,
		}

		if finalRound {
			current := aggregate.Average
			previous := 0.0
			if prev, ok := previousByActor[submission.ActorID()]; ok {
				previous = prev.Average
			}
			entry.Score = combineScores(previous, current)
			entry.CurrentRoundScore = &current
			previousCopy := previous
			entry.PreviousRoundScore = &previousCopy
		}

		if entry.Status == models.SubmissionStatusSubmitted && overlay(submission) {
			entry.Status = models.SubmissionStatusShortlisted
		}

		entries = append(entries, entry)
	}

	sortEntries(entries)
	for i := range entries {
		entries[i].Rank = i + 1
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))

	return dto.LeaderboardResponse{
		HackathonID: hackathonID,
		RoundIndex:  roundIndex,
		FinalRound:  finalRound,
		Entries:     entries,
	}, nil
}

// previousRoundAggregates maps actor id to that actor's aggregated score in
// the given round.
func (s *leaderboardService) previousRoundAggregates(ctx context.Context, hackathonID uint, roundIndex int) (map[uint]scoreAggregate, error) {
	submissions, err := s.submissions.ListByRound(ctx, hackathonID, roundIndex)
	if err != nil {
		return nil, err
	}

	scores, err := s.scores.ListByRound(ctx, hackathonID, roundIndex)
	if err != nil {
		return nil, err
	}
	grouped := groupScoresBySubmission(scores)

	byActor := make(map[uint]scoreAggregate, len(submissions))
	for _, submission := range submissions {
		byActor[submission.ActorID()] = aggregateScores(grouped[submission.ID], s.options.ApplyCriterionWeights)
	}
	return byActor, nil
}

// statusOverlay returns a predicate that reports whether a submission should
// display as shortlisted based on the current or immediately preceding
// round's progress. The stored status remains the source of truth; this is
// only a read-time upgrade.
func (s *leaderboardService) statusOverlay(ctx context.Context, hackathonID uint, roundIndex int) func(models.Submission) bool {
	var records []models.RoundProgress
	for _, index := range []int{roundIndex, roundIndex - 1} {
		if index < 0 {
			continue
		}
		progress, err := s.progress.GetByRound(ctx, hackathonID, index)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn().Err(err).Int("round_index", index).Msg("failed to load round progress for overlay")
			}
			continue
		}
		records = append(records, progress)
	}

	return func(submission models.Submission) bool {
		for _, progress := range records {
			if progress.ContainsSubmission(submission.ID) || progress.AllowsActor(submission.ActorID()) {
				return true
			}
		}
		return false
	}
}

// sortEntries orders by score descending with earlier submissions winning
// ties.
func sortEntries(entries []dto.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].SubmittedAt.Before(entries[j].SubmittedAt)
	})
}
