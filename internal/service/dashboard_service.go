package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

// DashboardService produces the organizer's aggregated view of a hackathon's
// evaluation state. Responses are cached in Redis for a short TTL since the
// aggregation touches every submission and score.
type DashboardService interface {
	GetOrganizerDashboard(ctx context.Context, hackathonID uint) (dto.OrganizerDashboardResponse, error)
}

type dashboardService struct {
	hackathons  repository.HackathonRepository
	submissions repository.SubmissionRepository
	judges      repository.JudgeRepository
	scores      repository.ScoreRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(hackathons repository.HackathonRepository, submissions repository.SubmissionRepository, judges repository.JudgeRepository, scores repository.ScoreRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		hackathons:  hackathons,
		submissions: submissions,
		judges:      judges,
		scores:      scores,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) GetOrganizerDashboard(ctx context.Context, hackathonID uint) (dto.OrganizerDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:hackathon:%d", hackathonID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.OrganizerDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("hackathon_id", hackathonID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OrganizerDashboardResponse{}, ErrHackathonNotFound
		}
		return dto.OrganizerDashboardResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{HackathonID: &hackathonID})
	if err != nil {
		return dto.OrganizerDashboardResponse{}, err
	}

	judges, err := s.judges.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return dto.OrganizerDashboardResponse{}, err
	}

	response := s.buildResponse(ctx, hackathon, submissions, judges)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildResponse(ctx context.Context, hackathon models.Hackathon, submissions []models.Submission, judges []models.JudgeAssignment) dto.OrganizerDashboardResponse {
	response := dto.OrganizerDashboardResponse{
		HackathonID:      hackathon.ID,
		TotalSubmissions: len(submissions),
		TotalJudges:      len(judges),
	}

	byRound := map[int]*dto.RoundBreakdown{}
	for _, round := range hackathon.Rounds {
		byRound[round.Index] = &dto.RoundBreakdown{
			RoundIndex: round.Index,
			ByStatus:   map[string]int{},
		}
	}
	for _, submission := range submissions {
		breakdown, ok := byRound[submission.RoundIndex]
		if !ok {
			breakdown = &dto.RoundBreakdown{RoundIndex: submission.RoundIndex, ByStatus: map[string]int{}}
			byRound[submission.RoundIndex] = breakdown
		}
		breakdown.Submissions++
		breakdown.ByStatus[submission.Status]++
		if submission.IsEvaluated() {
			breakdown.Evaluated++
		}
	}

	rounds := make([]dto.RoundBreakdown, 0, len(byRound))
	for _, breakdown := range byRound {
		rounds = append(rounds, *breakdown)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].RoundIndex < rounds[j].RoundIndex })
	response.Rounds = rounds

	coverage := make([]dto.JudgeCoverage, 0, len(judges))
	for _, judge := range judges {
		if judge.Active {
			response.ActiveJudges++
		}

		assigned := 0
		for _, ra := range judge.RoundAssignments {
			assigned += len(ra.SubmissionIDs)
		}

		scored := 0
		scores, err := s.scores.ListByJudge(ctx, hackathon.ID, judge.JudgeID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("judge_id", judge.JudgeID).Msg("failed to count judge scores")
		} else {
			scored = len(scores)
		}

		coverage = append(coverage, dto.JudgeCoverage{
			JudgeID:        judge.JudgeID,
			Assigned:       assigned,
			Scored:         scored,
			MaxSubmissions: judge.MaxSubmissions,
		})
	}
	sort.Slice(coverage, func(i, j int) bool { return coverage[i].JudgeID < coverage[j].JudgeID })
	response.Judges = coverage

	return response
}
