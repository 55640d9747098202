package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

// Eligibility sources reported to callers.
const (
	EligibilitySourceFirstRound    = "first-round"
	EligibilitySourceRoundProgress = "round-progress"
	EligibilitySourceLegacyStatus  = "legacy-status"
	EligibilitySourceNone          = "none"
)

// EligibilityService answers "can this actor submit to round R now". The
// eligible and round-open answers are separate: a team can be eligible
// before the round window opens.
type EligibilityService interface {
	Check(ctx context.Context, hackathonID uint, roundIndex int, actorID uint) (dto.EligibilityResponse, error)
}

type eligibilityService struct {
	hackathons  repository.HackathonRepository
	submissions repository.SubmissionRepository
	progress    repository.RoundProgressRepository
	options     EngineOptions
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEligibilityService constructs the checker.
func NewEligibilityService(hackathons repository.HackathonRepository, submissions repository.SubmissionRepository, progress repository.RoundProgressRepository, options EngineOptions, logger zerolog.Logger) EligibilityService {
	return &eligibilityService{
		hackathons:  hackathons,
		submissions: submissions,
		progress:    progress,
		options:     options.Normalize(),
		logger:      logger.With().Str("component", "eligibility_service").Logger(),
		now:         time.Now,
	}
}

func (s *eligibilityService) Check(ctx context.Context, hackathonID uint, roundIndex int, actorID uint) (dto.EligibilityResponse, error) {
	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EligibilityResponse{}, ErrHackathonNotFound
		}
		return dto.EligibilityResponse{}, err
	}

	round, ok := hackathon.RoundAt(roundIndex)
	if !ok {
		return dto.EligibilityResponse{}, ErrInvalidRound
	}

	response := dto.EligibilityResponse{
		HackathonID: hackathonID,
		RoundIndex:  roundIndex,
		ActorID:     actorID,
		Source:      EligibilitySourceNone,
	}

	if roundIndex == 0 {
		response.Eligible = true
		response.Source = EligibilitySourceFirstRound
	} else {
		eligible, source, err := s.advancedFromPreviousRound(ctx, hackathonID, roundIndex, actorID)
		if err != nil {
			return dto.EligibilityResponse{}, err
		}
		response.Eligible = eligible
		response.Source = source
	}

	response.RoundOpen = response.Eligible && round.IsOpen(s.now())
	return response, nil
}

// advancedFromPreviousRound consults the persisted round progress. The
// immediately preceding round must have been decided; deeper rounds are only
// consulted up to the configured cascade depth, never silently.
func (s *eligibilityService) advancedFromPreviousRound(ctx context.Context, hackathonID uint, roundIndex int, actorID uint) (bool, string, error) {
	for depth := 1; depth <= s.options.EligibilityCascadeRounds; depth++ {
		previous := roundIndex - depth
		if previous < 0 {
			break
		}

		progress, err := s.progress.GetByRound(ctx, hackathonID, previous)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return false, EligibilitySourceNone, err
		}
		if !progress.RoundCompleted {
			break
		}
		if progress.AllowsActor(actorID) {
			return true, EligibilitySourceRoundProgress, nil
		}
	}

	// Legacy path: older records carried the decision on the submission
	// itself instead of a progress record.
	legacy, err := s.legacyShortlistFlag(ctx, hackathonID, roundIndex, actorID)
	if err != nil {
		return false, EligibilitySourceNone, err
	}
	if legacy {
		return true, EligibilitySourceLegacyStatus, nil
	}

	return false, EligibilitySourceNone, nil
}

func (s *eligibilityService) legacyShortlistFlag(ctx context.Context, hackathonID uint, roundIndex int, actorID uint) (bool, error) {
	previous := roundIndex - 1
	status := models.SubmissionStatusShortlisted

	for _, filter := range []repository.SubmissionFilter{
		{HackathonID: &hackathonID, RoundIndex: &previous, TeamID: &actorID, Status: &status},
		{HackathonID: &hackathonID, RoundIndex: &previous, ParticipantID: &actorID, Status: &status},
	} {
		submissions, err := s.submissions.List(ctx, filter)
		if err != nil {
			return false, err
		}
		for _, submission := range submissions {
			if submission.ShortlistedForRound != nil && *submission.ShortlistedForRound == roundIndex+1 {
				return true, nil
			}
		}
	}
	return false, nil
}
