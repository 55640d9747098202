package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

// JudgeService manages judge assignment records for a hackathon.
type JudgeService interface {
	Create(ctx context.Context, hackathonID uint, payload dto.JudgeCreateRequest) (dto.JudgeResponse, error)
	Update(ctx context.Context, hackathonID, id uint, payload dto.JudgeUpdateRequest) (dto.JudgeResponse, error)
	ListByHackathon(ctx context.Context, hackathonID uint) ([]dto.JudgeResponse, error)
	// Docket returns the submissions allocated to a judge for a round.
	Docket(ctx context.Context, hackathonID, judgeID uint, roundIndex int) ([]dto.SubmissionResponse, error)
}

type judgeService struct {
	judges      repository.JudgeRepository
	hackathons  repository.HackathonRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewJudgeService constructs the judge management service.
func NewJudgeService(judges repository.JudgeRepository, hackathons repository.HackathonRepository, submissions repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) JudgeService {
	return &judgeService{
		judges:      judges,
		hackathons:  hackathons,
		submissions: submissions,
		validator:   validate,
		logger:      logger.With().Str("component", "judge_service").Logger(),
	}
}

func (s *judgeService) Create(ctx context.Context, hackathonID uint, payload dto.JudgeCreateRequest) (dto.JudgeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.JudgeResponse{}, err
	}

	if _, err := s.hackathons.GetByID(ctx, hackathonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JudgeResponse{}, ErrHackathonNotFound
		}
		return dto.JudgeResponse{}, err
	}

	assignment := models.JudgeAssignment{
		HackathonID:         hackathonID,
		JudgeID:             payload.JudgeID,
		Type:                payload.Type,
		SponsorCompany:      payload.SponsorCompany,
		CanJudgeGeneralPS:   payload.CanJudgeGeneralPS,
		CanJudgeSponsoredPS: payload.CanJudgeSponsoredPS,
		Active:              true,
		MaxSubmissions:      payload.MaxSubmissions,
		ProblemStatementIDs: datatypes.JSONSlice[uint](payload.ProblemStatementIDs),
	}

	if err := s.judges.Create(ctx, &assignment); err != nil {
		return dto.JudgeResponse{}, err
	}

	s.logger.Info().
		Uint("hackathon_id", hackathonID).
		Uint("judge_id", payload.JudgeID).
		Str("type", payload.Type).
		Msg("judge registered")

	return dto.NewJudgeResponse(assignment), nil
}

func (s *judgeService) Update(ctx context.Context, hackathonID, id uint, payload dto.JudgeUpdateRequest) (dto.JudgeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.JudgeResponse{}, err
	}

	assignment, err := s.judges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JudgeResponse{}, ErrJudgeNotFound
		}
		return dto.JudgeResponse{}, err
	}
	if assignment.HackathonID != hackathonID {
		return dto.JudgeResponse{}, ErrJudgeNotFound
	}

	if payload.Type != nil {
		assignment.Type = *payload.Type
	}
	if payload.SponsorCompany != nil {
		assignment.SponsorCompany = *payload.SponsorCompany
	}
	if payload.CanJudgeGeneralPS != nil {
		assignment.CanJudgeGeneralPS = *payload.CanJudgeGeneralPS
	}
	if payload.CanJudgeSponsoredPS != nil {
		assignment.CanJudgeSponsoredPS = *payload.CanJudgeSponsoredPS
	}
	if payload.Active != nil {
		assignment.Active = *payload.Active
	}
	if payload.MaxSubmissions != nil {
		assignment.MaxSubmissions = *payload.MaxSubmissions
	}
	if payload.ProblemStatementIDs != nil {
		assignment.ProblemStatementIDs = datatypes.JSONSlice[uint](*payload.ProblemStatementIDs)
	}

	if err := s.judges.Update(ctx, &assignment); err != nil {
		return dto.JudgeResponse{}, err
	}

	return dto.NewJudgeResponse(assignment), nil
}

func (s *judgeService) ListByHackathon(ctx context.Context, hackathonID uint) ([]dto.JudgeResponse, error) {
	assignments, err := s.judges.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	return dto.NewJudgeResponseSlice(assignments), nil
}

func (s *judgeService) Docket(ctx context.Context, hackathonID, judgeID uint, roundIndex int) ([]dto.SubmissionResponse, error) {
	assignment, err := s.judges.GetByJudge(ctx, hackathonID, judgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJudgeNotFound
		}
		return nil, err
	}

	entry, ok := assignment.RoundAssignmentFor(roundIndex)
	if !ok || len(entry.SubmissionIDs) == 0 {
		return []dto.SubmissionResponse{}, nil
	}

	submissions, err := s.submissions.ListByIDs(ctx, entry.SubmissionIDs)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}
