package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

// HackathonService manages hackathon configuration.
type HackathonService interface {
	Create(ctx context.Context, organizerID uint, payload dto.HackathonCreateRequest) (dto.HackathonResponse, error)
	List(ctx context.Context) ([]dto.HackathonResponse, error)
	Get(ctx context.Context, id uint) (dto.HackathonResponse, error)
	GetBySlug(ctx context.Context, slug string) (dto.HackathonResponse, error)
}

type hackathonService struct {
	repo      repository.HackathonRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewHackathonService constructs the hackathon service.
func NewHackathonService(repo repository.HackathonRepository, validate *validator.Validate, logger zerolog.Logger) HackathonService {
	return &hackathonService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "hackathon_service").Logger(),
	}
}

func (s *hackathonService) Create(ctx context.Context, organizerID uint, payload dto.HackathonCreateRequest) (dto.HackathonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.HackathonResponse{}, err
	}

	for i := 1; i < len(payload.Rounds); i++ {
		if payload.Rounds[i].StartsAt.Before(payload.Rounds[i-1].StartsAt) {
			return dto.HackathonResponse{}, fmt.Errorf("round %d starts before round %d", i+1, i)
		}
	}

	hackathon := models.Hackathon{
		Slug:             payload.Slug,
		Title:            payload.Title,
		Description:      payload.Description,
		OrganizerID:      organizerID,
		MultiJudge:       payload.MultiJudge,
		JudgesPerProject: payload.JudgesPerProject,
	}

	for index, round := range payload.Rounds {
		hackathon.Rounds = append(hackathon.Rounds, models.Round{
			Index:                index,
			Name:                 round.Name,
			Type:                 round.Type,
			StartsAt:             round.StartsAt,
			EndsAt:               round.EndsAt,
			PresentationCriteria: toCriteria(round.PresentationCriteria),
			ProjectCriteria:      toCriteria(round.ProjectCriteria),
		})
	}

	for _, statement := range payload.ProblemStatements {
		hackathon.ProblemStatements = append(hackathon.ProblemStatements, models.ProblemStatement{
			Statement: statement.Statement,
			Type:      statement.Type,
			Sponsor:   statement.Sponsor,
		})
	}

	if err := s.repo.Create(ctx, &hackathon); err != nil {
		return dto.HackathonResponse{}, err
	}

	s.logger.Info().Uint("hackathon_id", hackathon.ID).Str("slug", hackathon.Slug).Msg("hackathon created")

	created, err := s.repo.GetByID(ctx, hackathon.ID)
	if err != nil {
		return dto.HackathonResponse{}, err
	}
	return dto.NewHackathonResponse(created), nil
}

func (s *hackathonService) List(ctx context.Context) ([]dto.HackathonResponse, error) {
	hackathons, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewHackathonResponseSlice(hackathons), nil
}

func (s *hackathonService) Get(ctx context.Context, id uint) (dto.HackathonResponse, error) {
	hackathon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HackathonResponse{}, ErrHackathonNotFound
		}
		return dto.HackathonResponse{}, err
	}
	return dto.NewHackathonResponse(hackathon), nil
}

func (s *hackathonService) GetBySlug(ctx context.Context, slug string) (dto.HackathonResponse, error) {
	hackathon, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HackathonResponse{}, ErrHackathonNotFound
		}
		return dto.HackathonResponse{}, err
	}
	return dto.NewHackathonResponse(hackathon), nil
}

func toCriteria(payloads []dto.CriterionPayload) datatypes.JSONSlice[models.Criterion] {
	criteria := make(datatypes.JSONSlice[models.Criterion], 0, len(payloads))
	for _, payload := range payloads {
		criteria = append(criteria, models.Criterion{
			Name:     payload.Name,
			MaxScore: payload.MaxScore,
			Weight:   payload.Weight,
		})
	}
	return criteria
}
