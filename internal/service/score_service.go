package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/dto"
	"github.com/hackmate-io/hackmate-api/internal/models"
	"github.com/hackmate-io/hackmate-api/internal/repository"
)

// ScoreService records judge evaluations. A judge may only score submissions
// that appear in their round assignment, and per-criterion scores are checked
// against the round's criteria definition.
type ScoreService interface {
	Submit(ctx context.Context, hackathonID uint, judgeID uint, payload dto.ScoreSubmitRequest) (dto.ScoreResponse, error)
	ListByJudge(ctx context.Context, hackathonID, judgeID uint) ([]dto.ScoreResponse, error)
	ListBySubmission(ctx context.Context, submissionID uint, roundIndex int) ([]dto.ScoreResponse, error)
}

type scoreService struct {
	scores      repository.ScoreRepository
	submissions repository.SubmissionRepository
	judges      repository.JudgeRepository
	hackathons  repository.HackathonRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewScoreService constructs the score service.
func NewScoreService(scores repository.ScoreRepository, submissions repository.SubmissionRepository, judges repository.JudgeRepository, hackathons repository.HackathonRepository, validate *validator.Validate, logger zerolog.Logger) ScoreService {
	return &scoreService{
		scores:      scores,
		submissions: submissions,
		judges:      judges,
		hackathons:  hackathons,
		validator:   validate,
		logger:      logger.With().Str("component", "score_service").Logger(),
		now:         time.Now,
	}
}

func (s *scoreService) Submit(ctx context.Context, hackathonID uint, judgeID uint, payload dto.ScoreSubmitRequest) (dto.ScoreResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoreResponse{}, err
	}
	if len(payload.Criteria) == 0 && payload.Total == nil {
		return dto.ScoreResponse{}, ErrScoreShapeMissing
	}

	judge, err := s.judges.GetByJudge(ctx, hackathonID, judgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreResponse{}, ErrJudgeNotFound
		}
		return dto.ScoreResponse{}, err
	}
	if !judge.Active {
		return dto.ScoreResponse{}, ErrJudgeInactive
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreResponse{}, ErrSubmissionNotFound
		}
		return dto.ScoreResponse{}, err
	}
	if submission.HackathonID != hackathonID {
		return dto.ScoreResponse{}, ErrSubmissionNotFound
	}

	assignment, ok := judge.RoundAssignmentFor(submission.RoundIndex)
	if !ok || !assignment.Contains(submission.ID) {
		return dto.ScoreResponse{}, ErrJudgeNotAssigned
	}

	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		return dto.ScoreResponse{}, err
	}
	round, ok := hackathon.RoundAt(submission.RoundIndex)
	if !ok {
		return dto.ScoreResponse{}, ErrInvalidRound
	}

	criteria, total, err := s.normalize(round, payload)
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	score := models.Score{
		SubmissionID: submission.ID,
		JudgeID:      judgeID,
		RoundIndex:   submission.RoundIndex,
		Kind:         payload.Kind,
		HackathonID:  hackathonID,
		Criteria:     datatypes.NewJSONSlice(criteria),
		Total:        total,
	}
	if err := s.scores.Upsert(ctx, &score); err != nil {
		return dto.ScoreResponse{}, err
	}

	s.logger.Info().
		Uint("judge_id", judgeID).
		Uint("submission_id", submission.ID).
		Float64("total", score.Total).
		Msg("score recorded")

	return dto.NewScoreResponse(score), nil
}

func (s *scoreService) ListByJudge(ctx context.Context, hackathonID, judgeID uint) ([]dto.ScoreResponse, error) {
	scores, err := s.scores.ListByJudge(ctx, hackathonID, judgeID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.ScoreResponse, 0, len(scores))
	for _, score := range scores {
		responses = append(responses, dto.NewScoreResponse(score))
	}
	return responses, nil
}

func (s *scoreService) ListBySubmission(ctx context.Context, submissionID uint, roundIndex int) ([]dto.ScoreResponse, error) {
	scores, err := s.scores.ListBySubmission(ctx, submissionID, roundIndex)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.ScoreResponse, 0, len(scores))
	for _, score := range scores {
		responses = append(responses, dto.NewScoreResponse(score))
	}
	return responses, nil
}

// normalize resolves the payload into stored criterion entries and a total.
// Per-criterion payloads are matched against the round's criteria definition
// and averaged; flat payloads keep the judge's total as-is.
func (s *scoreService) normalize(round models.Round, payload dto.ScoreSubmitRequest) ([]models.CriterionScore, float64, error) {
	if len(payload.Criteria) == 0 {
		return nil, *payload.Total, nil
	}

	defs := make(map[string]models.Criterion, len(round.CriteriaFor(payload.Kind)))
	for _, def := range round.CriteriaFor(payload.Kind) {
		defs[def.Name] = def
	}

	entries := make([]models.CriterionScore, 0, len(payload.Criteria))
	sum := 0.0
	for _, item := range payload.Criteria {
		def, known := defs[item.Name]
		maxScore := def.MaxScore
		if !known || maxScore <= 0 {
			maxScore = 10
		}
		if item.Score > maxScore {
			return nil, 0, ErrScoreExceedsMax
		}
		entries = append(entries, models.CriterionScore{
			Name:     item.Name,
			Score:    item.Score,
			MaxScore: maxScore,
			Weight:   def.Weight,
		})
		sum += item.Score / maxScore * 10
	}

	return entries, round1(sum / float64(len(entries))), nil
}
