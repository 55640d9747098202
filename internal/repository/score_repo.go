package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// ScoreRepository defines data operations for judge scores. The evaluation
// engine only reads scores; judges write them through Upsert.
type ScoreRepository interface {
	ListBySubmission(ctx context.Context, submissionID uint, roundIndex int) ([]models.Score, error)
	ListByRound(ctx context.Context, hackathonID uint, roundIndex int) ([]models.Score, error)
	ListByJudge(ctx context.Context, hackathonID, judgeID uint) ([]models.Score, error)
	Upsert(ctx context.Context, score *models.Score) error
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository instantiates the repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) ListBySubmission(ctx context.Context, submissionID uint, roundIndex int) ([]models.Score, error) {
	var scores []models.Score
	err := r.db.WithContext(ctx).
		Where("submission_id = ? AND round_index = ?", submissionID, roundIndex).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *scoreRepository) ListByRound(ctx context.Context, hackathonID uint, roundIndex int) ([]models.Score, error) {
	var scores []models.Score
	err := r.db.WithContext(ctx).
		Where("hackathon_id = ? AND round_index = ?", hackathonID, roundIndex).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *scoreRepository) ListByJudge(ctx context.Context, hackathonID, judgeID uint) ([]models.Score, error) {
	var scores []models.Score
	err := r.db.WithContext(ctx).
		Where("hackathon_id = ? AND judge_id = ?", hackathonID, judgeID).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *scoreRepository) Upsert(ctx context.Context, score *models.Score) error {
	var existing models.Score
	err := r.db.WithContext(ctx).
		Where("submission_id = ? AND judge_id = ? AND round_index = ? AND kind = ?",
			score.SubmissionID, score.JudgeID, score.RoundIndex, score.Kind).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(score).Error
	}
	if err != nil {
		return err
	}

	existing.Criteria = score.Criteria
	existing.Total = score.Total
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	*score = existing
	return nil
}
