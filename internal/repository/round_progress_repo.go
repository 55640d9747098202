package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// ErrVersionConflict indicates an optimistic-concurrency write lost the race
// after retries were exhausted.
var ErrVersionConflict = errors.New("record version conflict")

const casAttempts = 3

// RoundProgressRepository persists per-round shortlisting outcomes.
type RoundProgressRepository interface {
	GetByRound(ctx context.Context, hackathonID uint, roundIndex int) (models.RoundProgress, error)
	ListByHackathon(ctx context.Context, hackathonID uint) ([]models.RoundProgress, error)
	// Upsert writes the decision for a round, replacing any previous one.
	// Concurrent writers are serialized by a version check.
	Upsert(ctx context.Context, progress *models.RoundProgress) error
}

type roundProgressRepository struct {
	db *gorm.DB
}

// NewRoundProgressRepository instantiates the repository.
func NewRoundProgressRepository(db *gorm.DB) RoundProgressRepository {
	return &roundProgressRepository{db: db}
}

func (r *roundProgressRepository) GetByRound(ctx context.Context, hackathonID uint, roundIndex int) (models.RoundProgress, error) {
	var progress models.RoundProgress
	err := r.db.WithContext(ctx).
		Where("hackathon_id = ? AND round_index = ?", hackathonID, roundIndex).
		First(&progress).Error
	if err != nil {
		return models.RoundProgress{}, err
	}
	return progress, nil
}

func (r *roundProgressRepository) ListByHackathon(ctx context.Context, hackathonID uint) ([]models.RoundProgress, error) {
	var records []models.RoundProgress
	err := r.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathonID).
		Order("round_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *roundProgressRepository) Upsert(ctx context.Context, progress *models.RoundProgress) error {
	for attempt := 0; attempt < casAttempts; attempt++ {
		var existing models.RoundProgress
		err := r.db.WithContext(ctx).
			Where("hackathon_id = ? AND round_index = ?", progress.HackathonID, progress.RoundIndex).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress.ID = 0
			progress.Version = 0
			if createErr := r.db.WithContext(ctx).Create(progress).Error; createErr == nil {
				return nil
			}
			// Creation race: another writer inserted the row first.
			continue
		}
		if err != nil {
			return err
		}

		result := r.db.WithContext(ctx).Model(&models.RoundProgress{}).
			Where("id = ? AND version = ?", existing.ID, existing.Version).
			Updates(map[string]interface{}{
				"shortlisted_submission_ids": progress.ShortlistedSubmissionIDs,
				"shortlisted_team_ids":       progress.ShortlistedTeamIDs,
				"eligible_participant_ids":   progress.EligibleParticipantIDs,
				"round_completed":            progress.RoundCompleted,
				"version":                    existing.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			progress.ID = existing.ID
			progress.Version = existing.Version + 1
			return nil
		}
	}

	return ErrVersionConflict
}
