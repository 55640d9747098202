package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// JudgeRepository defines data operations for judge assignment records.
type JudgeRepository interface {
	ListByHackathon(ctx context.Context, hackathonID uint) ([]models.JudgeAssignment, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.JudgeAssignment, error)
	GetByID(ctx context.Context, id uint) (models.JudgeAssignment, error)
	GetByJudge(ctx context.Context, hackathonID, judgeID uint) (models.JudgeAssignment, error)
	Create(ctx context.Context, assignment *models.JudgeAssignment) error
	Update(ctx context.Context, assignment *models.JudgeAssignment) error
	// MergeRoundAssignment adds submission ids into the judge's assignment
	// set for a round, creating the entry when absent. The merge is a set
	// union guarded by a version check on the parent record; the returned
	// slice holds the ids that were actually new.
	MergeRoundAssignment(ctx context.Context, judgeAssignmentID uint, roundIndex int, submissionIDs []uint, maxSubmissions int) ([]uint, error)
}

type judgeRepository struct {
	db *gorm.DB
}

// NewJudgeRepository instantiates the repository.
func NewJudgeRepository(db *gorm.DB) JudgeRepository {
	return &judgeRepository{db: db}
}

func (r *judgeRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.JudgeAssignment{}).
		Preload("RoundAssignments")
}

func (r *judgeRepository) ListByHackathon(ctx context.Context, hackathonID uint) ([]models.JudgeAssignment, error) {
	var assignments []models.JudgeAssignment
	if err := r.baseQuery(ctx).Where("hackathon_id = ?", hackathonID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *judgeRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.JudgeAssignment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var assignments []models.JudgeAssignment
	if err := r.baseQuery(ctx).Where("id IN ?", ids).Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *judgeRepository) GetByID(ctx context.Context, id uint) (models.JudgeAssignment, error) {
	var assignment models.JudgeAssignment
	if err := r.baseQuery(ctx).First(&assignment, id).Error; err != nil {
		return models.JudgeAssignment{}, err
	}
	return assignment, nil
}

func (r *judgeRepository) GetByJudge(ctx context.Context, hackathonID, judgeID uint) (models.JudgeAssignment, error) {
	var assignment models.JudgeAssignment
	err := r.baseQuery(ctx).
		Where("hackathon_id = ? AND judge_id = ?", hackathonID, judgeID).
		First(&assignment).Error
	if err != nil {
		return models.JudgeAssignment{}, err
	}
	return assignment, nil
}

func (r *judgeRepository) Create(ctx context.Context, assignment *models.JudgeAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *judgeRepository) Update(ctx context.Context, assignment *models.JudgeAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *judgeRepository) MergeRoundAssignment(ctx context.Context, judgeAssignmentID uint, roundIndex int, submissionIDs []uint, maxSubmissions int) ([]uint, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		var parent models.JudgeAssignment
		if err := r.db.WithContext(ctx).First(&parent, judgeAssignmentID).Error; err != nil {
			return nil, err
		}

		var entry models.RoundAssignment
		err := r.db.WithContext(ctx).
			Where("judge_assignment_id = ? AND round_index = ?", judgeAssignmentID, roundIndex).
			First(&entry).Error
		creating := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !creating {
			return nil, err
		}

		existing := make(map[uint]struct{}, len(entry.SubmissionIDs))
		for _, id := range entry.SubmissionIDs {
			existing[id] = struct{}{}
		}

		added := make([]uint, 0, len(submissionIDs))
		merged := append(datatypes.JSONSlice[uint]{}, entry.SubmissionIDs...)
		for _, id := range submissionIDs {
			if _, ok := existing[id]; ok {
				continue
			}
			existing[id] = struct{}{}
			merged = append(merged, id)
			added = append(added, id)
		}

		committed, err := r.commitMerge(ctx, &parent, &entry, creating, merged, roundIndex, maxSubmissions)
		if err != nil {
			return nil, err
		}
		if committed {
			return added, nil
		}
	}

	return nil, ErrVersionConflict
}

func (r *judgeRepository) commitMerge(ctx context.Context, parent *models.JudgeAssignment, entry *models.RoundAssignment, creating bool, merged datatypes.JSONSlice[uint], roundIndex, maxSubmissions int) (bool, error) {
	committed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		guard := tx.Model(&models.JudgeAssignment{}).
			Where("id = ? AND version = ?", parent.ID, parent.Version).
			Update("version", parent.Version+1)
		if guard.Error != nil {
			return guard.Error
		}
		if guard.RowsAffected == 0 {
			// Lost the race; caller re-reads and retries.
			return nil
		}

		if creating {
			entry.JudgeAssignmentID = parent.ID
			entry.RoundIndex = roundIndex
		}
		entry.SubmissionIDs = merged
		if maxSubmissions > 0 {
			entry.MaxSubmissions = maxSubmissions
		}

		if err := tx.Save(entry).Error; err != nil {
			return err
		}
		committed = true
		return nil
	})
	return committed, err
}
