package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// SubmissionFilter narrows submission queries.
type SubmissionFilter struct {
	HackathonID   *uint
	RoundIndex    *int
	TeamID        *uint
	ParticipantID *uint
	Status        *string
	Kind          *string
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ListByRound(ctx context.Context, hackathonID uint, roundIndex int) ([]models.Submission, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByActorAndRound(ctx context.Context, hackathonID uint, roundIndex int, teamID *uint, participantID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	// ResetStatusByRound moves every submission of the round from one status
	// to another and returns how many rows changed.
	ResetStatusByRound(ctx context.Context, hackathonID uint, roundIndex int, from, to string) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Team").
		Preload("Team.Members").
		Preload("Participant").
		Preload("ProblemStatement")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.HackathonID != nil {
		query = query.Where("hackathon_id = ?", *filter.HackathonID)
	}
	if filter.RoundIndex != nil {
		query = query.Where("round_index = ?", *filter.RoundIndex)
	}
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.ParticipantID != nil {
		query = query.Where("participant_id = ?", *filter.ParticipantID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByRound(ctx context.Context, hackathonID uint, roundIndex int) ([]models.Submission, error) {
	return r.List(ctx, SubmissionFilter{HackathonID: &hackathonID, RoundIndex: &roundIndex})
}

func (r *submissionRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Submission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var submissions []models.Submission
	if err := r.baseQuery(ctx).Where("id IN ?", ids).Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) GetByActorAndRound(ctx context.Context, hackathonID uint, roundIndex int, teamID *uint, participantID uint) (models.Submission, error) {
	query := r.baseQuery(ctx).
		Where("hackathon_id = ? AND round_index = ?", hackathonID, roundIndex)

	if teamID != nil {
		query = query.Where("team_id = ?", *teamID)
	} else {
		query = query.Where("team_id IS NULL AND participant_id = ?", participantID)
	}

	var submission models.Submission
	if err := query.First(&submission).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) ResetStatusByRound(ctx context.Context, hackathonID uint, roundIndex int, from, to string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("hackathon_id = ? AND round_index = ? AND status = ?", hackathonID, roundIndex, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
