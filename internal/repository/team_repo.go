package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// TeamRepository defines data operations for teams and membership lookups.
type TeamRepository interface {
	GetByID(ctx context.Context, id uint) (models.Team, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Team, error)
	ListByHackathon(ctx context.Context, hackathonID uint) ([]models.Team, error)
	Create(ctx context.Context, team *models.Team) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository instantiates the repository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Team{}).Preload("Members")
}

func (r *teamRepository) GetByID(ctx context.Context, id uint) (models.Team, error) {
	var team models.Team
	if err := r.baseQuery(ctx).First(&team, id).Error; err != nil {
		return models.Team{}, err
	}
	return team, nil
}

func (r *teamRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var teams []models.Team
	if err := r.baseQuery(ctx).Where("id IN ?", ids).Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) ListByHackathon(ctx context.Context, hackathonID uint) ([]models.Team, error) {
	var teams []models.Team
	if err := r.baseQuery(ctx).Where("hackathon_id = ?", hackathonID).Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}
