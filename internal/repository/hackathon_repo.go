package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hackmate-io/hackmate-api/internal/models"
)

// HackathonRepository defines data operations for hackathons.
type HackathonRepository interface {
	List(ctx context.Context) ([]models.Hackathon, error)
	GetByID(ctx context.Context, id uint) (models.Hackathon, error)
	GetBySlug(ctx context.Context, slug string) (models.Hackathon, error)
	Create(ctx context.Context, hackathon *models.Hackathon) error
	Update(ctx context.Context, hackathon *models.Hackathon) error
}

type hackathonRepository struct {
	db *gorm.DB
}

// NewHackathonRepository instantiates the repository.
func NewHackathonRepository(db *gorm.DB) HackathonRepository {
	return &hackathonRepository{db: db}
}

func (r *hackathonRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Hackathon{}).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("rounds.round_index ASC")
		}).
		Preload("ProblemStatements")
}

func (r *hackathonRepository) List(ctx context.Context) ([]models.Hackathon, error) {
	var hackathons []models.Hackathon
	if err := r.baseQuery(ctx).Order("created_at DESC").Find(&hackathons).Error; err != nil {
		return nil, err
	}
	return hackathons, nil
}

func (r *hackathonRepository) GetByID(ctx context.Context, id uint) (models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.baseQuery(ctx).First(&hackathon, id).Error; err != nil {
		return models.Hackathon{}, err
	}
	return hackathon, nil
}

func (r *hackathonRepository) GetBySlug(ctx context.Context, slug string) (models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := r.baseQuery(ctx).Where("slug = ?", slug).First(&hackathon).Error; err != nil {
		return models.Hackathon{}, err
	}
	return hackathon, nil
}

func (r *hackathonRepository) Create(ctx context.Context, hackathon *models.Hackathon) error {
	return r.db.WithContext(ctx).Create(hackathon).Error
}

func (r *hackathonRepository) Update(ctx context.Context, hackathon *models.Hackathon) error {
	return r.db.WithContext(ctx).Save(hackathon).Error
}
