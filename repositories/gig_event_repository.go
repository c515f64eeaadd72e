package repositories

import (
	"context"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"gorm.io/gorm"
)

// GigEventRepository appends to and reads a gig's lifecycle history
type GigEventRepository interface {
	Append(ctx context.Context, event *models.GigEvent) error
	ListByGig(ctx context.Context, gigID uint) ([]models.GigEvent, error)
}

type gigEventRepository struct {
	db *gorm.DB
}

func NewGigEventRepository(db *gorm.DB) GigEventRepository {
	return &gigEventRepository{db: db}
}

func (r *gigEventRepository) Append(ctx context.Context, event *models.GigEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *gigEventRepository) ListByGig(ctx context.Context, gigID uint) ([]models.GigEvent, error) {
	events := []models.GigEvent{}
	err := r.db.WithContext(ctx).
		Where("gig_id = ?", gigID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}
