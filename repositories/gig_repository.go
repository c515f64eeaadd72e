package repositories

import (
	"context"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"gorm.io/gorm"
)

// GigFilter narrows a gig listing. Nil fields do not filter.
type GigFilter struct {
	ClientID   *uint
	ProviderID *uint
	Status     *models.GigStatus
	Page       Page
}

// GigRepository persists gigs. Status changes only go through the
// conditional updates below, so a stale writer can never overwrite a
// transition made by someone else.
type GigRepository interface {
	Create(ctx context.Context, gig *models.Gig) error
	FindByID(ctx context.Context, id uint) (*models.Gig, error)
	// FindDetailed loads the gig with its client, provider, category and location.
	FindDetailed(ctx context.Context, id uint) (*models.Gig, error)
	List(ctx context.Context, filter GigFilter) ([]models.Gig, int64, error)
	// CompareAndSetStatus moves the gig to `to` only if its current status is
	// one of `from`. It reports false when no row matched.
	CompareAndSetStatus(ctx context.Context, id uint, from []models.GigStatus, to models.GigStatus) (bool, error)
	// AssignProvider sets the provider and the allocated status together,
	// only while the gig is open. It reports false when no row matched.
	AssignProvider(ctx context.Context, id, providerID uint) (bool, error)
	SetImageKey(ctx context.Context, id uint, key string) error
}

type gigRepository struct {
	db *gorm.DB
}

func NewGigRepository(db *gorm.DB) GigRepository {
	return &gigRepository{db: db}
}

func (r *gigRepository) Create(ctx context.Context, gig *models.Gig) error {
	return translate(r.db.WithContext(ctx).Omit("Category", "Location", "Client", "Provider").Create(gig).Error)
}

func (r *gigRepository) FindByID(ctx context.Context, id uint) (*models.Gig, error) {
	var gig models.Gig
	if err := r.db.WithContext(ctx).First(&gig, id).Error; err != nil {
		return nil, translate(err)
	}
	return &gig, nil
}

func (r *gigRepository) FindDetailed(ctx context.Context, id uint) (*models.Gig, error) {
	var gig models.Gig
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Provider").
		Preload("Category").
		Preload("Location").
		First(&gig, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &gig, nil
}

func (r *gigRepository) List(ctx context.Context, filter GigFilter) ([]models.Gig, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Gig{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	gigs := []models.Gig{}
	err := filter.Page.apply(query.
		Preload("Client").
		Preload("Provider").
		Preload("Category").
		Preload("Location").
		Order("created_at DESC, id DESC")).
		Find(&gigs).Error
	if err != nil {
		return nil, 0, err
	}

	return gigs, total, nil
}

func (r *gigRepository) CompareAndSetStatus(ctx context.Context, id uint, from []models.GigStatus, to models.GigStatus) (bool, error) {
	expected := make([]string, len(from))
	for i, status := range from {
		expected[i] = string(status)
	}

	result := r.db.WithContext(ctx).
		Model(&models.Gig{}).
		Where("id = ? AND status IN ?", id, expected).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *gigRepository) AssignProvider(ctx context.Context, id, providerID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Gig{}).
		Where("id = ? AND status = ?", id, models.GigOpen).
		Updates(map[string]interface{}{
			"provider_id": providerID,
			"status":      models.GigAllocated,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *gigRepository) SetImageKey(ctx context.Context, id uint, key string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Gig{}).
		Where("id = ?", id).
		Update("image_s3_key", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
