package repositories

import (
	"context"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"gorm.io/gorm"
)

// ReferenceRepository persists the categories and locations gigs point at
type ReferenceRepository interface {
	CategoryExists(ctx context.Context, id uint) (bool, error)
	LocationExists(ctx context.Context, id uint) (bool, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	// DeleteCategory fails with ErrInUse while gigs reference the category.
	DeleteCategory(ctx context.Context, id uint) error

	CreateLocation(ctx context.Context, location *models.Location) error
	ListLocations(ctx context.Context) ([]models.Location, error)
	// DeleteLocation fails with ErrInUse while gigs reference the location.
	DeleteLocation(ctx context.Context, id uint) error
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) exists(ctx context.Context, model interface{}, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *referenceRepository) CategoryExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Category{}, id)
}

func (r *referenceRepository) LocationExists(ctx context.Context, id uint) (bool, error) {
	return r.exists(ctx, &models.Location{}, id)
}

func (r *referenceRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

func (r *referenceRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *referenceRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.deleteUnreferenced(ctx, &models.Category{}, "category_id", id)
}

func (r *referenceRepository) CreateLocation(ctx context.Context, location *models.Location) error {
	return translate(r.db.WithContext(ctx).Create(location).Error)
}

func (r *referenceRepository) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	err := r.db.WithContext(ctx).Order("name ASC").Find(&locations).Error
	return locations, err
}

func (r *referenceRepository) DeleteLocation(ctx context.Context, id uint) error {
	return r.deleteUnreferenced(ctx, &models.Location{}, "location_id", id)
}

func (r *referenceRepository) deleteUnreferenced(ctx context.Context, model interface{}, column string, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Gig{}).Where(column+" = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}

		result := tx.Delete(model, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
