package repositories

import (
	"context"
	"math"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"gorm.io/gorm"
)

// RatingRepository persists ratings and keeps provider averages in step with them
type RatingRepository interface {
	ExistsForGig(ctx context.Context, gigID uint) (bool, error)
	// Create inserts the rating and recomputes the provider's average from all
	// of their ratings in the same transaction. A second rating for the same
	// gig fails with ErrDuplicate.
	Create(ctx context.Context, rating *models.Rating) (avg int, err error)
	ListByProvider(ctx context.Context, providerID uint, page Page) ([]models.Rating, int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) ExistsForGig(ctx context.Context, gigID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).Where("gig_id = ?", gigID).Count(&count).Error
	return count > 0, err
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) (int, error) {
	var avg int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return translate(err)
		}

		var scores []int
		if err := tx.Model(&models.Rating{}).
			Where("provider_id = ?", rating.ProviderID).
			Pluck("score", &scores).Error; err != nil {
			return err
		}
		avg = roundedMean(scores)

		return tx.Model(&models.ProviderProfile{}).
			Where("user_id = ?", rating.ProviderID).
			Updates(map[string]interface{}{
				"avg_rating":   avg,
				"rating_count": len(scores),
			}).Error
	})
	if err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *ratingRepository) ListByProvider(ctx context.Context, providerID uint, page Page) ([]models.Rating, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Rating{}).Where("provider_id = ?", providerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	ratings := []models.Rating{}
	if err := page.apply(query.Order("created_at DESC, id DESC")).Find(&ratings).Error; err != nil {
		return nil, 0, err
	}
	return ratings, total, nil
}

// roundedMean is the arithmetic mean rounded half away from zero. It is 0 for no scores.
func roundedMean(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
