package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerificationRecord is the role-independent view of a client or provider profile
type VerificationRecord struct {
	UserID     uint                      `json:"user_id"`
	Role       models.Role               `json:"role"`
	Status     models.VerificationStatus `json:"status"`
	ReviewedBy *uint                     `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time                `json:"reviewed_at,omitempty"`
	UpdatedAt  time.Time                 `json:"updated_at"`
	User       *models.User              `json:"user,omitempty"`
}

// VerificationRepository persists verification records. role must be
// models.RoleClient or models.RoleServiceProvider.
type VerificationRepository interface {
	Find(ctx context.Context, userID uint, role models.Role) (*VerificationRecord, error)
	// UpsertStatus creates the record if absent, then overwrites its status.
	UpsertStatus(ctx context.Context, userID uint, role models.Role, status models.VerificationStatus, reviewerID uint) (*VerificationRecord, error)
	List(ctx context.Context, role models.Role, status *models.VerificationStatus, page Page) ([]VerificationRecord, int64, error)

	FindClientProfile(ctx context.Context, userID uint) (*models.ClientProfile, error)
	FindProviderProfile(ctx context.Context, userID uint) (*models.ProviderProfile, error)
	// SaveClientProfile upserts the descriptive fields and never touches the status.
	SaveClientProfile(ctx context.Context, profile *models.ClientProfile) error
	// SaveProviderProfile upserts the descriptive fields and never touches the status or rating.
	SaveProviderProfile(ctx context.Context, profile *models.ProviderProfile) error
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func fromClientProfile(p *models.ClientProfile) *VerificationRecord {
	return &VerificationRecord{
		UserID:     p.UserID,
		Role:       models.RoleClient,
		Status:     p.Status,
		ReviewedBy: p.ReviewedBy,
		ReviewedAt: p.ReviewedAt,
		UpdatedAt:  p.UpdatedAt,
		User:       p.User,
	}
}

func fromProviderProfile(p *models.ProviderProfile) *VerificationRecord {
	return &VerificationRecord{
		UserID:     p.UserID,
		Role:       models.RoleServiceProvider,
		Status:     p.Status,
		ReviewedBy: p.ReviewedBy,
		ReviewedAt: p.ReviewedAt,
		UpdatedAt:  p.UpdatedAt,
		User:       p.User,
	}
}

func (r *verificationRepository) Find(ctx context.Context, userID uint, role models.Role) (*VerificationRecord, error) {
	switch role {
	case models.RoleClient:
		profile, err := r.FindClientProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		return fromClientProfile(profile), nil
	case models.RoleServiceProvider:
		profile, err := r.FindProviderProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		return fromProviderProfile(profile), nil
	}
	return nil, fmt.Errorf("role %q has no verification record", role)
}

func (r *verificationRepository) UpsertStatus(ctx context.Context, userID uint, role models.Role, status models.VerificationStatus, reviewerID uint) (*VerificationRecord, error) {
	now := time.Now()
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "reviewed_by", "reviewed_at", "updated_at"}),
	}

	db := r.db.WithContext(ctx).Clauses(onConflict)
	var err error
	switch role {
	case models.RoleClient:
		err = db.Create(&models.ClientProfile{
			UserID: userID, Status: status, ReviewedBy: &reviewerID, ReviewedAt: &now,
		}).Error
	case models.RoleServiceProvider:
		err = db.Create(&models.ProviderProfile{
			UserID: userID, Status: status, ReviewedBy: &reviewerID, ReviewedAt: &now,
		}).Error
	default:
		return nil, fmt.Errorf("role %q has no verification record", role)
	}
	if err != nil {
		return nil, translate(err)
	}

	return r.Find(ctx, userID, role)
}

func (r *verificationRepository) List(ctx context.Context, role models.Role, status *models.VerificationStatus, page Page) ([]VerificationRecord, int64, error) {
	var model interface{}
	switch role {
	case models.RoleClient:
		model = &models.ClientProfile{}
	case models.RoleServiceProvider:
		model = &models.ProviderProfile{}
	default:
		return nil, 0, fmt.Errorf("role %q has no verification record", role)
	}

	query := r.db.WithContext(ctx).Model(model)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	records := []VerificationRecord{}
	query = page.apply(query.Preload("User").Order("updated_at ASC"))
	if role == models.RoleClient {
		var profiles []models.ClientProfile
		if err := query.Find(&profiles).Error; err != nil {
			return nil, 0, err
		}
		for i := range profiles {
			records = append(records, *fromClientProfile(&profiles[i]))
		}
	} else {
		var profiles []models.ProviderProfile
		if err := query.Find(&profiles).Error; err != nil {
			return nil, 0, err
		}
		for i := range profiles {
			records = append(records, *fromProviderProfile(&profiles[i]))
		}
	}

	return records, total, nil
}

func (r *verificationRepository) FindClientProfile(ctx context.Context, userID uint) (*models.ClientProfile, error) {
	var profile models.ClientProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *verificationRepository) FindProviderProfile(ctx context.Context, userID uint) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *verificationRepository) SaveClientProfile(ctx context.Context, profile *models.ClientProfile) error {
	if profile.Status == "" {
		profile.Status = models.VerificationPending
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"company_name", "phone", "address", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return translate(err)
	}

	saved, err := r.FindClientProfile(ctx, profile.UserID)
	if err != nil {
		return err
	}
	*profile = *saved
	return nil
}

func (r *verificationRepository) SaveProviderProfile(ctx context.Context, profile *models.ProviderProfile) error {
	if profile.Status == "" {
		profile.Status = models.VerificationPending
	}
	err := r.db.WithContext(ctx).Omit("User").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"bio", "phone", "skills", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return translate(err)
	}

	saved, err := r.FindProviderProfile(ctx, profile.UserID)
	if err != nil {
		return err
	}
	*profile = *saved
	return nil
}
