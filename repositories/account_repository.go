package repositories

import (
	"context"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"gorm.io/gorm"
)

// AccountRepository persists user accounts
type AccountRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error)
	// FindByIDAndRole fails with ErrNotFound when the account exists with another role.
	FindByIDAndRole(ctx context.Context, id uint, role models.Role) (*models.User, error)
	UpdateContact(ctx context.Context, user *models.User, name, email string) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *accountRepository) FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *accountRepository) FindByIDAndRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, role).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *accountRepository) UpdateContact(ctx context.Context, user *models.User, name, email string) error {
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if email != "" {
		updates["email"] = email
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return translate(err)
	}
	return translate(r.db.WithContext(ctx).First(user, user.ID).Error)
}
