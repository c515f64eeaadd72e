package services

import (
	"context"
	"errors"
	"strings"

	"github.com/kendall-kelly/gig-marketplace-api/apperrors"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"go.uber.org/zap"
)

// AccountService registers accounts and resolves the caller behind a token
type AccountService struct {
	accounts repositories.AccountRepository
	log      *zap.Logger
}

func NewAccountService(accounts repositories.AccountRepository, log *zap.Logger) *AccountService {
	return &AccountService{accounts: accounts, log: orNop(log)}
}

// Register creates the account for an Auth0 identity. The role comes from the
// token's role claim, defaults to client, and is fixed from then on.
func (s *AccountService) Register(ctx context.Context, auth0ID string, info *Auth0UserInfo, roleClaim string) (*models.User, error) {
	role := models.RoleClient
	if roleClaim != "" {
		role = models.Role(roleClaim)
	}
	if !role.Valid() {
		return nil, apperrors.Validation("Unknown role in token: " + roleClaim)
	}

	name := strings.TrimSpace(info.Name)
	email := strings.TrimSpace(info.Email)
	details := map[string]string{}
	if email == "" {
		details["email"] = "not provided by the identity provider"
	}
	if name == "" {
		details["name"] = "not provided by the identity provider"
	}
	if len(details) > 0 {
		return nil, apperrors.Validation("Incomplete identity profile").WithDetails(details)
	}

	user := &models.User{Auth0ID: auth0ID, Name: name, Email: email, Role: role}
	if err := s.accounts.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("A user with this Auth0 ID or email already exists")
		}
		return nil, storageError(s.log, "create user", err)
	}

	s.log.Info("account registered", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Resolve returns the account registered for auth0ID
func (s *AccountService) Resolve(ctx context.Context, auth0ID string) (*models.User, error) {
	user, err := s.accounts.FindByAuth0ID(ctx, auth0ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("User profile not found. Please create a profile first.")
		}
		return nil, storageError(s.log, "load user", err)
	}
	return user, nil
}

// UpdateAccountInput holds the contact fields a user may change. Empty fields are left alone.
type UpdateAccountInput struct {
	Name  string `json:"name" validate:"omitempty,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (s *AccountService) UpdateContact(ctx context.Context, user *models.User, input UpdateAccountInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateContact(ctx, user, input.Name, input.Email); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("A user with this email already exists")
		}
		return nil, storageError(s.log, "update user", err)
	}
	return user, nil
}
