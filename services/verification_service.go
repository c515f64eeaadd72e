package services

import (
	"context"
	"encoding/json"

	"github.com/kendall-kelly/gig-marketplace-api/apperrors"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// VerificationService is the verification gate: it answers whether an
// account may act as a verified client or provider, and owns the only
// mutation of that status.
type VerificationService struct {
	accounts repositories.AccountRepository
	records  repositories.VerificationRepository
	log      *zap.Logger
}

func NewVerificationService(accounts repositories.AccountRepository, records repositories.VerificationRepository, log *zap.Logger) *VerificationService {
	return &VerificationService{accounts: accounts, records: records, log: orNop(log)}
}

func checkVerifiableRole(role models.Role) error {
	if !role.HasVerification() {
		return apperrors.Validation("role must be client or service_provider")
	}
	return nil
}

// GetStatus returns the account's current status. An account without a
// record is pending.
func (s *VerificationService) GetStatus(ctx context.Context, accountID uint, role models.Role) (models.VerificationStatus, error) {
	if err := checkVerifiableRole(role); err != nil {
		return "", err
	}

	record, err := s.records.Find(ctx, accountID, role)
	if isNotFound(err) {
		return models.VerificationPending, nil
	}
	if err != nil {
		return "", storageError(s.log, "load verification record", err)
	}
	return record.Status, nil
}

// SetStatus overwrites the account's status, creating the record first if
// needed. Any status may follow any other.
func (s *VerificationService) SetStatus(ctx context.Context, actor Actor, accountID uint, role models.Role, status models.VerificationStatus) (*repositories.VerificationRecord, error) {
	if !actor.Role.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators can change verification status")
	}
	if err := checkVerifiableRole(role); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.Validation("status must be pending, approved or rejected")
	}

	if _, err := s.accounts.FindByIDAndRole(ctx, accountID, role); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("No " + string(role) + " account with that id")
		}
		return nil, storageError(s.log, "load account", err)
	}

	record, err := s.records.UpsertStatus(ctx, accountID, role, status, actor.ID)
	if err != nil {
		return nil, storageError(s.log, "update verification status", err)
	}

	s.log.Info("verification status changed",
		zap.Uint("account_id", accountID),
		zap.String("role", string(role)),
		zap.String("status", string(status)),
		zap.Uint("admin_id", actor.ID))
	return record, nil
}

// ListRecords returns the verification queue for one role. Admins only.
func (s *VerificationService) ListRecords(ctx context.Context, actor Actor, role models.Role, status *models.VerificationStatus, page repositories.Page) ([]repositories.VerificationRecord, int64, error) {
	if !actor.Role.IsAdmin() {
		return nil, 0, apperrors.Forbidden("Only administrators can review verifications")
	}
	if err := checkVerifiableRole(role); err != nil {
		return nil, 0, err
	}
	if status != nil && !status.Valid() {
		return nil, 0, apperrors.Validation("status must be pending, approved or rejected")
	}

	records, total, err := s.records.List(ctx, role, status, page)
	if err != nil {
		return nil, 0, storageError(s.log, "list verification records", err)
	}
	return records, total, nil
}

// ClientProfileInput is what a client submits to complete their profile
type ClientProfileInput struct {
	CompanyName string `json:"company_name" validate:"max=200"`
	Phone       string `json:"phone" validate:"required,max=40"`
	Address     string `json:"address" validate:"required,max=500"`
}

// SaveClientProfile creates or updates the actor's own client profile. A new
// profile starts pending and the status is never changed here.
func (s *VerificationService) SaveClientProfile(ctx context.Context, actor Actor, input ClientProfileInput) (*models.ClientProfile, error) {
	if actor.Role != models.RoleClient {
		return nil, apperrors.Forbidden("Only clients have a client profile")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	profile := &models.ClientProfile{
		UserID:      actor.ID,
		CompanyName: input.CompanyName,
		Phone:       input.Phone,
		Address:     input.Address,
	}
	if err := s.records.SaveClientProfile(ctx, profile); err != nil {
		return nil, storageError(s.log, "save client profile", err)
	}
	return profile, nil
}

// ProviderProfileInput is what a service provider submits to complete their profile
type ProviderProfileInput struct {
	Bio    string   `json:"bio" validate:"required,max=2000"`
	Phone  string   `json:"phone" validate:"required,max=40"`
	Skills []string `json:"skills" validate:"max=20,dive,required,max=60"`
}

// SaveProviderProfile creates or updates the actor's own provider profile
func (s *VerificationService) SaveProviderProfile(ctx context.Context, actor Actor, input ProviderProfileInput) (*models.ProviderProfile, error) {
	if actor.Role != models.RoleServiceProvider {
		return nil, apperrors.Forbidden("Only service providers have a provider profile")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	skills := input.Skills
	if skills == nil {
		skills = []string{}
	}
	encoded, err := json.Marshal(skills)
	if err != nil {
		return nil, apperrors.Validation("skills must be a list of strings")
	}

	profile := &models.ProviderProfile{
		UserID: actor.ID,
		Bio:    input.Bio,
		Phone:  input.Phone,
		Skills: datatypes.JSON(encoded),
	}
	if err := s.records.SaveProviderProfile(ctx, profile); err != nil {
		return nil, storageError(s.log, "save provider profile", err)
	}
	return profile, nil
}

// GetProviderProfile returns a provider's public profile, including their average rating
func (s *VerificationService) GetProviderProfile(ctx context.Context, providerID uint) (*models.ProviderProfile, error) {
	user, err := s.accounts.FindByIDAndRole(ctx, providerID, models.RoleServiceProvider)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Provider not found")
		}
		return nil, storageError(s.log, "load provider", err)
	}

	profile, err := s.records.FindProviderProfile(ctx, providerID)
	if isNotFound(err) {
		return &models.ProviderProfile{UserID: user.ID, User: user, Status: models.VerificationPending, Skills: datatypes.JSON("[]")}, nil
	}
	if err != nil {
		return nil, storageError(s.log, "load provider profile", err)
	}
	return profile, nil
}
