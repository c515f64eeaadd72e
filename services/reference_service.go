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

// ReferenceService manages the categories and locations gigs are filed under.
// Anyone may read them; only admins change them.
type ReferenceService struct {
	references repositories.ReferenceRepository
	log        *zap.Logger
}

func NewReferenceService(references repositories.ReferenceRepository, log *zap.Logger) *ReferenceService {
	return &ReferenceService{references: references, log: orNop(log)}
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type LocationInput struct {
	Name   string `json:"name" validate:"required,max=100"`
	Region string `json:"region" validate:"max=100"`
}

func requireAdmin(actor Actor) error {
	if !actor.Role.IsAdmin() {
		return apperrors.Forbidden("Only administrators can manage reference data")
	}
	return nil
}

// referenceError maps repository failures of a create or delete onto API errors
func (s *ReferenceService) referenceError(op, what string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.Conflict("A " + what + " with this name already exists")
	case errors.Is(err, repositories.ErrInUse):
		return apperrors.Conflict("The " + what + " is used by existing gigs")
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound(strings.ToUpper(what[:1]) + what[1:] + " not found")
	}
	return storageError(s.log, op, err)
}

func (s *ReferenceService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.references.ListCategories(ctx)
	if err != nil {
		return nil, storageError(s.log, "list categories", err)
	}
	return categories, nil
}

func (s *ReferenceService) CreateCategory(ctx context.Context, actor Actor, input CategoryInput) (*models.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	category := &models.Category{Name: input.Name, Description: input.Description}
	if err := s.references.CreateCategory(ctx, category); err != nil {
		return nil, s.referenceError("create category", "category", err)
	}
	return category, nil
}

func (s *ReferenceService) DeleteCategory(ctx context.Context, actor Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.references.DeleteCategory(ctx, id); err != nil {
		return s.referenceError("delete category", "category", err)
	}
	return nil
}

func (s *ReferenceService) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations, err := s.references.ListLocations(ctx)
	if err != nil {
		return nil, storageError(s.log, "list locations", err)
	}
	return locations, nil
}

func (s *ReferenceService) CreateLocation(ctx context.Context, actor Actor, input LocationInput) (*models.Location, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	location := &models.Location{Name: input.Name, Region: input.Region}
	if err := s.references.CreateLocation(ctx, location); err != nil {
		return nil, s.referenceError("create location", "location", err)
	}
	return location, nil
}

func (s *ReferenceService) DeleteLocation(ctx context.Context, actor Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.references.DeleteLocation(ctx, id); err != nil {
		return s.referenceError("delete location", "location", err)
	}
	return nil
}
