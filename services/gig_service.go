package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/kendall-kelly/gig-marketplace-api/apperrors"
	"github.com/kendall-kelly/gig-marketplace-api/events"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"github.com/kendall-kelly/gig-marketplace-api/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// VerificationGate reports an account's current verification status.
type VerificationGate interface {
	GetStatus(ctx context.Context, accountID uint, role models.Role) (models.VerificationStatus, error)
}

// GigDependencies wires a GigService. Images may be nil when no object
// storage is configured; Publisher defaults to dropping events.
type GigDependencies struct {
	Gigs       repositories.GigRepository
	GigEvents  repositories.GigEventRepository
	Accounts   repositories.AccountRepository
	References repositories.ReferenceRepository
	Ratings    repositories.RatingRepository
	Gate       VerificationGate
	Images     ImageService
	Publisher  events.Publisher
	Log        *zap.Logger
}

// GigService is the gig lifecycle manager. It owns every change to a gig's
// status and checks who may make it:
//
//	createGig         client (approved)           -> open
//	allocateProvider  admin                       open -> allocated
//	startWork         assigned provider           allocated -> in_progress
//	completeWork      assigned provider           in_progress -> completed
//	cancel            owning client               open, allocated -> cancelled
type GigService struct {
	gigs       repositories.GigRepository
	gigEvents  repositories.GigEventRepository
	accounts   repositories.AccountRepository
	references repositories.ReferenceRepository
	ratings    repositories.RatingRepository
	gate       VerificationGate
	images     ImageService
	publisher  events.Publisher
	log        *zap.Logger
}

func NewGigService(deps GigDependencies) *GigService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &GigService{
		gigs:       deps.Gigs,
		gigEvents:  deps.GigEvents,
		accounts:   deps.Accounts,
		references: deps.References,
		ratings:    deps.Ratings,
		gate:       deps.Gate,
		images:     deps.Images,
		publisher:  publisher,
		log:        orNop(deps.Log),
	}
}

// CreateGigInput is the payload of a new gig. A gig always starts open and
// unassigned, so neither status nor provider is accepted here.
type CreateGigInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	CategoryID  uint     `json:"category_id" validate:"required"`
	LocationID  uint     `json:"location_id" validate:"required"`
	StartDate   string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Budget      *float64 `json:"budget" validate:"omitempty,gt=0"`
}

// CreateGig posts a new open gig on behalf of an approved client.
func (s *GigService) CreateGig(ctx context.Context, actor Actor, input CreateGigInput) (*models.Gig, error) {
	if actor.Role != models.RoleClient {
		return nil, apperrors.Forbidden("Only clients can create gigs")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// The datetime rule above guarantees both dates parse
	startDate, _ := time.Parse(dateLayout, input.StartDate)
	endDate, _ := time.Parse(dateLayout, input.EndDate)
	if endDate.Before(startDate) {
		return nil, apperrors.Validation("Invalid request data").
			WithDetails(map[string]string{"end_date": "must not be before start_date"})
	}

	if err := s.checkReferences(ctx, input.CategoryID, input.LocationID); err != nil {
		return nil, err
	}

	status, err := s.gate.GetStatus(ctx, actor.ID, models.RoleClient)
	if err != nil {
		return nil, err
	}
	if status != models.VerificationApproved {
		return nil, apperrors.Precondition("Your client profile must be approved before you can post gigs")
	}

	gig := &models.Gig{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		LocationID:  input.LocationID,
		ClientID:    actor.ID,
		StartDate:   startDate,
		EndDate:     endDate,
		Budget:      input.Budget,
		Status:      models.GigOpen,
	}
	if err := s.gigs.Create(ctx, gig); err != nil {
		return nil, storageError(s.log, "create gig", err)
	}

	s.recordEvent(ctx, gig.ID, actor.ID, nil, models.GigOpen, nil)
	s.log.Info("gig created", zap.Uint("gig_id", gig.ID), zap.Uint("client_id", actor.ID))

	return s.loadDetailed(ctx, gig.ID)
}

func (s *GigService) checkReferences(ctx context.Context, categoryID, locationID uint) error {
	details := map[string]string{}

	exists, err := s.references.CategoryExists(ctx, categoryID)
	if err != nil {
		return storageError(s.log, "look up category", err)
	}
	if !exists {
		details["category_id"] = "does not exist"
	}

	exists, err = s.references.LocationExists(ctx, locationID)
	if err != nil {
		return storageError(s.log, "look up location", err)
	}
	if !exists {
		details["location_id"] = "does not exist"
	}

	if len(details) > 0 {
		return apperrors.Validation("Invalid request data").WithDetails(details)
	}
	return nil
}

// AllocateProvider assigns an approved provider to an open gig. The provider
// and the allocated status are written in one conditional update, so of two
// concurrent allocations only one can win; the other gets InvalidTransition.
func (s *GigService) AllocateProvider(ctx context.Context, actor Actor, gigID, providerID uint) (*models.Gig, error) {
	if !actor.Role.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators can allocate providers")
	}

	gig, err := s.findGig(ctx, gigID)
	if err != nil {
		return nil, err
	}

	if _, err := s.accounts.FindByIDAndRole(ctx, providerID, models.RoleServiceProvider); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Service provider not found")
		}
		return nil, storageError(s.log, "load provider", err)
	}

	status, err := s.gate.GetStatus(ctx, providerID, models.RoleServiceProvider)
	if err != nil {
		return nil, err
	}
	if status != models.VerificationApproved {
		return nil, apperrors.Precondition("The provider's profile is not approved")
	}

	if gig.Status != models.GigOpen {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("Cannot allocate a gig that is %s", gig.Status))
	}

	allocated, err := s.gigs.AssignProvider(ctx, gigID, providerID)
	if err != nil {
		return nil, storageError(s.log, "allocate provider", err)
	}
	if !allocated {
		return nil, apperrors.InvalidTransition("The gig was allocated or cancelled by someone else")
	}

	from := models.GigOpen
	s.recordEvent(ctx, gigID, actor.ID, &from, models.GigAllocated, map[string]interface{}{"provider_id": providerID})
	s.log.Info("provider allocated",
		zap.Uint("gig_id", gigID),
		zap.Uint("provider_id", providerID),
		zap.Uint("admin_id", actor.ID))

	event := events.GigAllocated{
		GigID:       gigID,
		ClientID:    gig.ClientID,
		ProviderID:  providerID,
		AllocatedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishGigAllocated(ctx, event); err != nil {
		s.log.Warn("failed to publish gig allocated event", zap.Uint("gig_id", gigID), zap.Error(err))
	}

	return s.loadDetailed(ctx, gigID)
}

// AdvanceStatus dispatches to StartWork, CompleteWork or Cancel by target status.
func (s *GigService) AdvanceStatus(ctx context.Context, actor Actor, gigID uint, target models.GigStatus) (*models.Gig, error) {
	switch target {
	case models.GigInProgress:
		return s.StartWork(ctx, actor, gigID)
	case models.GigCompleted:
		return s.CompleteWork(ctx, actor, gigID)
	case models.GigCancelled:
		return s.Cancel(ctx, actor, gigID)
	}
	return nil, apperrors.Validation("status must be one of: in_progress, completed, cancelled")
}

// StartWork moves an allocated gig to in_progress. Assigned provider only.
func (s *GigService) StartWork(ctx context.Context, actor Actor, gigID uint) (*models.Gig, error) {
	return s.transition(ctx, actor, gigID, models.GigInProgress,
		[]models.GigStatus{models.GigAllocated}, requireAssignedProvider)
}

// CompleteWork moves an in-progress gig to completed. Assigned provider only.
func (s *GigService) CompleteWork(ctx context.Context, actor Actor, gigID uint) (*models.Gig, error) {
	return s.transition(ctx, actor, gigID, models.GigCompleted,
		[]models.GigStatus{models.GigInProgress}, requireAssignedProvider)
}

// Cancel withdraws a gig that has not been started. Owning client only.
// An allocated provider stays recorded on the cancelled gig.
func (s *GigService) Cancel(ctx context.Context, actor Actor, gigID uint) (*models.Gig, error) {
	return s.transition(ctx, actor, gigID, models.GigCancelled,
		[]models.GigStatus{models.GigOpen, models.GigAllocated}, requireOwningClient)
}

// requireAssignedProvider admits providers only. A gig without a provider yet
// is left to the status check, which rejects it as not allocated.
func requireAssignedProvider(actor Actor, gig *models.Gig) error {
	if actor.Role != models.RoleServiceProvider || (gig.ProviderID != nil && !gig.IsAssignedTo(actor.ID)) {
		return apperrors.Forbidden("Only the provider assigned to this gig can update its work status")
	}
	return nil
}

func requireOwningClient(actor Actor, gig *models.Gig) error {
	if actor.Role != models.RoleClient || gig.ClientID != actor.ID {
		return apperrors.Forbidden("Only the client who posted this gig can cancel it")
	}
	return nil
}

func (s *GigService) transition(
	ctx context.Context,
	actor Actor,
	gigID uint,
	to models.GigStatus,
	from []models.GigStatus,
	authorize func(Actor, *models.Gig) error,
) (*models.Gig, error) {
	gig, err := s.findGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, gig); err != nil {
		return nil, err
	}

	if !containsStatus(from, gig.Status) {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("Cannot move a gig from %s to %s", gig.Status, to))
	}

	moved, err := s.gigs.CompareAndSetStatus(ctx, gigID, from, to)
	if err != nil {
		return nil, storageError(s.log, "update gig status", err)
	}
	if !moved {
		return nil, apperrors.InvalidTransition("The gig status was changed by someone else")
	}

	previous := gig.Status
	s.recordEvent(ctx, gigID, actor.ID, &previous, to, nil)
	s.log.Info("gig status changed",
		zap.Uint("gig_id", gigID),
		zap.String("from", string(previous)),
		zap.String("to", string(to)),
		zap.Uint("actor_id", actor.ID))

	return s.loadDetailed(ctx, gigID)
}

func containsStatus(statuses []models.GigStatus, status models.GigStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// RateInput is a client's rating of a completed gig
type RateInput struct {
	Score  int     `json:"score" validate:"required,min=1,max=5"`
	Review *string `json:"review" validate:"omitempty,max=2000"`
}

// RatingResult is the stored rating together with the provider's refreshed average
type RatingResult struct {
	Rating            *models.Rating `json:"rating"`
	ProviderAvgRating int            `json:"provider_avg_rating"`
}

// Rate records the owning client's rating of a completed gig and refreshes
// the provider's average. A gig can be rated once.
func (s *GigService) Rate(ctx context.Context, actor Actor, gigID uint, input RateInput) (*RatingResult, error) {
	gig, err := s.findGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleClient || gig.ClientID != actor.ID {
		return nil, apperrors.Forbidden("Only the client who posted this gig can rate it")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if gig.Status != models.GigCompleted || gig.ProviderID == nil {
		return nil, apperrors.Precondition("Only completed gigs can be rated")
	}

	exists, err := s.ratings.ExistsForGig(ctx, gigID)
	if err != nil {
		return nil, storageError(s.log, "look up rating", err)
	}
	if exists {
		return nil, apperrors.Conflict("This gig has already been rated")
	}

	rating := &models.Rating{
		GigID:      gigID,
		ClientID:   actor.ID,
		ProviderID: *gig.ProviderID,
		Score:      input.Score,
		Review:     input.Review,
	}
	avg, err := s.ratings.Create(ctx, rating)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, apperrors.Conflict("This gig has already been rated")
	}
	if err != nil {
		return nil, storageError(s.log, "save rating", err)
	}

	s.log.Info("gig rated",
		zap.Uint("gig_id", gigID),
		zap.Uint("provider_id", rating.ProviderID),
		zap.Int("score", rating.Score),
		zap.Int("provider_avg_rating", avg))

	return &RatingResult{Rating: rating, ProviderAvgRating: avg}, nil
}

// canView reports whether actor may read the gig: admins see every gig,
// clients their own and providers the ones assigned to them.
func canView(actor Actor, gig *models.Gig) bool {
	switch {
	case actor.Role.IsAdmin():
		return true
	case actor.Role == models.RoleClient:
		return gig.ClientID == actor.ID
	case actor.Role == models.RoleServiceProvider:
		return gig.IsAssignedTo(actor.ID)
	}
	return false
}

// GetGig returns a gig the actor is allowed to see
func (s *GigService) GetGig(ctx context.Context, actor Actor, gigID uint) (*models.Gig, error) {
	gig, err := s.loadDetailed(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, gig) {
		return nil, apperrors.Forbidden("You do not have permission to view this gig")
	}
	return gig, nil
}

// ListGigs returns the gigs visible to the actor, newest first
func (s *GigService) ListGigs(ctx context.Context, actor Actor, status *models.GigStatus, page repositories.Page) ([]models.Gig, int64, error) {
	if status != nil && !status.Valid() {
		return nil, 0, apperrors.Validation("status must be one of: open, allocated, in_progress, completed, cancelled")
	}

	filter := repositories.GigFilter{Status: status, Page: page}
	switch {
	case actor.Role.IsAdmin():
	case actor.Role == models.RoleClient:
		filter.ClientID = &actor.ID
	case actor.Role == models.RoleServiceProvider:
		filter.ProviderID = &actor.ID
	default:
		return nil, 0, apperrors.Forbidden("You do not have permission to list gigs")
	}

	gigs, total, err := s.gigs.List(ctx, filter)
	if err != nil {
		return nil, 0, storageError(s.log, "list gigs", err)
	}
	for i := range gigs {
		s.attachImageURL(ctx, &gigs[i])
	}
	return gigs, total, nil
}

// ListEvents returns the lifecycle history of a gig the actor may see
func (s *GigService) ListEvents(ctx context.Context, actor Actor, gigID uint) ([]models.GigEvent, error) {
	gig, err := s.findGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, gig) {
		return nil, apperrors.Forbidden("You do not have permission to view this gig")
	}

	history, err := s.gigEvents.ListByGig(ctx, gigID)
	if err != nil {
		return nil, storageError(s.log, "list gig events", err)
	}
	return history, nil
}

// AttachImage stores a reference image for a gig that has not started yet,
// replacing any previous one. Owning client only.
func (s *GigService) AttachImage(ctx context.Context, actor Actor, gigID uint, fileHeader *multipart.FileHeader) (*models.Gig, error) {
	if s.images == nil {
		return nil, apperrors.Precondition("Image storage is not configured")
	}

	gig, err := s.findGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleClient || gig.ClientID != actor.ID {
		return nil, apperrors.Forbidden("Only the client who posted this gig can attach images")
	}
	if gig.Status != models.GigOpen && gig.Status != models.GigAllocated {
		return nil, apperrors.Precondition("Images can only be attached before work starts")
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return nil, apperrors.Validation(uploadErr.Message).WithDetails(map[string]string{"image": uploadErr.Code})
		}
		return nil, apperrors.Validation(err.Error())
	}

	key, err := s.images.UploadImage(ctx, gigID, fileHeader)
	if err != nil {
		s.log.Error("image upload failed", zap.Uint("gig_id", gigID), zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.KindStorage, "Failed to upload image")
	}

	if err := s.gigs.SetImageKey(ctx, gigID, key); err != nil {
		return nil, storageError(s.log, "save gig image", err)
	}

	if gig.ImageS3Key != nil && *gig.ImageS3Key != key {
		if err := s.images.DeleteImage(ctx, *gig.ImageS3Key); err != nil {
			s.log.Warn("failed to delete replaced image", zap.String("key", *gig.ImageS3Key), zap.Error(err))
		}
	}

	return s.loadDetailed(ctx, gigID)
}

func (s *GigService) findGig(ctx context.Context, gigID uint) (*models.Gig, error) {
	gig, err := s.gigs.FindByID(ctx, gigID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Gig not found")
		}
		return nil, storageError(s.log, "load gig", err)
	}
	return gig, nil
}

func (s *GigService) loadDetailed(ctx context.Context, gigID uint) (*models.Gig, error) {
	gig, err := s.gigs.FindDetailed(ctx, gigID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Gig not found")
		}
		return nil, storageError(s.log, "load gig", err)
	}
	s.attachImageURL(ctx, gig)
	return gig, nil
}

func (s *GigService) attachImageURL(ctx context.Context, gig *models.Gig) {
	if s.images == nil || gig.ImageS3Key == nil || *gig.ImageS3Key == "" {
		return
	}
	url, err := s.images.GetImageURL(ctx, *gig.ImageS3Key)
	if err != nil {
		s.log.Warn("failed to presign gig image", zap.Uint("gig_id", gig.ID), zap.Error(err))
		return
	}
	gig.ImageURL = &url
}

// recordEvent appends to the gig history. The transition is already
// committed, so a failure here is only logged.
func (s *GigService) recordEvent(ctx context.Context, gigID, actorID uint, from *models.GigStatus, to models.GigStatus, payload map[string]interface{}) {
	if s.gigEvents == nil {
		return
	}

	event := &models.GigEvent{GigID: gigID, ActorID: actorID, FromStatus: from, ToStatus: to}
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err == nil {
			event.Payload = datatypes.JSON(encoded)
		}
	}
	if err := s.gigEvents.Append(ctx, event); err != nil {
		s.log.Error("failed to record gig event", zap.Uint("gig_id", gigID), zap.String("to", string(to)), zap.Error(err))
	}
}
