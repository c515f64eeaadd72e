package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/services"
)

// GigController serves the gig lifecycle
type GigController struct {
	accounts *services.AccountService
	gigs     *services.GigService
}

func NewGigController(accounts *services.AccountService, gigs *services.GigService) *GigController {
	return &GigController{accounts: accounts, gigs: gigs}
}

// AllocateProviderRequest names the provider an admin assigns to a gig
type AllocateProviderRequest struct {
	ProviderID uint `json:"provider_id"`
}

// UpdateGigStatusRequest is the target status of a lifecycle transition
type UpdateGigStatusRequest struct {
	Status models.GigStatus `json:"status"`
}

// CreateGig handles POST /api/v1/gigs - approved clients only
func (ctl *GigController) CreateGig(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}

	var req services.CreateGigInput
	if !bindJSON(c, &req) {
		return
	}

	gig, err := ctl.gigs.CreateGig(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gig)
}

// ListGigs handles GET /api/v1/gigs?status=&page=&limit=
func (ctl *GigController) ListGigs(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}

	var status *models.GigStatus
	if raw := c.Query("status"); raw != "" {
		s := models.GigStatus(raw)
		status = &s
	}
	page := parsePage(c)

	gigs, total, err := ctl.gigs.ListGigs(c.Request.Context(), actor, status, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, gigs, total, page)
}

// GetGig handles GET /api/v1/gigs/:id
func (ctl *GigController) GetGig(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	gigID, ok := parseID(c, "id")
	if !ok {
		return
	}

	gig, err := ctl.gigs.GetGig(c.Request.Context(), actor, gigID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gig)
}

// AllocateProvider handles POST /api/v1/gigs/:id/allocate - admins only
func (ctl *GigController) AllocateProvider(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	gigID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req AllocateProviderRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ProviderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": gin.H{"provider_id": "is required"},
			},
		})
		return
	}

	gig, err := ctl.gigs.AllocateProvider(c.Request.Context(), actor, gigID, req.ProviderID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gig)
}

// UpdateStatus handles PATCH /api/v1/gigs/:id/status - start, complete or cancel a gig
func (ctl *GigController) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	gigID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateGigStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	gig, err := ctl.gigs.AdvanceStatus(c.Request.Context(), actor, gigID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gig)
}

// RateGig handles POST /api/v1/gigs/:id/rating
func (ctl *GigController) RateGig(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	gigID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.RateInput
	if !bindJSON(c, &req) {
		return
	}

	result, err := ctl.gigs.Rate(c.Request.Context(), actor, gigID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, result)
}

// ListEvents handles GET /api/v1/gigs/:id/events - the gig's status history
func (ctl *GigController) ListEvents(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	gigID, ok := parseID(c, "id")
	if !ok {
		return
	}

	history, err := ctl.gigs.ListEvents(c.Request.Context(), actor, gigID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, history)
}

// UploadImage handles POST /api/v1/gigs/:id/image - multipart field "image"
func (ctl *GigController) UploadImage(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	gigID, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "NO_FILE", "No image file provided")
		return
	}

	gig, err := ctl.gigs.AttachImage(c.Request.Context(), actor, gigID, fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gig)
}
