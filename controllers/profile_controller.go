package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/services"
)

// ProfileController serves client and provider profiles and their review by admins
type ProfileController struct {
	accounts     *services.AccountService
	verification *services.VerificationService
}

func NewProfileController(accounts *services.AccountService, verification *services.VerificationService) *ProfileController {
	return &ProfileController{accounts: accounts, verification: verification}
}

// SetVerificationRequest is the body of an admin review decision
type SetVerificationRequest struct {
	Status models.VerificationStatus `json:"status"`
}

// SaveClientProfile handles PUT /api/v1/profiles/client
func (ctl *ProfileController) SaveClientProfile(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}

	var req services.ClientProfileInput
	if !bindJSON(c, &req) {
		return
	}

	profile, err := ctl.verification.SaveClientProfile(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, profile)
}

// SaveProviderProfile handles PUT /api/v1/profiles/provider
func (ctl *ProfileController) SaveProviderProfile(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}

	var req services.ProviderProfileInput
	if !bindJSON(c, &req) {
		return
	}

	profile, err := ctl.verification.SaveProviderProfile(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, profile)
}

// GetMyVerification handles GET /api/v1/profiles/me/verification
func (ctl *ProfileController) GetMyVerification(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}

	status, err := ctl.verification.GetStatus(c.Request.Context(), actor.ID, actor.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"user_id": actor.ID,
		"role":    actor.Role,
		"status":  status,
	})
}

// GetProvider handles GET /api/v1/providers/:id - a provider's public profile
func (ctl *ProfileController) GetProvider(c *gin.Context) {
	if _, ok := currentActor(c, ctl.accounts); !ok {
		return
	}
	providerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	profile, err := ctl.verification.GetProviderProfile(c.Request.Context(), providerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, profile)
}

// ListVerifications handles GET /api/v1/admin/verifications?role=&status=
func (ctl *ProfileController) ListVerifications(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}

	role := models.Role(c.DefaultQuery("role", string(models.RoleServiceProvider)))
	var status *models.VerificationStatus
	if raw := c.Query("status"); raw != "" {
		s := models.VerificationStatus(raw)
		status = &s
	}
	page := parsePage(c)

	records, total, err := ctl.verification.ListRecords(c.Request.Context(), actor, role, status, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, records, total, page)
}

// SetVerification handles PUT /api/v1/admin/verifications/:role/:userId
func (ctl *ProfileController) SetVerification(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	var req SetVerificationRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := ctl.verification.SetStatus(c.Request.Context(), actor, userID, models.Role(c.Param("role")), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, record)
}
