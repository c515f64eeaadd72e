package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/services"
)

// ReferenceController serves categories and locations
type ReferenceController struct {
	accounts   *services.AccountService
	references *services.ReferenceService
}

func NewReferenceController(accounts *services.AccountService, references *services.ReferenceService) *ReferenceController {
	return &ReferenceController{accounts: accounts, references: references}
}

// ListCategories handles GET /api/v1/categories
func (ctl *ReferenceController) ListCategories(c *gin.Context) {
	categories, err := ctl.references.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, categories)
}

// CreateCategory handles POST /api/v1/admin/categories
func (ctl *ReferenceController) CreateCategory(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}

	var req services.CategoryInput
	if !bindJSON(c, &req) {
		return
	}

	category, err := ctl.references.CreateCategory(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, category)
}

// DeleteCategory handles DELETE /api/v1/admin/categories/:id
func (ctl *ReferenceController) DeleteCategory(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctl.references.DeleteCategory(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListLocations handles GET /api/v1/locations
func (ctl *ReferenceController) ListLocations(c *gin.Context) {
	locations, err := ctl.references.ListLocations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, locations)
}

// CreateLocation handles POST /api/v1/admin/locations
func (ctl *ReferenceController) CreateLocation(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}

	var req services.LocationInput
	if !bindJSON(c, &req) {
		return
	}

	location, err := ctl.references.CreateLocation(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, location)
}

// DeleteLocation handles DELETE /api/v1/admin/locations/:id
func (ctl *ReferenceController) DeleteLocation(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctl.references.DeleteLocation(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
