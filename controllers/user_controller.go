package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/logger"
	"github.com/kendall-kelly/gig-marketplace-api/middleware"
	"github.com/kendall-kelly/gig-marketplace-api/services"
	"go.uber.org/zap"
)

// UserController serves account registration and the caller's own account
type UserController struct {
	accounts *services.AccountService
	userInfo services.UserInfoProvider
}

func NewUserController(accounts *services.AccountService, userInfo services.UserInfoProvider) *UserController {
	return &UserController{accounts: accounts, userInfo: userInfo}
}

// CreateUser handles POST /api/v1/users - creates the caller's account from Auth0 userinfo
func (ctl *UserController) CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	userInfo, err := ctl.userInfo.GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		logger.Log.Warn("userinfo lookup failed", zap.String("user_id", auth0ID), zap.Error(err))
		errorJSON(c, http.StatusBadGateway, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	user, err := ctl.accounts.Register(c.Request.Context(), auth0ID, userInfo, middleware.GetRoleClaim(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me
func (ctl *UserController) GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c, ctl.accounts)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates the caller's name or email
func (ctl *UserController) UpdateMyProfile(c *gin.Context) {
	user, ok := currentUser(c, ctl.accounts)
	if !ok {
		return
	}

	var req services.UpdateAccountInput
	if !bindJSON(c, &req) {
		return
	}

	updated, err := ctl.accounts.UpdateContact(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, updated)
}
