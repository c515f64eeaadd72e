package controllers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/apperrors"
	"github.com/kendall-kelly/gig-marketplace-api/logger"
	"github.com/kendall-kelly/gig-marketplace-api/middleware"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"github.com/kendall-kelly/gig-marketplace-api/services"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func errorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError renders err in the API error envelope. Errors outside the
// apperrors taxonomy are logged and reported as internal errors.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		logger.Log.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
		return
	}

	body := gin.H{
		"code":    appErr.Kind,
		"message": appErr.Message,
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.JSON(apperrors.HTTPStatus(appErr.Kind), gin.H{
		"success": false,
		"error":   body,
	})
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondPage(c *gin.Context, data interface{}, total int64, page repositories.Page) {
	totalPages := 0
	if page.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(page.Limit)))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"page":       page.Page,
			"limit":      page.Limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

// bindJSON decodes the request body into req. Field rules are checked by the services.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    apperrors.KindValidation,
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return false
	}
	return true
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		errorJSON(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parsePage reads ?page= and ?limit=, falling back to the first page of 20
func parsePage(c *gin.Context) repositories.Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return repositories.Page{Page: page, Limit: limit}
}

// AccountResolver finds the registered account behind an Auth0 subject
type AccountResolver interface {
	Resolve(ctx context.Context, auth0ID string) (*models.User, error)
}

// currentUser loads the caller's account, writing the error response when it
// cannot be resolved.
func currentUser(c *gin.Context, accounts AccountResolver) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		errorJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	user, err := accounts.Resolve(c.Request.Context(), auth0ID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}
	return user, true
}

// currentActor is currentUser reduced to what the services authorize against
func currentActor(c *gin.Context, accounts AccountResolver) (services.Actor, bool) {
	user, ok := currentUser(c, accounts)
	if !ok {
		return services.Actor{}, false
	}
	return services.ActorFor(user), true
}
