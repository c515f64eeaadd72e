package testutil

import (
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Role: role,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID, role string) {
	middleware.SetIdentity(c, "test-access-token", MockValidatedClaims(userID, "https://test.auth0.com/", role))
}

// MockAuthMiddleware authenticates every request as the given Auth0 subject
func MockAuthMiddleware(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, auth0ID, role)
		c.Next()
	}
}

// HeaderAuthMiddleware authenticates each request as the subject in the
// X-Test-User header, so one router can serve several actors.
func HeaderAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if subject := c.GetHeader("X-Test-User"); subject != "" {
			SetMockAuthContext(c, subject, c.GetHeader("X-Test-Role"))
		}
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
