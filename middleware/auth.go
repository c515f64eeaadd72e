package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/config"
	"github.com/kendall-kelly/gig-marketplace-api/logger"
	"go.uber.org/zap"
)

// RoleClaim is the namespaced custom claim carrying the account role chosen at sign-up.
const RoleClaim = "https://gigmarket.app/role"

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Role string `json:"https://gigmarket.app/role"`
}

// Validate satisfies validator.CustomClaims. The role is checked when the
// account is registered, not on every request.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		logger.Log.Fatal("Failed to parse the issuer url", zap.Error(err))
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		logger.Log.Fatal("Failed to set up the jwt validator", zap.Error(err))
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Log.Warn("Encountered error while validating JWT", zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			logger.Log.Error("Failed to write error response", zap.Error(writeErr))
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			SetIdentity(c, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "), claims)
			c.Request = r
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if c.Writer.Written() && !c.IsAborted() && c.Writer.Status() == http.StatusUnauthorized {
			c.Abort()
		}
	}
}

// Gin context keys holding the authenticated caller.
const (
	UserIDKey = "user_id"
	TokenKey  = "access_token"
	ClaimsKey = "validated_claims"
)

// SetIdentity records an authenticated caller on the request context. The
// subject of the claims becomes the Auth0 user id.
func SetIdentity(c *gin.Context, accessToken string, claims *validator.ValidatedClaims) {
	c.Set(UserIDKey, claims.RegisteredClaims.Subject)
	c.Set(TokenKey, accessToken)
	c.Set(ClaimsKey, claims)
}

func fromContext[T any](c *gin.Context, key, missing, malformed string) (T, error) {
	var zero T
	raw, exists := c.Get(key)
	if !exists {
		return zero, &AuthError{Code: missing, Message: key + " not found in context"}
	}
	value, ok := raw.(T)
	if !ok {
		return zero, &AuthError{Code: malformed, Message: key + " has an unexpected type"}
	}
	return value, nil
}

// GetUserID returns the Auth0 subject of the caller.
func GetUserID(c *gin.Context) (string, error) {
	return fromContext[string](c, UserIDKey, "MISSING_USER_ID", "INVALID_USER_ID")
}

// GetAccessToken returns the raw bearer token, which the userinfo lookup
// forwards to Auth0.
func GetAccessToken(c *gin.Context) (string, error) {
	token, err := fromContext[string](c, TokenKey, "MISSING_TOKEN", "INVALID_TOKEN")
	if err == nil && token == "" {
		return "", &AuthError{Code: "INVALID_TOKEN", Message: "access token is empty"}
	}
	return token, err
}

func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	return fromContext[*validator.ValidatedClaims](c, ClaimsKey, "MISSING_CLAIMS", "INVALID_CLAIMS")
}

// GetRoleClaim returns the role requested in the token, or "" when absent
func GetRoleClaim(c *gin.Context) string {
	claims, err := GetClaims(c)
	if err != nil || claims == nil {
		return ""
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom.Role
	}
	return ""
}

// AuthError is returned by the context accessors. Code is stable and safe to
// show to API callers.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
