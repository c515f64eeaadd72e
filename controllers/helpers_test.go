package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/config"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/services"
	"github.com/kendall-kelly/gig-marketplace-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testAPI is the full authenticated API over an in-memory database. Requests
// authenticate through the X-Test-User and X-Test-Role headers.
type testAPI struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	store    *services.MockS3Service
	userInfo map[string]*services.Auth0UserInfo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &testAPI{
		t:        t,
		db:       testutil.NewTestDB(t),
		store:    services.NewMockS3Service(),
		userInfo: map[string]*services.Auth0UserInfo{},
	}

	auth0Server := setupMockAuth0Server(api.userInfo)
	t.Cleanup(auth0Server.Close)

	registry := services.NewRegistry(api.db, services.Infrastructure{
		Images: services.NewImageService(api.store),
	})

	api.router = gin.New()
	RegisterRoutes(api.router.Group("/api/v1"), registry,
		services.NewAuth0Service(&config.Config{Auth0Domain: auth0Server.URL}),
		testutil.HeaderAuthMiddleware())
	return api
}

// setupMockAuth0Server simulates Auth0's /userinfo endpoint, answering for
// the access tokens present in userInfoMap.
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		userInfo, ok := userInfoMap[token]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	}))
}

type apiResponse struct {
	Code int
	Body map[string]interface{}
}

func (r apiResponse) data() map[string]interface{} {
	data, _ := r.Body["data"].(map[string]interface{})
	return data
}

func (r apiResponse) list() []interface{} {
	list, _ := r.Body["data"].([]interface{})
	return list
}

func (r apiResponse) errorCode() string {
	errBody, _ := r.Body["error"].(map[string]interface{})
	code, _ := errBody["code"].(string)
	return code
}

// request sends a request as user; a zero user sends it unauthenticated.
func (a *testAPI) request(method, path string, user models.User, body interface{}) apiResponse {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.serve(req, user)
}

func (a *testAPI) upload(path string, user models.User, filename string, content []byte) apiResponse {
	a.t.Helper()

	body, contentType := testutil.MultipartImageBody(a.t, filename, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return a.serve(req, user)
}

func (a *testAPI) serve(req *http.Request, user models.User) apiResponse {
	a.t.Helper()

	if user.Auth0ID != "" {
		req.Header.Set("X-Test-User", user.Auth0ID)
		req.Header.Set("X-Test-Role", string(user.Role))
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	resp := apiResponse{Code: w.Code}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp.Body), w.Body.String())
	}
	return resp
}

func gigPayload(ref testutil.ReferenceData) map[string]interface{} {
	return map[string]interface{}{
		"title":       "Paint the fence",
		"description": "Twenty metres of picket fence",
		"category_id": ref.Category.ID,
		"location_id": ref.Location.ID,
		"start_date":  "2026-11-10",
		"end_date":    "2026-11-12",
		"budget":      180,
	}
}
