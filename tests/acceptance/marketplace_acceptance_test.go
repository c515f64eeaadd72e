package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/config"
	"github.com/kendall-kelly/gig-marketplace-api/controllers"
	"github.com/kendall-kelly/gig-marketplace-api/events"
	"github.com/kendall-kelly/gig-marketplace-api/middleware"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/services"
	"github.com/kendall-kelly/gig-marketplace-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MarketplaceAcceptanceTestSuite walks one gig from sign-up to rating
// against a running HTTP server.
type MarketplaceAcceptanceTestSuite struct {
	suite.Suite
	server      *httptest.Server
	auth0Server *httptest.Server
	db          *gorm.DB
	store       *services.MockS3Service
	publisher   *events.LocalPublisher
	allocations chan events.GigAllocated
}

func (suite *MarketplaceAcceptanceTestSuite) SetupSuite() {
	testutil.RequireTestEnvironment(suite.T())
}

func (suite *MarketplaceAcceptanceTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	// Auth0 answers /userinfo for the token the test auth middleware presents
	suite.auth0Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(services.Auth0UserInfo{
			Sub:   "auth0|carol",
			Email: "carol@example.com",
			Name:  "Carol",
		})
	}))

	suite.db = testutil.NewTestDB(suite.T())
	suite.store = services.NewMockS3Service()
	suite.allocations = make(chan events.GigAllocated, 10)
	suite.publisher = events.NewLocalPublisher(zap.NewNop(), func(_ context.Context, event events.GigAllocated) error {
		suite.allocations <- event
		return nil
	})

	registry := services.NewRegistry(suite.db, services.Infrastructure{
		Images:    services.NewImageService(suite.store),
		Publisher: suite.publisher,
	})

	router := gin.New()
	router.Use(middleware.RequestLogger(zap.NewNop()), gin.Recovery())
	controllers.RegisterRoutes(router.Group("/api/v1"), registry,
		services.NewAuth0Service(&config.Config{Auth0Domain: suite.auth0Server.URL}),
		testutil.HeaderAuthMiddleware())

	suite.server = httptest.NewServer(router)
}

func (suite *MarketplaceAcceptanceTestSuite) TearDownTest() {
	suite.publisher.Wait()
	suite.server.Close()
	suite.auth0Server.Close()
}

// call performs a request as the given Auth0 subject and role
func (suite *MarketplaceAcceptanceTestSuite) call(method, path, subject string, role models.Role, body interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", subject)
	req.Header.Set("X-Test-Role", string(role))

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	assert.NotEmpty(suite.T(), resp.Header.Get(middleware.RequestIDHeader), "every response carries a request id")

	var response map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	if len(raw) > 0 {
		suite.Require().NoError(json.Unmarshal(raw, &response), string(raw))
	}
	return resp.StatusCode, response
}

func dataOf(response map[string]interface{}) map[string]interface{} {
	data, _ := response["data"].(map[string]interface{})
	return data
}

func (suite *MarketplaceAcceptanceTestSuite) TestCompleteGigJourney_Acceptance() {
	t := suite.T()
	admin := testutil.CreateUser(t, suite.db, "ada", models.RoleAdmin)
	provider := testutil.CreateVerifiedUser(t, suite.db, "pete", models.RoleServiceProvider, models.VerificationApproved)

	// Step 1: the client signs up through Auth0
	code, response := suite.call(http.MethodPost, "/api/v1/users", "auth0|carol", models.RoleClient, nil)
	suite.Require().Equal(http.StatusCreated, code, response)
	clientID := uint(dataOf(response)["id"].(float64))
	assert.Equal(t, "client", dataOf(response)["role"])

	// Step 2: admin sets up the catalogue
	code, response = suite.call(http.MethodPost, "/api/v1/admin/categories", admin.Auth0ID, admin.Role, map[string]string{"name": "Electrical"})
	suite.Require().Equal(http.StatusCreated, code, response)
	categoryID := dataOf(response)["id"]
	code, response = suite.call(http.MethodPost, "/api/v1/admin/locations", admin.Auth0ID, admin.Role, map[string]string{"name": "Northside"})
	suite.Require().Equal(http.StatusCreated, code, response)
	locationID := dataOf(response)["id"]

	gig := map[string]interface{}{
		"title":       "Rewire the kitchen",
		"description": "Four sockets and a cooker circuit",
		"category_id": categoryID,
		"location_id": locationID,
		"start_date":  "2026-11-20",
		"end_date":    "2026-11-22",
		"budget":      900,
	}

	// Step 3: unverified clients are turned away
	code, _ = suite.call(http.MethodPost, "/api/v1/gigs", "auth0|carol", models.RoleClient, gig)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = suite.call(http.MethodPut, "/api/v1/profiles/client", "auth0|carol", models.RoleClient, map[string]string{"phone": "555-0100", "address": "1 Main St"})
	suite.Require().Equal(http.StatusOK, code)
	code, _ = suite.call(http.MethodPut, fmt.Sprintf("/api/v1/admin/verifications/client/%d", clientID), admin.Auth0ID, admin.Role, map[string]string{"status": "approved"})
	suite.Require().Equal(http.StatusOK, code)

	// Step 4: the gig is posted and allocated
	code, response = suite.call(http.MethodPost, "/api/v1/gigs", "auth0|carol", models.RoleClient, gig)
	suite.Require().Equal(http.StatusCreated, code, response)
	gigID := uint(dataOf(response)["id"].(float64))
	base := fmt.Sprintf("/api/v1/gigs/%d", gigID)

	code, response = suite.call(http.MethodPost, base+"/allocate", admin.Auth0ID, admin.Role, map[string]uint{"provider_id": provider.ID})
	suite.Require().Equal(http.StatusOK, code, response)

	event := <-suite.allocations
	assert.Equal(t, gigID, event.GigID)
	assert.Equal(t, clientID, event.ClientID)
	assert.Equal(t, provider.ID, event.ProviderID)

	// Step 5: the parties talk, the work is done and rated
	code, _ = suite.call(http.MethodPost, base+"/messages", provider.Auth0ID, provider.Role, map[string]string{"text": "I can start Friday"})
	suite.Require().Equal(http.StatusCreated, code)

	for _, status := range []string{"in_progress", "completed"} {
		code, response = suite.call(http.MethodPatch, base+"/status", provider.Auth0ID, provider.Role, map[string]string{"status": status})
		suite.Require().Equal(http.StatusOK, code, response)
	}

	code, response = suite.call(http.MethodPost, base+"/rating", "auth0|carol", models.RoleClient, map[string]int{"score": 4})
	suite.Require().Equal(http.StatusCreated, code, response)
	assert.Equal(t, float64(4), dataOf(response)["provider_avg_rating"])

	code, response = suite.call(http.MethodGet, base, "auth0|carol", models.RoleClient, nil)
	suite.Require().Equal(http.StatusOK, code)
	assert.Equal(t, "completed", dataOf(response)["status"])
	assert.Equal(t, float64(provider.ID), dataOf(response)["provider_id"])

	code, response = suite.call(http.MethodGet, base+"/messages", "auth0|carol", models.RoleClient, nil)
	suite.Require().Equal(http.StatusOK, code)
	assert.Len(t, response["data"], 1)
}

func (suite *MarketplaceAcceptanceTestSuite) TestProviderCannotActOnOthersGig_Acceptance() {
	t := suite.T()
	admin := testutil.CreateUser(t, suite.db, "ada", models.RoleAdmin)
	client := testutil.CreateVerifiedUser(t, suite.db, "carol", models.RoleClient, models.VerificationApproved)
	assigned := testutil.CreateVerifiedUser(t, suite.db, "pete", models.RoleServiceProvider, models.VerificationApproved)
	other := testutil.CreateVerifiedUser(t, suite.db, "oscar", models.RoleServiceProvider, models.VerificationApproved)
	ref := testutil.CreateReferenceData(t, suite.db)

	code, response := suite.call(http.MethodPost, "/api/v1/gigs", client.Auth0ID, client.Role, map[string]interface{}{
		"title":       "Clear the gutters",
		"description": "Single storey house",
		"category_id": ref.Category.ID,
		"location_id": ref.Location.ID,
		"start_date":  "2026-11-25",
		"end_date":    "2026-11-25",
	})
	suite.Require().Equal(http.StatusCreated, code, response)
	base := fmt.Sprintf("/api/v1/gigs/%d", uint(dataOf(response)["id"].(float64)))

	code, _ = suite.call(http.MethodPost, base+"/allocate", admin.Auth0ID, admin.Role, map[string]uint{"provider_id": assigned.ID})
	suite.Require().Equal(http.StatusOK, code)
	<-suite.allocations

	code, response = suite.call(http.MethodPatch, base+"/status", other.Auth0ID, other.Role, map[string]string{"status": "in_progress"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", response["error"].(map[string]interface{})["code"])

	code, _ = suite.call(http.MethodGet, base, other.Auth0ID, other.Role, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = suite.call(http.MethodPatch, base+"/status", client.Auth0ID, client.Role, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusForbidden, code, "only the provider completes work")
}

func TestMarketplaceAcceptanceSuite(t *testing.T) {
	suite.Run(t, new(MarketplaceAcceptanceTestSuite))
}
