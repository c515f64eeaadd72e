package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationReviewFlow(t *testing.T) {
	api := newTestAPI(t)
	client := testutil.CreateUser(t, api.db, "carol", models.RoleClient)
	admin := testutil.CreateUser(t, api.db, "ada", models.RoleAdmin)
	root := testutil.CreateUser(t, api.db, "root", models.RoleSuperAdmin)

	resp := api.request(http.MethodPut, "/api/v1/profiles/client", client, map[string]string{
		"company_name": "Carol & Co",
		"phone":        "555-0100",
		"address":      "1 Main St",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Equal(t, "pending", resp.data()["status"])

	resp = api.request(http.MethodGet, "/api/v1/profiles/me/verification", client, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "pending", resp.data()["status"])

	resp = api.request(http.MethodGet, "/api/v1/admin/verifications?role=client&status=pending", admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, resp.list(), 1)

	reviewPath := fmt.Sprintf("/api/v1/admin/verifications/client/%d", client.ID)

	resp = api.request(http.MethodPut, reviewPath, client, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.request(http.MethodPut, reviewPath, admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Equal(t, "approved", resp.data()["status"])
	assert.Equal(t, float64(admin.ID), resp.data()["reviewed_by"])

	// Approval can be withdrawn again
	resp = api.request(http.MethodPut, reviewPath, root, map[string]string{"status": "rejected"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.request(http.MethodGet, "/api/v1/profiles/me/verification", client, nil)
	assert.Equal(t, "rejected", resp.data()["status"])

	resp = api.request(http.MethodPut, reviewPath, admin, map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.request(http.MethodPut, fmt.Sprintf("/api/v1/admin/verifications/admin/%d", admin.ID), admin, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.request(http.MethodPut, "/api/v1/admin/verifications/client/9999", admin, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestProviderProfileEndpoints(t *testing.T) {
	api := newTestAPI(t)
	provider := testutil.CreateUser(t, api.db, "pete", models.RoleServiceProvider)
	client := testutil.CreateUser(t, api.db, "carol", models.RoleClient)

	resp := api.request(http.MethodPut, "/api/v1/profiles/provider", provider, map[string]interface{}{
		"bio":    "Licensed plumber",
		"phone":  "555-0199",
		"skills": []string{"plumbing"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body)
	assert.Equal(t, []interface{}{"plumbing"}, resp.data()["skills"])

	resp = api.request(http.MethodPut, "/api/v1/profiles/provider", client, map[string]interface{}{"bio": "x", "phone": "1"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.request(http.MethodGet, fmt.Sprintf("/api/v1/providers/%d", provider.ID), client, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Licensed plumber", resp.data()["bio"])
	assert.Equal(t, float64(0), resp.data()["avg_rating"])

	resp = api.request(http.MethodGet, fmt.Sprintf("/api/v1/providers/%d", client.ID), client, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
