package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGigMessages(t *testing.T) {
	api := newTestAPI(t)
	actors := seedGigActors(t, api)
	gigID := createGigVia(t, api, actors)
	path := fmt.Sprintf("/api/v1/gigs/%d/messages", gigID)

	resp := api.request(http.MethodPost, path, actors.client, map[string]string{"text": "  Is Tuesday <ok>?  "})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body)
	assert.Equal(t, "Is Tuesday <ok>?", resp.data()["text"])
	assert.Equal(t, float64(actors.client.ID), resp.data()["sender_id"])

	// Unassigned providers are not part of the conversation yet
	resp = api.request(http.MethodPost, path, actors.provider, map[string]string{"text": "Hello"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.request(http.MethodPost, fmt.Sprintf("/api/v1/gigs/%d/allocate", gigID), actors.admin, map[string]uint{"provider_id": actors.provider.ID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.request(http.MethodPost, path, actors.provider, map[string]string{"text": "Tuesday works"})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = api.request(http.MethodPost, path, actors.client, map[string]string{"text": strings.Repeat("x", 4001)})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.errorCode())

	resp = api.request(http.MethodGet, path, actors.provider, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	messages := resp.list()
	require.Len(t, messages, 2)
	assert.Equal(t, "Is Tuesday <ok>?", messages[0].(map[string]interface{})["text"])
	assert.Equal(t, "Tuesday works", messages[1].(map[string]interface{})["text"])

	resp = api.request(http.MethodGet, path, actors.admin, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = api.request(http.MethodGet, "/api/v1/gigs/999/messages", actors.client, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
