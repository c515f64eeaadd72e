package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/gig-marketplace-api/services"
)

// MessageController serves the conversation on a gig
type MessageController struct {
	accounts *services.AccountService
	messages *services.MessageService
}

func NewMessageController(accounts *services.AccountService, messages *services.MessageService) *MessageController {
	return &MessageController{accounts: accounts, messages: messages}
}

// SendMessage handles POST /api/v1/gigs/:id/messages
func (ctl *MessageController) SendMessage(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	gigID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.SendMessageInput
	if !bindJSON(c, &req) {
		return
	}

	message, err := ctl.messages.Send(c.Request.Context(), actor, gigID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/v1/gigs/:id/messages
func (ctl *MessageController) ListMessages(c *gin.Context) {
	actor, ok := currentActor(c, ctl.accounts)
	if !ok {
		return
	}
	gigID, ok := parseID(c, "id")
	if !ok {
		return
	}

	messages, err := ctl.messages.List(c.Request.Context(), actor, gigID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}
