package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/gig-marketplace-api/apperrors"
	"github.com/kendall-kelly/gig-marketplace-api/models"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"go.uber.org/zap"
)

// MessageService runs the conversation attached to each gig. Only the
// client who posted the gig and its assigned provider take part.
type MessageService struct {
	gigs     repositories.GigRepository
	messages repositories.MessageRepository
	log      *zap.Logger
}

func NewMessageService(gigs repositories.GigRepository, messages repositories.MessageRepository, log *zap.Logger) *MessageService {
	return &MessageService{gigs: gigs, messages: messages, log: orNop(log)}
}

// SendMessageInput is the body of a new message
type SendMessageInput struct {
	Text string `json:"text" validate:"required,max=4000"`
}

func isParticipant(actor Actor, gig *models.Gig) bool {
	switch actor.Role {
	case models.RoleClient:
		return gig.ClientID == actor.ID
	case models.RoleServiceProvider:
		return gig.IsAssignedTo(actor.ID)
	}
	return false
}

func (s *MessageService) participantGig(ctx context.Context, actor Actor, gigID uint, denied string) (*models.Gig, error) {
	gig, err := s.gigs.FindByID(ctx, gigID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NotFound("Gig not found")
		}
		return nil, storageError(s.log, "load gig", err)
	}
	if !isParticipant(actor, gig) {
		return nil, apperrors.Forbidden(denied)
	}
	return gig, nil
}

func (s *MessageService) Send(ctx context.Context, actor Actor, gigID uint, input SendMessageInput) (*models.Message, error) {
	gig, err := s.participantGig(ctx, actor, gigID, "You do not have permission to message on this gig")
	if err != nil {
		return nil, err
	}

	input.Text = strings.TrimSpace(input.Text)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	message := &models.Message{GigID: gig.ID, SenderID: actor.ID, Text: input.Text}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, storageError(s.log, "create message", err)
	}
	return message, nil
}

// List returns a gig's messages, oldest first
func (s *MessageService) List(ctx context.Context, actor Actor, gigID uint) ([]models.Message, error) {
	gig, err := s.participantGig(ctx, actor, gigID, "You do not have permission to view messages on this gig")
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByGig(ctx, gig.ID)
	if err != nil {
		return nil, storageError(s.log, "fetch messages", err)
	}
	return messages, nil
}
