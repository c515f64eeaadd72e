package repositories

import (
	"context"

	"github.com/kendall-kelly/gig-marketplace-api/models"
	"gorm.io/gorm"
)

// MessageRepository persists gig conversations
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByGig(ctx context.Context, gigID uint) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Omit("Sender").Create(message).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Sender").First(message, message.ID).Error
}

func (r *messageRepository) ListByGig(ctx context.Context, gigID uint) ([]models.Message, error) {
	messages := []models.Message{}
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("gig_id = ?", gigID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}
