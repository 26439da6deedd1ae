package repositories

import (
	"context"

	"TeleClinic/models"

	"gorm.io/gorm"
)

type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	Conversation(ctx context.Context, userA, userB int64) ([]models.ChatEntry, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Omit("Sender", "Receiver").Create(message).Error
}

// Conversation returns every message exchanged between two users, oldest first.
func (r *chatRepository) Conversation(ctx context.Context, userA, userB int64) ([]models.ChatEntry, error) {
	entries := []models.ChatEntry{}
	err := r.db.WithContext(ctx).
		Table("chat_messages AS cm").
		Select("cm.id AS id, cm.sender_id AS sender_id, cm.receiver_id AS receiver_id, cm.message AS message, " +
			"cm.sent_at AS sent_at, s.role AS sender_role, s.fullname AS sender_name, rcv.fullname AS receiver_name").
		Joins("JOIN users s ON s.id = cm.sender_id").
		Joins("JOIN users rcv ON rcv.id = cm.receiver_id").
		Where("(cm.sender_id = ? AND cm.receiver_id = ?) OR (cm.sender_id = ? AND cm.receiver_id = ?)",
			userA, userB, userB, userA).
		Order("cm.sent_at ASC, cm.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
