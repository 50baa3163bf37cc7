package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docquery/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListBySessionID returns the newest limit messages of the session in
// ascending timestamp order: the window is taken from the tail so a long
// conversation keeps its most recent turns.
func (r *MessageRepository) ListBySessionID(sessionID string, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	var messages []model.Message
	if err := r.db.Where("session_id = ?", sessionID).Order("timestamp DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	reverseMessages(messages)
	return messages, nil
}

func reverseMessages(messages []model.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

func (r *MessageRepository) DeleteBySessionID(sessionID string) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages by session failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) DeleteBySessionIDs(sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	if err := r.db.Where("session_id IN ?", sessionIDs).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete messages by sessions failed: %w", err)
	}
	return nil
}
