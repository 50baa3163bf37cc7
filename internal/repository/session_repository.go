package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"docquery/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the session does not exist.
func (r *SessionRepository) GetByID(id string) (*model.Session, error) {
	var session model.Session
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByDocumentID(documentID string) ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.Where("document_id = ?", documentID).Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

// ListIDsByDocumentID returns session ids for cascade deletes.
func (r *SessionRepository) ListIDsByDocumentID(documentID string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&model.Session{}).Where("document_id = ?", documentID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list session ids failed: %w", err)
	}
	return ids, nil
}

func (r *SessionRepository) DeleteByDocumentID(documentID string) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("delete sessions by document failed: %w", err)
	}
	return nil
}

// Touch bumps the session's last activity timestamp.
func (r *SessionRepository) Touch(id string, at time.Time) error {
	if err := r.db.Model(&model.Session{}).Where("id = ?", id).Update("last_activity", at).Error; err != nil {
		return fmt.Errorf("touch session failed: %w", err)
	}
	return nil
}
