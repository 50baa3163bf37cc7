package model

import "time"

// Session is one conversation bound to exactly one document.
type Session struct {
	ID           string    `gorm:"primaryKey;size:36" json:"session_id"`
	DocumentID   string    `gorm:"size:36;not null;index" json:"document_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}
