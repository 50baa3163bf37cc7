package model

import "time"

// Document is an uploaded file prepared for querying. The vector index built
// from it lives in process memory only; it is rebuilt from FilePath on demand.
type Document struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Filename   string    `gorm:"size:256;not null" json:"filename"`
	FilePath   string    `gorm:"size:512;not null" json:"-"`
	FileType   string    `gorm:"size:16;not null" json:"file_type"`
	UploadDate time.Time `gorm:"autoCreateTime" json:"upload_date"`
}
