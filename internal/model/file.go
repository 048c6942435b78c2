// Package model defines database models
package model

import "time"

type File struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"` // Original file name as uploaded
	MimeType string `gorm:"not null" json:"mime_type"`
	Size     int64  `gorm:"not null" json:"size"`

	// Since we want to allow the same user to upload files with the same name
	// the blob is kept under a generated key prefixed by the owner ID
	StoragePath string `gorm:"not null" json:"storage_path"`

	// Nil means the file lives at the owner's root
	FolderID  *string    `gorm:"index" json:"folder_id"`
	OwnerID   string     `gorm:"index;not null" json:"owner_id"`
	IsStarred bool       `gorm:"not null;default:false" json:"is_starred"`
	IsTrashed bool       `gorm:"not null;default:false" json:"is_trashed"`
	TrashedAt *time.Time `json:"trashed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `gorm:"index" json:"updated_at"`
}
