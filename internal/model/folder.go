package model

import "time"

type Folder struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	// Nil means the folder lives at the owner's root
	ParentID  *string    `gorm:"index" json:"parent_id"`
	OwnerID   string     `gorm:"index;not null" json:"owner_id"`
	IsStarred bool       `gorm:"not null;default:false" json:"is_starred"`
	IsTrashed bool       `gorm:"not null;default:false" json:"is_trashed"`
	TrashedAt *time.Time `json:"trashed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
