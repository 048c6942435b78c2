package model

type Stats struct {
	UserID string `gorm:"primaryKey" json:"-"`
	// Zero means the user has no storage limit
	MaxStorage    int64 `json:"max_storage"`
	UsedStorage   int64 `json:"used_storage"`
	UploadedFiles int   `json:"uploaded_files"`
}
