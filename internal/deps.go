package internal

import (
	"bitwise74/drive-api/config"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Blobs    storage.Blob
	Sessions *security.Sessions
	Accounts *service.Accounts
	Tree     *service.Tree
	Uploader *service.Uploader
}
