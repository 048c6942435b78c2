package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/util"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Bytes read to guess the content type when the client didn't send one
const sniffLen = 3072

type Uploader struct {
	DB    *gorm.DB
	Blobs storage.Blob
	Now   func() time.Time
}

func NewUploader(db *gorm.DB, blobs storage.Blob) *Uploader {
	return &Uploader{
		DB:    db,
		Blobs: blobs,
		Now:   time.Now,
	}
}

// Upload describes a single file sent by a client
type Upload struct {
	OwnerID  string
	Name     string
	MimeType string
	// Size as declared by the client, -1 if unknown
	Size     int64
	FolderID *string
	Body     io.Reader
}

// Do stores the bytes of u under a generated key and records the file. The
// recorded size is the number of bytes actually written.
func (up *Uploader) Do(ctx context.Context, u Upload) (*model.File, error) {
	name, err := validName(u.Name)
	if err != nil {
		return nil, err
	}

	db := up.DB.WithContext(ctx)

	if err := checkFolder(db, u.OwnerID, u.FolderID, ErrFolderNotFound); err != nil {
		return nil, err
	}

	var stats model.Stats

	err = db.Where("user_id = ?", u.OwnerID).Limit(1).Find(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get usage stats, %w", err)
	}

	if overQuota(&stats, u.Size) {
		return nil, ErrQuotaExceeded
	}

	body := u.Body
	mimeType := u.MimeType

	if mimeType == "" || mimeType == "application/octet-stream" {
		head := make([]byte, sniffLen)

		n, err := io.ReadFull(body, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("failed to read upload, %w", err)
		}

		head = head[:n]
		mimeType = mimetype.Detect(head).String()
		body = io.MultiReader(bytes.NewReader(head), body)
	}

	key := util.BlobKey(u.OwnerID, name)

	written, err := up.Blobs.Put(ctx, key, body, u.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file, %w", err)
	}

	// The declared size can lie, check again with what was really stored
	if overQuota(&stats, written) {
		up.cleanup(key)
		return nil, ErrQuotaExceeded
	}

	now := up.now()
	file := &model.File{
		ID:          util.NewID(),
		Name:        name,
		MimeType:    mimeType,
		Size:        written,
		StoragePath: key,
		FolderID:    u.FolderID,
		OwnerID:     u.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return fmt.Errorf("failed to create file, %w", err)
		}

		err := tx.Model(model.Stats{}).
			Where("user_id = ?", u.OwnerID).
			Updates(map[string]any{
				"used_storage":   gorm.Expr("used_storage + ?", written),
				"uploaded_files": gorm.Expr("uploaded_files + ?", 1),
			}).
			Error
		if err != nil {
			return fmt.Errorf("failed to update usage stats, %w", err)
		}

		return nil
	})
	if err != nil {
		up.cleanup(key)
		return nil, err
	}

	return file, nil
}

func (up *Uploader) now() time.Time {
	if up.Now == nil {
		return time.Now()
	}

	return up.Now()
}

func overQuota(s *model.Stats, size int64) bool {
	return s.MaxStorage > 0 && size > 0 && s.UsedStorage+size > s.MaxStorage
}

func (up *Uploader) cleanup(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := up.Blobs.Delete(ctx, key); err != nil {
		zap.L().Error("Failed to cleanup after failed upload", zap.String("key", key), zap.Error(err))
	} else {
		zap.L().Debug("Cleaned up after failed upload", zap.String("key", key))
	}
}
