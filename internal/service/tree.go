package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/util"
	"bitwise74/drive-api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// RecentLimit caps the recent views
	RecentLimit = 50

	// Ancestor walks deeper than this are treated as a cycle
	maxFolderDepth = 512
)

// Tree manages the folders and files of every owner. Every method is scoped
// to the owner passed in, entities of other owners look like they don't
// exist.
type Tree struct {
	DB    *gorm.DB
	Blobs storage.Blob

	// StrictFolderTrash refuses to trash folders that still have
	// non-trashed children
	StrictFolderTrash bool

	Now func() time.Time
}

func NewTree(db *gorm.DB, blobs storage.Blob, strictFolderTrash bool) *Tree {
	return &Tree{
		DB:                db,
		Blobs:             blobs,
		StrictFolderTrash: strictFolderTrash,
		Now:               time.Now,
	}
}

func (t *Tree) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}

	return t.Now()
}

// scopeParent filters on a nullable parent column. Nil means the owner's root.
func scopeParent(column string, id *string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id == nil {
			return db.Where(column + " IS NULL")
		}

		return db.Where(column+" = ?", *id)
	}
}

// checkFolder makes sure id is nil or points at a live folder of owner
func checkFolder(db *gorm.DB, ownerID string, id *string, notFound error) error {
	if id == nil {
		return nil
	}

	var found bool

	err := db.Model(model.Folder{}).
		Select("count(*) > 0").
		Where("id = ? AND owner_id = ? AND is_trashed = ?", *id, ownerID, false).
		Find(&found).
		Error
	if err != nil {
		return fmt.Errorf("failed to check folder, %w", err)
	}

	if !found {
		return notFound
	}

	return nil
}

func validName(name string) (string, error) {
	name, err := validators.NameValidator(name)
	if err != nil {
		switch {
		case errors.Is(err, validators.ErrNameEmpty):
			return "", BadRequest("Name can't be empty")
		case errors.Is(err, validators.ErrNameTooLong):
			return "", BadRequest("Name is too long")
		default:
			return "", BadRequest("Name contains invalid characters")
		}
	}

	return name, nil
}

//
// Folders
//

func (t *Tree) CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*model.Folder, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}

	db := t.DB.WithContext(ctx)

	if err := checkFolder(db, ownerID, parentID, ErrParentNotFound); err != nil {
		return nil, err
	}

	now := t.now()
	folder := &model.Folder{
		ID:        util.NewID(),
		Name:      name,
		ParentID:  parentID,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := db.Create(folder).Error; err != nil {
		return nil, fmt.Errorf("failed to create folder, %w", err)
	}

	return folder, nil
}

// ListFolders returns the live direct children of parentID
func (t *Tree) ListFolders(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error) {
	folders := []model.Folder{}

	err := t.DB.WithContext(ctx).
		Scopes(scopeParent("parent_id", parentID)).
		Where("owner_id = ? AND is_trashed = ?", ownerID, false).
		Order("created_at").
		Find(&folders).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list folders, %w", err)
	}

	return folders, nil
}

func (t *Tree) folder(db *gorm.DB, ownerID, id string, trashed *bool) (*model.Folder, error) {
	var folder model.Folder

	q := db.Where("id = ? AND owner_id = ?", id, ownerID)
	if trashed != nil {
		q = q.Where("is_trashed = ?", *trashed)
	}

	if err := q.First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFolderNotFound
		}

		return nil, fmt.Errorf("failed to get folder, %w", err)
	}

	return &folder, nil
}

func (t *Tree) GetFolder(ctx context.Context, ownerID, id string) (*model.Folder, error) {
	return t.folder(t.DB.WithContext(ctx), ownerID, id, ptr(false))
}

// UpdateFolder renames and moves a folder. A nil parentID moves it to the root.
func (t *Tree) UpdateFolder(ctx context.Context, ownerID, id, name string, parentID *string) (*model.Folder, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}

	var folder *model.Folder

	err = t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folder, err = t.folder(tx, ownerID, id, ptr(false))
		if err != nil {
			return err
		}

		if err := checkFolder(tx, ownerID, parentID, ErrParentNotFound); err != nil {
			return err
		}

		if err := checkCycle(tx, ownerID, id, parentID); err != nil {
			return err
		}

		return tx.Model(folder).Updates(map[string]any{
			"name":       name,
			"parent_id":  parentID,
			"updated_at": t.now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return t.folder(t.DB.WithContext(ctx), ownerID, id, nil)
}

// checkCycle walks up from parentID and fails if it reaches id
func checkCycle(tx *gorm.DB, ownerID, id string, parentID *string) error {
	cur := parentID

	for depth := 0; cur != nil; depth++ {
		if *cur == id || depth >= maxFolderDepth {
			return ErrFolderCycle
		}

		var ancestor model.Folder

		err := tx.Select("id", "parent_id").
			Where("id = ? AND owner_id = ?", *cur, ownerID).
			Take(&ancestor).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}

			return fmt.Errorf("failed to walk folder ancestors, %w", err)
		}

		cur = ancestor.ParentID
	}

	return nil
}

// ToggleFolderStar flips the starred flag without touching updated_at
func (t *Tree) ToggleFolderStar(ctx context.Context, ownerID, id string) (*model.Folder, error) {
	db := t.DB.WithContext(ctx)

	folder, err := t.folder(db, ownerID, id, ptr(false))
	if err != nil {
		return nil, err
	}

	if err := db.Model(folder).UpdateColumn("is_starred", !folder.IsStarred).Error; err != nil {
		return nil, fmt.Errorf("failed to star folder, %w", err)
	}

	return t.folder(db, ownerID, id, nil)
}

// TrashFolder moves a folder to the trash. Children are left alone and stay
// listed on their own.
func (t *Tree) TrashFolder(ctx context.Context, ownerID, id string) (*model.Folder, error) {
	db := t.DB.WithContext(ctx)

	folder, err := t.folder(db, ownerID, id, nil)
	if err != nil {
		return nil, err
	}

	if t.StrictFolderTrash {
		var children int64

		err := db.Model(model.Folder{}).
			Where("parent_id = ? AND owner_id = ? AND is_trashed = ?", id, ownerID, false).
			Count(&children).
			Error
		if err != nil {
			return nil, fmt.Errorf("failed to count subfolders, %w", err)
		}

		if children == 0 {
			err = db.Model(model.File{}).
				Where("folder_id = ? AND owner_id = ? AND is_trashed = ?", id, ownerID, false).
				Count(&children).
				Error
			if err != nil {
				return nil, fmt.Errorf("failed to count folder files, %w", err)
			}
		}

		if children > 0 {
			return nil, ErrFolderNotEmpty
		}
	}

	now := t.now()

	err = db.Model(folder).Updates(map[string]any{
		"is_trashed": true,
		"trashed_at": now,
		"updated_at": now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to trash folder, %w", err)
	}

	return t.folder(db, ownerID, id, nil)
}

func (t *Tree) RestoreFolder(ctx context.Context, ownerID, id string) (*model.Folder, error) {
	db := t.DB.WithContext(ctx)

	folder, err := t.folder(db, ownerID, id, ptr(true))
	if err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			return nil, ErrFolderNotTrash
		}

		return nil, err
	}

	err = db.Model(folder).Updates(map[string]any{
		"is_trashed": false,
		"trashed_at": nil,
		"updated_at": t.now(),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to restore folder, %w", err)
	}

	return t.folder(db, ownerID, id, nil)
}

// DeleteFolder permanently removes a folder and everything below it. Blobs
// are removed after the rows are gone, failures there are only logged.
func (t *Tree) DeleteFolder(ctx context.Context, ownerID, id string) error {
	var files []model.File

	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := t.folder(tx, ownerID, id, nil); err != nil {
			return err
		}

		ids := []string{id}
		seen := map[string]struct{}{id: {}}

		for frontier := ids; len(frontier) > 0; {
			var children []string

			err := tx.Model(model.Folder{}).
				Where("parent_id IN ? AND owner_id = ?", frontier, ownerID).
				Pluck("id", &children).
				Error
			if err != nil {
				return fmt.Errorf("failed to collect subfolders, %w", err)
			}

			// A parent cycle would otherwise walk forever
			var next []string
			for _, c := range children {
				if _, ok := seen[c]; ok {
					continue
				}

				seen[c] = struct{}{}
				next = append(next, c)
			}

			ids = append(ids, next...)
			frontier = next
		}

		err := tx.Where("folder_id IN ? AND owner_id = ?", ids, ownerID).Find(&files).Error
		if err != nil {
			return fmt.Errorf("failed to collect folder files, %w", err)
		}

		if len(files) > 0 {
			if err := tx.Where("folder_id IN ? AND owner_id = ?", ids, ownerID).Delete(&model.File{}).Error; err != nil {
				return fmt.Errorf("failed to delete folder files, %w", err)
			}

			if err := releaseUsage(tx, ownerID, files...); err != nil {
				return err
			}
		}

		if err := tx.Where("id IN ? AND owner_id = ?", ids, ownerID).Delete(&model.Folder{}).Error; err != nil {
			return fmt.Errorf("failed to delete folders, %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		t.removeBlob(ctx, f.StoragePath)
	}

	return nil
}

func (t *Tree) TrashedFolders(ctx context.Context, ownerID string) ([]model.Folder, error) {
	return t.folderView(ctx, ownerID, "trashed_at DESC", 0, "is_trashed = ?", true)
}

func (t *Tree) StarredFolders(ctx context.Context, ownerID string) ([]model.Folder, error) {
	return t.folderView(ctx, ownerID, "created_at", 0, "is_starred = ? AND is_trashed = ?", true, false)
}

func (t *Tree) RecentFolders(ctx context.Context, ownerID string) ([]model.Folder, error) {
	return t.folderView(ctx, ownerID, "updated_at DESC", RecentLimit, "is_trashed = ?", false)
}

func (t *Tree) folderView(ctx context.Context, ownerID, order string, limit int, query string, args ...any) ([]model.Folder, error) {
	folders := []model.Folder{}

	q := t.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where(query, args...).
		Order(order)
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("failed to list folders, %w", err)
	}

	return folders, nil
}

//
// Files
//

// ListFiles returns the live files directly inside folderID
func (t *Tree) ListFiles(ctx context.Context, ownerID string, folderID *string) ([]model.File, error) {
	files := []model.File{}

	err := t.DB.WithContext(ctx).
		Scopes(scopeParent("folder_id", folderID)).
		Where("owner_id = ? AND is_trashed = ?", ownerID, false).
		Order("created_at").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	return files, nil
}

func (t *Tree) file(db *gorm.DB, ownerID, id string, trashed *bool) (*model.File, error) {
	var file model.File

	q := db.Where("id = ? AND owner_id = ?", id, ownerID)
	if trashed != nil {
		q = q.Where("is_trashed = ?", *trashed)
	}

	if err := q.First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}

		return nil, fmt.Errorf("failed to get file, %w", err)
	}

	return &file, nil
}

func (t *Tree) GetFile(ctx context.Context, ownerID, id string) (*model.File, error) {
	return t.file(t.DB.WithContext(ctx), ownerID, id, ptr(false))
}

// OpenFile returns a live file together with a reader over its content. The
// caller must close the reader.
func (t *Tree) OpenFile(ctx context.Context, ownerID, id string) (*model.File, io.ReadCloser, error) {
	file, err := t.GetFile(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := t.Blobs.Open(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, ErrBlobMissing
		}

		return nil, nil, fmt.Errorf("failed to open blob, %w", err)
	}

	return file, rc, nil
}

// UpdateFile renames and moves a file. A nil folderID moves it to the root.
func (t *Tree) UpdateFile(ctx context.Context, ownerID, id, name string, folderID *string) (*model.File, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}

	db := t.DB.WithContext(ctx)

	file, err := t.file(db, ownerID, id, ptr(false))
	if err != nil {
		return nil, err
	}

	if err := checkFolder(db, ownerID, folderID, ErrFolderNotFound); err != nil {
		return nil, err
	}

	err = db.Model(file).Updates(map[string]any{
		"name":       name,
		"folder_id":  folderID,
		"updated_at": t.now(),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update file, %w", err)
	}

	return t.file(db, ownerID, id, nil)
}

// ToggleFileStar flips the starred flag without touching updated_at
func (t *Tree) ToggleFileStar(ctx context.Context, ownerID, id string) (*model.File, error) {
	db := t.DB.WithContext(ctx)

	file, err := t.file(db, ownerID, id, ptr(false))
	if err != nil {
		return nil, err
	}

	if err := db.Model(file).UpdateColumn("is_starred", !file.IsStarred).Error; err != nil {
		return nil, fmt.Errorf("failed to star file, %w", err)
	}

	return t.file(db, ownerID, id, nil)
}

// TrashFile soft deletes a file, the blob stays in storage
func (t *Tree) TrashFile(ctx context.Context, ownerID, id string) (*model.File, error) {
	db := t.DB.WithContext(ctx)

	file, err := t.file(db, ownerID, id, nil)
	if err != nil {
		return nil, err
	}

	now := t.now()

	err = db.Model(file).Updates(map[string]any{
		"is_trashed": true,
		"trashed_at": now,
		"updated_at": now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to trash file, %w", err)
	}

	return t.file(db, ownerID, id, nil)
}

func (t *Tree) RestoreFile(ctx context.Context, ownerID, id string) (*model.File, error) {
	db := t.DB.WithContext(ctx)

	file, err := t.file(db, ownerID, id, ptr(true))
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, ErrFileNotTrashed
		}

		return nil, err
	}

	err = db.Model(file).Updates(map[string]any{
		"is_trashed": false,
		"trashed_at": nil,
		"updated_at": t.now(),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to restore file, %w", err)
	}

	return t.file(db, ownerID, id, nil)
}

// DeleteFile permanently removes a file in any state. The blob is removed
// after the row, failures there are only logged.
func (t *Tree) DeleteFile(ctx context.Context, ownerID, id string) error {
	var file *model.File

	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error

		file, err = t.file(tx, ownerID, id, nil)
		if err != nil {
			return err
		}

		if err := tx.Delete(file).Error; err != nil {
			return fmt.Errorf("failed to delete file, %w", err)
		}

		return releaseUsage(tx, ownerID, *file)
	})
	if err != nil {
		return err
	}

	t.removeBlob(ctx, file.StoragePath)
	return nil
}

func (t *Tree) TrashedFiles(ctx context.Context, ownerID string) ([]model.File, error) {
	return t.fileView(ctx, ownerID, "trashed_at DESC", 0, "is_trashed = ?", true)
}

func (t *Tree) StarredFiles(ctx context.Context, ownerID string) ([]model.File, error) {
	return t.fileView(ctx, ownerID, "created_at", 0, "is_starred = ? AND is_trashed = ?", true, false)
}

func (t *Tree) RecentFiles(ctx context.Context, ownerID string) ([]model.File, error) {
	return t.fileView(ctx, ownerID, "updated_at DESC", RecentLimit, "is_trashed = ?", false)
}

func (t *Tree) fileView(ctx context.Context, ownerID, order string, limit int, query string, args ...any) ([]model.File, error) {
	files := []model.File{}

	q := t.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where(query, args...).
		Order(order)
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	return files, nil
}

// Usage returns how much storage the owner is using
func (t *Tree) Usage(ctx context.Context, ownerID string) (*model.Stats, error) {
	var stats model.Stats

	err := t.DB.WithContext(ctx).Where("user_id = ?", ownerID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.Stats{UserID: ownerID}, nil
		}

		return nil, fmt.Errorf("failed to get usage, %w", err)
	}

	return &stats, nil
}

// PurgeTrashedBefore permanently deletes every file and folder that was put
// in the trash before cutoff. Entities that are not trashed themselves are
// kept, even when they live inside a purged folder. It returns how many
// entities were removed.
func (t *Tree) PurgeTrashedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var files []model.File

	err := t.DB.WithContext(ctx).
		Select("id", "owner_id").
		Where("is_trashed = ? AND trashed_at < ?", true, cutoff).
		Find(&files).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to find trashed files, %w", err)
	}

	purged := 0

	for _, f := range files {
		if err := t.DeleteFile(ctx, f.OwnerID, f.ID); err != nil {
			return purged, err
		}
		purged++
	}

	var folders []model.Folder

	err = t.DB.WithContext(ctx).
		Select("id", "owner_id").
		Where("is_trashed = ? AND trashed_at < ?", true, cutoff).
		Find(&folders).
		Error
	if err != nil {
		return purged, fmt.Errorf("failed to find trashed folders, %w", err)
	}

	for _, f := range folders {
		if err := t.purgeFolder(ctx, f.OwnerID, f.ID, cutoff); err != nil {
			if errors.Is(err, ErrFolderNotFound) {
				continue
			}

			return purged, err
		}
		purged++
	}

	return purged, nil
}

// purgeFolder removes a single expired trashed folder. Its direct children
// were never trashed along with it, so they are moved to the root first.
func (t *Tree) purgeFolder(ctx context.Context, ownerID, id string, cutoff time.Time) error {
	return t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var folder model.Folder

		err := tx.Select("id").
			Where("id = ? AND owner_id = ? AND is_trashed = ? AND trashed_at < ?", id, ownerID, true, cutoff).
			Take(&folder).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFolderNotFound
			}

			return fmt.Errorf("failed to find trashed folder, %w", err)
		}

		err = tx.Model(model.Folder{}).
			Where("parent_id = ? AND owner_id = ?", id, ownerID).
			UpdateColumn("parent_id", nil).
			Error
		if err != nil {
			return fmt.Errorf("failed to move subfolders to root, %w", err)
		}

		err = tx.Model(model.File{}).
			Where("folder_id = ? AND owner_id = ?", id, ownerID).
			UpdateColumn("folder_id", nil).
			Error
		if err != nil {
			return fmt.Errorf("failed to move folder files to root, %w", err)
		}

		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Folder{}).Error; err != nil {
			return fmt.Errorf("failed to delete folder, %w", err)
		}

		return nil
	})
}

// releaseUsage gives the space of removed files back to the owner
func releaseUsage(tx *gorm.DB, ownerID string, files ...model.File) error {
	var size int64
	for _, f := range files {
		size += f.Size
	}

	err := tx.Model(model.Stats{}).
		Where("user_id = ?", ownerID).
		Updates(map[string]any{
			"used_storage":   gorm.Expr("CASE WHEN used_storage > ? THEN used_storage - ? ELSE 0 END", size, size),
			"uploaded_files": gorm.Expr("CASE WHEN uploaded_files > ? THEN uploaded_files - ? ELSE 0 END", len(files), len(files)),
		}).
		Error
	if err != nil {
		return fmt.Errorf("failed to update usage stats, %w", err)
	}

	return nil
}

func (t *Tree) removeBlob(ctx context.Context, key string) {
	if t.Blobs == nil || key == "" {
		return
	}

	// The request may already be done, cleanup shouldn't depend on it
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()

	if err := t.Blobs.Delete(ctx, key); err != nil {
		zap.L().Error("Failed to delete blob", zap.String("key", key), zap.Error(err))
	}
}

func ptr[T any](v T) *T {
	return &v
}
