package service

import (
	"bitwise74/drive-api/internal/model"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRecordsWrittenBytes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "a@x.com")

	docs, err := e.tree.CreateFolder(ctx, a.ID, "Docs", nil)
	require.NoError(t, err)

	content := "some file content"
	f, err := e.uploader.Do(ctx, Upload{
		OwnerID:  a.ID,
		Name:     "a.TXT",
		MimeType: "text/plain",
		Size:     -1,
		FolderID: &docs.ID,
		Body:     strings.NewReader(content),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), f.Size)
	assert.Equal(t, "a.TXT", f.Name)
	assert.Equal(t, "text/plain", f.MimeType)
	assert.True(t, strings.HasPrefix(f.StoragePath, a.ID+"/"))
	assert.True(t, strings.HasSuffix(f.StoragePath, ".txt"))

	b, err := afero.ReadFile(e.fs, f.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, content, string(b))

	usage, err := e.tree.Usage(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), usage.UsedStorage)
	assert.Equal(t, 1, usage.UploadedFiles)
}

func TestUploadSniffsMimeType(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "a@x.com")

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	f, err := e.uploader.Do(ctx, Upload{
		OwnerID:  a.ID,
		Name:     "image",
		MimeType: "application/octet-stream",
		Size:     int64(len(png)),
		Body:     bytes.NewReader(png),
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, int64(len(png)), f.Size)

	// Sniffed bytes must still end up in storage
	b, err := afero.ReadFile(e.fs, f.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, png, b)
}

func TestUploadFolderChecks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "a@x.com")
	b := e.user(t, "b@x.com")

	bDocs, err := e.tree.CreateFolder(ctx, b.ID, "Docs", nil)
	require.NoError(t, err)

	_, err = e.uploader.Do(ctx, Upload{
		OwnerID:  a.ID,
		Name:     "a.txt",
		Size:     1,
		FolderID: &bDocs.ID,
		Body:     strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, ErrFolderNotFound)

	var n int64
	require.NoError(t, e.db.Model(model.File{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUploadQuota(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "a@x.com")

	require.NoError(t, e.db.Model(model.Stats{}).Where("user_id = ?", a.ID).Update("max_storage", 10).Error)

	e.upload(t, a.ID, "fits.txt", "12345678", nil)

	_, err := e.uploader.Do(ctx, Upload{
		OwnerID: a.ID,
		Name:    "big.txt",
		Size:    5,
		Body:    strings.NewReader("12345"),
	})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, KindTooLarge, KindOf(err))

	// Lying about the size doesn't get around the quota
	_, err = e.uploader.Do(ctx, Upload{
		OwnerID: a.ID,
		Name:    "liar.txt",
		Size:    -1,
		Body:    strings.NewReader("12345"),
	})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	entries, err := afero.ReadDir(e.fs, a.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestUploadWriteFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "a@x.com")

	_, err := e.uploader.Do(ctx, Upload{
		OwnerID:  a.ID,
		Name:     "a.txt",
		MimeType: "text/plain",
		Size:     10,
		Body:     io.MultiReader(strings.NewReader("abc"), brokenReader{}),
	})
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))

	var n int64
	require.NoError(t, e.db.Model(model.File{}).Count(&n).Error)
	assert.Zero(t, n)
}
