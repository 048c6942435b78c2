// Package storage holds the blob stores uploaded file contents are written to.
// Metadata lives in the database, a blob is only addressed by its key.
package storage

import (
	"bitwise74/drive-api/config"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrNotExist   = errors.New("blob does not exist")
	ErrInvalidKey = errors.New("invalid blob key")
)

type Blob interface {
	// Put writes r under key and returns the number of bytes stored. size may
	// be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the blob store selected by cfg.Storage.Type
func New(ctx context.Context, cfg *config.Config) (Blob, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocal(cfg.Storage.LocalPath)
	case "s3":
		return NewS3(ctx, cfg.S3)
	case "r2":
		return NewR2(ctx, cfg.S3)
	case "minio":
		return NewMinio(ctx, cfg.S3, cfg.Minio)
	}

	return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
}

func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key {
		return ErrInvalidKey
	}

	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return ErrInvalidKey
		}
	}

	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
