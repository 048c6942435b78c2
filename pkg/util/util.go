// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewID returns a new random identifier for a database row
func NewID() string {
	return uuid.NewString()
}

// RequestID returns a short random string used to correlate logs with responses
func RequestID() string {
	return gonanoid.MustGenerate(charset, 12)
}

// BlobKey builds a collision resistant storage key for an uploaded file. The
// owner ID is used as a prefix and the original extension is kept.
func BlobKey(ownerID, originalName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(originalName, "\\", "/"))))
	return ownerID + "/" + uuid.NewString() + ext
}

func IsRunningInDocker() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
}
