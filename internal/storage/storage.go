// Package storage uploads and removes binary objects such as profile images.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore is the binary-object store consumed by the user service.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// UploadResult identifies a stored object.
type UploadResult struct {
	Key string
	URL string
}

// ObjectKey builds a unique key under prefix for an owner, keeping the
// extension of filename.
func ObjectKey(prefix, ownerID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(prefix, ownerID, fmt.Sprintf("%s%s", uuid.NewString(), ext))
}
