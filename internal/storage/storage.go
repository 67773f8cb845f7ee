package storage

import (
	"context"
	"io"
	"path/filepath"

	"github.com/google/uuid"
)

// Object describes a stored object: the public URL handed to clients and the
// key needed to delete it later.
type Object struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// ObjectStorage is the external file store collaborator. Uploads return the
// public URL plus the storage key; deletes are by key.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a collision-safe storage key under the given folder,
// preserving the original file extension.
func ObjectKey(folder, filename string) string {
	return folder + "/" + uuid.NewString() + filepath.Ext(filename)
}
