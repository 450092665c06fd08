package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrObjectNotFound is returned by Get when nothing is stored under the path.
var ErrObjectNotFound = errors.New("storage: object not found")

// ErrInvalidPath rejects absolute paths and paths leaving the storage root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Storage keeps uploaded blobs under slash-separated relative paths.
type Storage interface {
	// Save writes content under path, replacing any previous object.
	Save(ctx context.Context, path string, content io.Reader) error

	// Get opens the object stored under path. The caller closes it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object under path. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}

// cleanPath normalizes p and refuses anything that would escape the root.
func cleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return "", ErrInvalidPath
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	return clean, nil
}
