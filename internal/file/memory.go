package file

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	files map[string]File
}

// NewMemoryRepository creates an empty in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{files: make(map[string]File)}
}

func (r *memoryRepository) Create(_ context.Context, f *File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = clone(f)
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := clone(&f)
	return &c, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return ErrNotFound
	}
	delete(r.files, id)
	return nil
}

func clone(f *File) File {
	c := *f
	if f.ThumbnailPath != nil {
		p := *f.ThumbnailPath
		c.ThumbnailPath = &p
	}
	return c
}
