package announcement

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// memoryRepository keeps announcements in process memory.
// Writers hold the exclusive lock for the whole read-modify-write, readers share it,
// and every record crossing the boundary is a private copy.
type memoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Announcement
	order   []string // insertion order
}

// NewMemoryRepository creates an empty in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		records: make(map[string]*Announcement),
	}
}

func (r *memoryRepository) Create(_ context.Context, a *Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[a.ID]; exists {
		return fmt.Errorf("announcement %s already exists", a.ID)
	}
	r.records[a.ID] = a.Clone()
	r.order = append(r.order, a.ID)
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (r *memoryRepository) List(_ context.Context) ([]*Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Announcement, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.records[id].Clone())
	}
	return result, nil
}

func (r *memoryRepository) Mutate(_ context.Context, id string, fn func(a *Announcement) error) (*Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.records[id] = next
	return next.Clone(), nil
}

func (r *memoryRepository) Delete(_ context.Context, id string, guard func(a *Announcement) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	if guard != nil {
		if err := guard(current.Clone()); err != nil {
			return err
		}
	}

	delete(r.records, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return nil
}
