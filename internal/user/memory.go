package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
	now     func() time.Time
}

// NewMemoryRepository creates an empty in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (r *memoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return ErrEmailAlreadyUsed
	}

	u.ID = uuid.NewString()
	u.CreatedAt = r.now().UTC()
	r.byID[u.ID] = clone(u)
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &t
	return nil
}

func (r *memoryRepository) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	updated := clone(u)
	current.DisplayName = updated.DisplayName
	current.Level = updated.Level
	current.Ranking = updated.Ranking
	current.Age = updated.Age
	current.City = updated.City
	current.Location = updated.Location
	current.Bio = updated.Bio
	current.Phone = updated.Phone
	current.Availability = updated.Availability
	return nil
}

func (r *memoryRepository) SetAvatar(_ context.Context, id string, fileID *string) (*string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	previous := u.AvatarFileID
	u.AvatarFileID = copyPtr(fileID)
	return previous, nil
}

func clone(u *User) *User {
	c := *u
	c.DisplayName = copyPtr(u.DisplayName)
	c.Level = copyPtr(u.Level)
	c.Ranking = copyPtr(u.Ranking)
	c.Age = copyPtr(u.Age)
	c.City = copyPtr(u.City)
	c.Location = copyPtr(u.Location)
	c.Bio = copyPtr(u.Bio)
	c.Phone = copyPtr(u.Phone)
	c.Availability = copyPtr(u.Availability)
	c.AvatarFileID = copyPtr(u.AvatarFileID)
	c.LastLoginAt = copyPtr(u.LastLoginAt)
	return &c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
