package announcement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateRequest carries the fields supplied when publishing an announcement.
type CreateRequest struct {
	Title           string
	Description     string
	Type            string
	Level           string
	Location        string
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	MaxParticipants int
	Price           int
	Contact         string
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Title           *string
	Description     *string
	Type            *string
	Level           *string
	Location        *string
	Date            *string
	Time            *string
	MaxParticipants *int
	Price           *int
	Contact         *string
}

// Store enforces record-level rules (validation, ownership, timestamps)
// on top of a Repository.
type Store struct {
	repo Repository
	now  Clock
	loc  *time.Location
}

// NewStore creates a Store. Dates are judged against "today" in loc.
func NewStore(repo Repository, now Clock, loc *time.Location) *Store {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Store{repo: repo, now: now, loc: loc}
}

func (s *Store) today() time.Time {
	return CivilDate(s.now().In(s.loc))
}

func (s *Store) Create(ctx context.Context, req CreateRequest, organizerID string) (*Announcement, error) {
	if organizerID == "" {
		return nil, ErrUnauthenticated
	}

	d := draft{
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		Level:           req.Level,
		Location:        req.Location,
		Date:            req.Date,
		Time:            req.Time,
		MaxParticipants: req.MaxParticipants,
		Price:           req.Price,
		Contact:         req.Contact,
	}
	d.normalize()
	if verr := d.check(s.today()); verr.OrNil() != nil {
		return nil, verr
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate announcement id failed: %w", err)
	}

	now := nextTimestamp(s.now(), time.Time{})
	a := &Announcement{
		ID:           id.String(),
		OrganizerID:  organizerID,
		Participants: []string{organizerID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.apply(a)

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

func (s *Store) Get(ctx context.Context, id string) (*Announcement, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a snapshot of every announcement in insertion order.
func (s *Store) List(ctx context.Context) ([]*Announcement, error) {
	return s.repo.List(ctx)
}

func (s *Store) Update(ctx context.Context, id string, req UpdateRequest, requesterID string) (*Announcement, error) {
	if requesterID == "" {
		return nil, ErrUnauthenticated
	}

	return s.repo.Mutate(ctx, id, func(a *Announcement) error {
		if a.OrganizerID != requesterID {
			return ErrPermissionDenied
		}

		d := draftOf(a)
		mergeUpdate(&d, req)
		d.normalize()

		var notBefore time.Time
		if d.Date != a.Date.Format(DateLayout) {
			notBefore = s.today()
		}
		verr := d.check(notBefore)
		if !verr.Has("maxParticipants") && d.MaxParticipants < a.CurrentParticipants() {
			verr.Add("maxParticipants", fmt.Sprintf("cannot be lower than the %d current participants", a.CurrentParticipants()))
		}
		if err := verr.OrNil(); err != nil {
			return err
		}

		d.apply(a)
		a.UpdatedAt = nextTimestamp(s.now(), a.UpdatedAt)
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, id string, requesterID string) error {
	if requesterID == "" {
		return ErrUnauthenticated
	}

	return s.repo.Delete(ctx, id, func(a *Announcement) error {
		if a.OrganizerID != requesterID {
			return ErrPermissionDenied
		}
		return nil
	})
}

func mergeUpdate(d *draft, req UpdateRequest) {
	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Type != nil {
		d.Type = *req.Type
	}
	if req.Level != nil {
		d.Level = *req.Level
	}
	if req.Location != nil {
		d.Location = *req.Location
	}
	if req.Date != nil {
		d.Date = *req.Date
	}
	if req.Time != nil {
		d.Time = *req.Time
	}
	if req.MaxParticipants != nil {
		d.MaxParticipants = *req.MaxParticipants
	}
	if req.Price != nil {
		d.Price = *req.Price
	}
	if req.Contact != nil {
		d.Contact = *req.Contact
	}
}

// nextTimestamp returns now at storage precision, moved past prev when the clock has not advanced.
func nextTimestamp(now, prev time.Time) time.Time {
	t := now.UTC().Truncate(time.Microsecond)
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	return t
}

