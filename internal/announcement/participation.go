package announcement

import (
	"context"
	"slices"
	"time"
)

// Participation runs the join and leave workflow. Each call is one locked
// read-modify-write on the repository, so the count never leaves [1, MaxParticipants].
type Participation struct {
	repo Repository
	now  Clock
}

func NewParticipation(repo Repository, now Clock) *Participation {
	if now == nil {
		now = time.Now
	}
	return &Participation{repo: repo, now: now}
}

// Join adds userID to the announcement. A user already in the list gets
// ErrAlreadyJoined even when the announcement is also full.
func (p *Participation) Join(ctx context.Context, id, userID string) (*Announcement, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	return p.repo.Mutate(ctx, id, func(a *Announcement) error {
		if a.HasParticipant(userID) {
			return ErrAlreadyJoined
		}
		if a.IsFull() {
			return ErrCapacityExceeded
		}
		a.Participants = append(a.Participants, userID)
		a.UpdatedAt = nextTimestamp(p.now(), a.UpdatedAt)
		return nil
	})
}

func (p *Participation) Leave(ctx context.Context, id, userID string) (*Announcement, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	return p.repo.Mutate(ctx, id, func(a *Announcement) error {
		if userID == a.OrganizerID {
			return ErrOrganizerCannotLeave
		}
		i := slices.Index(a.Participants, userID)
		if i < 0 {
			return ErrNotAParticipant
		}
		a.Participants = slices.Delete(a.Participants, i, i+1)
		a.UpdatedAt = nextTimestamp(p.now(), a.UpdatedAt)
		return nil
	})
}
