package announcement

import (
	"sync"
	"time"
)

const (
	organizer = "11111111-1111-1111-1111-111111111111"
	userB     = "22222222-2222-2222-2222-222222222222"
	userC     = "33333333-3333-3333-3333-333333333333"
)

// fakeClock stands still until advanced.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	clock         *fakeClock
	repo          Repository
	store         *Store
	participation *Participation
}

func newFixture() *fixture {
	clock := newFakeClock(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := NewMemoryRepository()
	return &fixture{
		clock:         clock,
		repo:          repo,
		store:         NewStore(repo, clock.Now, time.UTC),
		participation: NewParticipation(repo, clock.Now),
	}
}

func validCreate() CreateRequest {
	return CreateRequest{
		Title:           "Double du jeudi soir",
		Description:     "Cherche deux joueurs pour un double détendu.",
		Type:            "Double",
		Level:           "Intermédiaire",
		Location:        "Gymnase Jean Moulin, Évry",
		Date:            "2026-06-15",
		Time:            "19:30",
		MaxParticipants: 4,
		Price:           5,
		Contact:         "orga@example.com",
	}
}

func ptr[T any](v T) *T {
	return &v
}
