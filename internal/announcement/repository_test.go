package announcement

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/badmatch-backend/internal/db"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
)

// pgxFixture runs the store and participation workflow against PostgreSQL.
// It needs DB_DSN and skips otherwise.
type pgxFixture struct {
	*fixture
	pool      *pgxpool.Pool
	organizer string
}

func newPgxFixture(t *testing.T) *pgxFixture {
	t.Helper()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Skip("DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.EnsureSchema(ctx, pool))

	clock := newFakeClock(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	repo := NewPgxRepository(pool)
	f := &pgxFixture{
		fixture: &fixture{
			clock:         clock,
			repo:          repo,
			store:         NewStore(repo, clock.Now, time.UTC),
			participation: NewParticipation(repo, clock.Now),
		},
		pool: pool,
	}
	f.organizer = f.seedUser(t)
	return f
}

// seedUser inserts a throwaway player; deleting it cascades to its announcements.
func (f *pgxFixture) seedUser(t *testing.T) string {
	t.Helper()

	id := uuid.NewString()
	_, err := f.pool.Exec(context.Background(),
		`INSERT INTO public.users (id, email, password_hash) VALUES ($1, $2, 'x')`,
		id, id+"@example.com")
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = f.pool.Exec(context.Background(), `DELETE FROM public.users WHERE id = $1`, id)
	})
	return id
}

func (f *pgxFixture) create(t *testing.T, capacity int) *Announcement {
	t.Helper()
	req := validCreate()
	req.MaxParticipants = capacity
	a, err := f.store.Create(context.Background(), req, f.organizer)
	require.NoError(t, err)
	return a
}

func TestValidID(t *testing.T) {
	assert.True(t, validID(uuid.NewString()))
	assert.False(t, validID("missing"))
	assert.False(t, validID(""))
}

func TestPgxRepositoryRoundTrip(t *testing.T) {
	f := newPgxFixture(t)
	ctx := context.Background()

	req := validCreate()
	req.Time = "7:30"
	a, err := f.store.Create(ctx, req, f.organizer)
	require.NoError(t, err)

	stored, err := f.store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, stored.ID)
	assert.Equal(t, a.Title, stored.Title)
	assert.Equal(t, a.Type, stored.Type)
	assert.Equal(t, a.Level, stored.Level)
	assert.Equal(t, a.Date, stored.Date)
	assert.Equal(t, "07:30", stored.Time)
	assert.Equal(t, []string{f.organizer}, stored.Participants)
	assert.True(t, a.CreatedAt.Equal(stored.CreatedAt))

	all, err := f.store.List(ctx)
	require.NoError(t, err)
	var found bool
	for _, r := range all {
		found = found || r.ID == a.ID
	}
	assert.True(t, found)
}

func TestPgxRepositoryUnknownIDs(t *testing.T) {
	f := newPgxFixture(t)
	ctx := context.Background()

	for _, id := range []string{"missing", uuid.NewString()} {
		_, err := f.store.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, id)

		_, err = f.participation.Join(ctx, id, f.organizer)
		assert.ErrorIs(t, err, ErrNotFound, id)

		assert.ErrorIs(t, f.store.Delete(ctx, id, f.organizer), ErrNotFound, id)
	}
}

func TestPgxParticipationScenario(t *testing.T) {
	f := newPgxFixture(t)
	ctx := context.Background()
	guestB, guestC := f.seedUser(t), f.seedUser(t)

	a := f.create(t, 2)

	a, err := f.participation.Join(ctx, a.ID, guestB)
	require.NoError(t, err)
	assert.Equal(t, 2, a.CurrentParticipants())

	_, err = f.participation.Join(ctx, a.ID, guestC)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = f.participation.Join(ctx, a.ID, guestB)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	a, err = f.participation.Leave(ctx, a.ID, guestB)
	require.NoError(t, err)
	assert.Equal(t, 1, a.CurrentParticipants())

	_, err = f.participation.Leave(ctx, a.ID, f.organizer)
	assert.ErrorIs(t, err, ErrOrganizerCannotLeave)

	_, err = f.participation.Join(ctx, a.ID, guestC)
	require.NoError(t, err)

	stored, err := f.store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.organizer, guestC}, stored.Participants)
	assert.Equal(t, StatusFull, stored.Status())
}

func TestPgxConcurrentJoinsNeverOvershoot(t *testing.T) {
	f := newPgxFixture(t)
	ctx := context.Background()
	const capacity = 5
	a := f.create(t, capacity)

	const players = 20
	guests := make([]string, players)
	for i := range guests {
		guests[i] = f.seedUser(t)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		joined   int
		rejected int
	)
	for _, guest := range guests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.participation.Join(ctx, a.ID, guest)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case errors.Is(err, ErrCapacityExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity-1, joined)
	assert.Equal(t, players-(capacity-1), rejected)

	final, err := f.store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, final.CurrentParticipants())
	assert.Equal(t, f.organizer, final.Participants[0])
}

func TestPgxUpdateAndDeleteTwice(t *testing.T) {
	f := newPgxFixture(t)
	ctx := context.Background()
	guest := f.seedUser(t)

	a := f.create(t, 4)
	_, err := f.participation.Join(ctx, a.ID, guest)
	require.NoError(t, err)

	_, err = f.store.Update(ctx, a.ID, UpdateRequest{Title: ptr("Hijacked")}, guest)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.store.Update(ctx, a.ID, UpdateRequest{MaxParticipants: ptr(1)}, f.organizer)
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("maxParticipants"))

	f.clock.Advance(time.Hour)
	updated, err := f.store.Update(ctx, a.ID, UpdateRequest{Title: ptr("Double du dimanche")}, f.organizer)
	require.NoError(t, err)
	assert.Equal(t, []string{f.organizer, guest}, updated.Participants)

	stored, err := f.store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Double du dimanche", stored.Title)
	assert.True(t, stored.UpdatedAt.After(a.UpdatedAt))
	assert.Equal(t, []string{f.organizer, guest}, stored.Participants)

	assert.ErrorIs(t, f.store.Delete(ctx, a.ID, guest), ErrPermissionDenied)
	require.NoError(t, f.store.Delete(ctx, a.ID, f.organizer))
	assert.ErrorIs(t, f.store.Delete(ctx, a.ID, f.organizer), ErrNotFound)

	_, err = f.store.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
