package announcement

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/badmatch-backend/internal/db"
)

// Repository is the persistence boundary of the directory.
//
// Mutate and Delete run their callback while holding an exclusive lock on the record,
// so a check made inside the callback still holds when the change is committed.
// The callback of Mutate receives a private copy; returning an error discards it.
type Repository interface {
	Create(ctx context.Context, a *Announcement) error
	GetByID(ctx context.Context, id string) (*Announcement, error)
	// List returns every announcement in insertion order.
	List(ctx context.Context) ([]*Announcement, error)
	Mutate(ctx context.Context, id string, fn func(a *Announcement) error) (*Announcement, error)
	Delete(ctx context.Context, id string, guard func(a *Announcement) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a Repository backed by PostgreSQL.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var selectColumns = []string{
	"a.id::text", "a.title", "a.description", "a.game_type", "a.level", "a.location",
	"a.event_date", "a.event_time", "a.max_participants", "a.price",
	"a.organizer_id::text", "a.contact", "a.created_at", "a.updated_at",
	"COALESCE((SELECT array_agg(p.user_id::text ORDER BY p.position) " +
		"FROM public.announcement_participants p WHERE p.announcement_id = a.id), '{}') AS participants",
}

func scanAnnouncement(row pgx.Row) (*Announcement, error) {
	var a Announcement
	if err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Type, &a.Level, &a.Location,
		&a.Date, &a.Time, &a.MaxParticipants, &a.Price,
		&a.OrganizerID, &a.Contact, &a.CreatedAt, &a.UpdatedAt,
		&a.Participants,
	); err != nil {
		return nil, err
	}
	a.Date = CivilDate(a.Date)
	return &a, nil
}

// storageError maps driver failures to ErrTransientIO when retrying could help.
func storageError(op string, err error) error {
	if db.IsTransient(err) {
		return fmt.Errorf("%s: %w", op, errors.Join(ErrTransientIO, err))
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func (r *pgxRepository) Create(ctx context.Context, a *Announcement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageError("begin create announcement", err)
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Insert("public.announcements").
		Columns(
			"id", "title", "description", "game_type", "level", "location",
			"event_date", "event_time", "max_participants", "price",
			"organizer_id", "contact", "created_at", "updated_at",
		).
		Values(
			a.ID, a.Title, a.Description, a.Type, a.Level, a.Location,
			a.Date, a.Time, a.MaxParticipants, a.Price,
			a.OrganizerID, a.Contact, a.CreatedAt, a.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build create announcement query failed: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return storageError("create announcement", err)
	}
	if err := writeParticipants(ctx, tx, a); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit create announcement", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Announcement, error) {
	return getByID(ctx, r.pool, id)
}

func getByID(ctx context.Context, q querier, id string) (*Announcement, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	query, args, err := psql.Select(selectColumns...).
		From("public.announcements a").
		Where(squirrel.Eq{"a.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get announcement query failed: %w", err)
	}

	a, err := scanAnnouncement(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("get announcement", err)
	}
	return a, nil
}

func (r *pgxRepository) List(ctx context.Context) ([]*Announcement, error) {
	// UUIDv7 ids sort by creation time, which keeps ties on created_at stable.
	query, args, err := psql.Select(selectColumns...).
		From("public.announcements a").
		OrderBy("a.created_at ASC", "a.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list announcements query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("list announcements", err)
	}
	defer rows.Close()

	var result []*Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement failed: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list announcements", err)
	}

	return result, nil
}

func (r *pgxRepository) Mutate(ctx context.Context, id string, fn func(a *Announcement) error) (*Announcement, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storageError("begin update announcement", err)
	}
	defer tx.Rollback(ctx)

	a, err := lockForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	query, args, err := psql.Update("public.announcements").
		Set("title", a.Title).
		Set("description", a.Description).
		Set("game_type", a.Type).
		Set("level", a.Level).
		Set("location", a.Location).
		Set("event_date", a.Date).
		Set("event_time", a.Time).
		Set("max_participants", a.MaxParticipants).
		Set("price", a.Price).
		Set("contact", a.Contact).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update announcement query failed: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, storageError("update announcement", err)
	}

	delQuery, delArgs, err := psql.Delete("public.announcement_participants").
		Where(squirrel.Eq{"announcement_id": a.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reset participants query failed: %w", err)
	}
	if _, err := tx.Exec(ctx, delQuery, delArgs...); err != nil {
		return nil, storageError("reset participants", err)
	}
	if err := writeParticipants(ctx, tx, a); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError("commit update announcement", err)
	}
	return a, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string, guard func(a *Announcement) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageError("begin delete announcement", err)
	}
	defer tx.Rollback(ctx)

	a, err := lockForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if guard != nil {
		if err := guard(a); err != nil {
			return err
		}
	}

	query, args, err := psql.Delete("public.announcements").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete announcement query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return storageError("delete announcement", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit delete announcement", err)
	}
	return nil
}

// lockForUpdate takes the row lock that serializes every mutation of one announcement.
func lockForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Announcement, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	query, args, err := psql.Select("id::text").
		From("public.announcements").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock announcement query failed: %w", err)
	}

	var lockedID string
	if err := tx.QueryRow(ctx, query, args...).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("lock announcement", err)
	}

	return getByID(ctx, tx, id)
}

// validID reports whether id can name a row; anything else would fail the uuid cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func writeParticipants(ctx context.Context, q querier, a *Announcement) error {
	if len(a.Participants) == 0 {
		return nil
	}

	insert := psql.Insert("public.announcement_participants").
		Columns("announcement_id", "user_id", "position")
	for i, userID := range a.Participants {
		insert = insert.Values(a.ID, userID, i)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build write participants query failed: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return storageError("write participants", err)
	}
	return nil
}
