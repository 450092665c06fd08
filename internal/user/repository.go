package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/badmatch-backend/internal/db"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Create fills in ID and CreatedAt.
	Create(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	// Update writes the profile fields; the avatar is changed through SetAvatar only.
	Update(ctx context.Context, u *User) error
	// SetAvatar swaps the avatar reference and returns the previous one.
	SetAvatar(ctx context.Context, id string, fileID *string) (*string, error)
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

const selectUser = `
	SELECT
		u.id::text,
		u.email,
		u.password_hash,
		u.display_name,
		u.level,
		u.ranking,
		u.age,
		u.city,
		u.location,
		u.bio,
		u.phone,
		u.availability,
		u.avatar_file_id::text,
		u.created_at,
		u.last_login_at,
		u.is_active
	FROM public.users u
`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.Level,
		&u.Ranking,
		&u.Age,
		&u.City,
		&u.Location,
		&u.Bio,
		&u.Phone,
		&u.Availability,
		&u.AvatarFileID,
		&u.CreatedAt,
		&u.LastLoginAt,
		&u.IsActive,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *pgxUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE u.email = $1`, email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("GetByEmail query failed: %w", err)
	}
	return u, err
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+`WHERE u.id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("GetByID query failed: %w", err)
	}
	return u, err
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO public.users (email, password_hash, display_name, level, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		u.Level,
		u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("Create user failed: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	const query = `
		UPDATE public.users
		SET last_login_at = $2
		WHERE id = $1
	`

	ct, err := r.pool.Exec(ctx, query, id, t)
	if err != nil {
		return fmt.Errorf("UpdateLastLogin failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxUserRepository) Update(ctx context.Context, u *User) error {
	const query = `
		UPDATE public.users
		SET display_name = $2, level = $3, ranking = $4, age = $5, city = $6,
			location = $7, bio = $8, phone = $9, availability = $10
		WHERE id = $1
	`

	ct, err := r.pool.Exec(ctx, query,
		u.ID,
		u.DisplayName,
		u.Level,
		u.Ranking,
		u.Age,
		u.City,
		u.Location,
		u.Bio,
		u.Phone,
		u.Availability,
	)
	if err != nil {
		return fmt.Errorf("Update user failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxUserRepository) SetAvatar(ctx context.Context, id string, fileID *string) (*string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("SetAvatar begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var previous *string
	err = tx.QueryRow(ctx, `SELECT avatar_file_id::text FROM public.users WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("SetAvatar lock failed: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE public.users SET avatar_file_id = $2 WHERE id = $1`, id, fileID); err != nil {
		return nil, fmt.Errorf("SetAvatar update failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("SetAvatar commit failed: %w", err)
	}
	return previous, nil
}
