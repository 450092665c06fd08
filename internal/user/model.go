package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, apperror.KindNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, apperror.KindConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, apperror.KindUnauthenticated, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusForbidden, apperror.KindAuthorization, "user is inactive")
)

// Rankings are the federal badminton classifications, strongest first. NC is unranked.
var Rankings = []string{"N1", "N2", "N3", "R4", "R5", "R6", "D7", "D8", "D9", "P10", "P11", "P12", "NC"}

const (
	MinAge = 13
	MaxAge = 100
)

// User is a player account and the public profile other players see.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Level        *string // self-declared skill level, one of the announcement levels
	Ranking      *string // one of Rankings
	Age          *int
	City         *string
	Location     *string // usual club or venue
	Bio          *string
	Phone        *string
	Availability *string // free text, e.g. "weekday evenings"
	AvatarFileID *string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
	IsActive     bool
}

// UpdateProfileRequest is a partial profile update; nil fields are left unchanged.
// An empty string, or an age of 0, clears the field.
type UpdateProfileRequest struct {
	DisplayName  *string
	Level        *string
	Ranking      *string
	Age          *int
	City         *string
	Location     *string
	Bio          *string
	Phone        *string
	Availability *string
}
