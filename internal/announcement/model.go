package announcement

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/textutil"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, apperror.KindNotFound, "announcement not found")
	ErrUnauthenticated      = apperror.New(http.StatusUnauthorized, apperror.KindUnauthenticated, "an authenticated user is required")
	ErrPermissionDenied     = apperror.New(http.StatusForbidden, apperror.KindAuthorization, "only the organizer can modify this announcement")
	ErrCapacityExceeded     = apperror.New(http.StatusConflict, apperror.KindCapacityExceeded, "announcement is full")
	ErrAlreadyJoined        = apperror.New(http.StatusConflict, apperror.KindAlreadyJoined, "user already participates in this announcement")
	ErrNotAParticipant      = apperror.New(http.StatusConflict, apperror.KindNotAParticipant, "user does not participate in this announcement")
	ErrOrganizerCannotLeave = apperror.New(http.StatusConflict, apperror.KindOrganizerCannotLeave, "the organizer cannot leave; delete the announcement instead")
	ErrTransientIO          = apperror.New(http.StatusServiceUnavailable, apperror.KindTransientIO, "announcement storage is temporarily unavailable, please retry")
)

const (
	MinParticipants = 2
	MaxParticipants = 10

	// ExcerptLength is how many characters of the description list views show.
	ExcerptLength = 100

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// GameType is the badminton format an announcement is looking players for.
type GameType string

const (
	TypeSimple GameType = "Simple"
	TypeDouble GameType = "Double"
	TypeMixte  GameType = "Mixte"
)

// GameTypes lists every supported format.
var GameTypes = []GameType{TypeSimple, TypeDouble, TypeMixte}

// Level is the skill bracket an announcement targets.
type Level string

const (
	LevelBeginner     Level = "Débutant"
	LevelIntermediate Level = "Intermédiaire"
	LevelAdvanced     Level = "Avancé"
	LevelExpert       Level = "Expert"
)

// Levels lists every skill bracket from lowest to highest.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert}

// ParseGameType resolves s to a GameType ignoring case, accents and surrounding spaces.
func ParseGameType(s string) (GameType, bool) {
	folded := textutil.Fold(strings.TrimSpace(s))
	for _, t := range GameTypes {
		if textutil.Fold(string(t)) == folded {
			return t, true
		}
	}
	return "", false
}

// ParseLevel resolves s to a Level ignoring case, accents and surrounding spaces,
// so "debutant" and "DÉBUTANT" both give LevelBeginner.
func ParseLevel(s string) (Level, bool) {
	folded := textutil.Fold(strings.TrimSpace(s))
	for _, l := range Levels {
		if textutil.Fold(string(l)) == folded {
			return l, true
		}
	}
	return "", false
}

// Status is derived from the participant count; it is never stored.
type Status string

const (
	StatusActive Status = "active"
	StatusFull   Status = "full"
)

// Announcement is a "looking for partners" posting for one badminton session.
type Announcement struct {
	ID              string
	Title           string
	Description     string
	Type            GameType
	Level           Level
	Location        string
	Date            time.Time // calendar day, midnight UTC
	Time            string    // HH:MM, local to the venue
	MaxParticipants int
	Participants    []string // user IDs in join order; Participants[0] is the organizer
	Price           int
	OrganizerID     string
	Contact         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a *Announcement) CurrentParticipants() int {
	return len(a.Participants)
}

func (a *Announcement) IsFull() bool {
	return a.CurrentParticipants() >= a.MaxParticipants
}

func (a *Announcement) Status() Status {
	if a.IsFull() {
		return StatusFull
	}
	return StatusActive
}

func (a *Announcement) HasParticipant(userID string) bool {
	return slices.Contains(a.Participants, userID)
}

// Excerpt is the description as shown in list views.
func (a *Announcement) Excerpt() string {
	return textutil.Truncate(a.Description, ExcerptLength)
}

// Clone returns a deep copy that shares no mutable state with a.
func (a *Announcement) Clone() *Announcement {
	c := *a
	c.Participants = slices.Clone(a.Participants)
	return &c
}

// CivilDate drops the clock part of t, keeping its calendar day as midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Clock returns the current instant. Tests replace it to control timestamps.
type Clock func() time.Time
