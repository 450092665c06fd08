package announcement

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/textutil"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// Filter narrows a list of announcements. Zero-valued fields are ignored.
type Filter struct {
	Location string // substring, case and accent insensitive
	Level    Level
	Type     GameType
	Date     *time.Time // calendar day
	MaxPrice *int       // inclusive
	Keyword  string     // substring of title or description

	OrganizerID   string
	ParticipantID string // joined by this user, excluding announcements they organize
	OnlyAvailable bool
}

type predicate func(a *Announcement) bool

func (f Filter) predicates() []predicate {
	var preds []predicate

	if loc := strings.TrimSpace(f.Location); loc != "" {
		preds = append(preds, func(a *Announcement) bool {
			return textutil.ContainsFold(a.Location, loc)
		})
	}
	if f.Level != "" {
		preds = append(preds, func(a *Announcement) bool { return a.Level == f.Level })
	}
	if f.Type != "" {
		preds = append(preds, func(a *Announcement) bool { return a.Type == f.Type })
	}
	if f.Date != nil {
		day := CivilDate(*f.Date)
		preds = append(preds, func(a *Announcement) bool { return a.Date.Equal(day) })
	}
	if f.MaxPrice != nil {
		limit := *f.MaxPrice
		preds = append(preds, func(a *Announcement) bool { return a.Price <= limit })
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		preds = append(preds, func(a *Announcement) bool {
			return textutil.ContainsFold(a.Title, kw) || textutil.ContainsFold(a.Description, kw)
		})
	}
	if f.OrganizerID != "" {
		preds = append(preds, func(a *Announcement) bool { return a.OrganizerID == f.OrganizerID })
	}
	if f.ParticipantID != "" {
		preds = append(preds, func(a *Announcement) bool {
			return a.OrganizerID != f.ParticipantID && a.HasParticipant(f.ParticipantID)
		})
	}
	if f.OnlyAvailable {
		preds = append(preds, func(a *Announcement) bool { return !a.IsFull() })
	}

	return preds
}

// Apply returns the records matching every predicate of f, in their input order.
// With no active predicate the input is returned as is.
func Apply(records []*Announcement, f Filter) []*Announcement {
	preds := f.predicates()
	if len(preds) == 0 {
		return records
	}

	result := make([]*Announcement, 0, len(records))
next:
	for _, a := range records {
		for _, match := range preds {
			if !match(a) {
				continue next
			}
		}
		result = append(result, a)
	}
	return result
}

type SortField string

const (
	SortByDate      SortField = "date"
	SortByCreatedAt SortField = "created_at"
	SortByPrice     SortField = "price"
)

// SortParams selects an optional ordering. An empty By keeps the input order.
type SortParams struct {
	By   SortField
	Desc bool
}

// Sort returns a stably sorted copy of records.
func Sort(records []*Announcement, p SortParams) []*Announcement {
	var compare func(a, b *Announcement) int
	switch p.By {
	case SortByDate:
		compare = func(a, b *Announcement) int {
			if c := a.Date.Compare(b.Date); c != 0 {
				return c
			}
			return strings.Compare(a.Time, b.Time)
		}
	case SortByCreatedAt:
		compare = func(a, b *Announcement) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByPrice:
		compare = func(a, b *Announcement) int { return cmp.Compare(a.Price, b.Price) }
	default:
		return records
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b *Announcement) int {
		if p.Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted
}

// Page identifies a 1-based page of results.
type Page struct {
	Number int
	Size   int
}

// Normalize applies the default and maximum page sizes.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Paginate returns the requested page and the total number of records.
func Paginate(records []*Announcement, p Page) ([]*Announcement, int) {
	p = p.Normalize()
	total := len(records)

	start := (p.Number - 1) * p.Size
	if start >= total {
		return []*Announcement{}, total
	}
	end := min(start+p.Size, total)
	return records[start:end], total
}

// ParseFilter builds a Filter from loosely typed key/value input such as query strings.
// Unknown keys and blank values are ignored; malformed values of known keys are reported.
func ParseFilter(params map[string]string) (Filter, error) {
	var f Filter
	verr := &apperror.ValidationError{}

	for _, key := range slices.Sorted(maps.Keys(params)) {
		value := strings.TrimSpace(params[key])
		if value == "" {
			continue
		}

		switch key {
		case "location":
			f.Location = value
		case "q", "keyword":
			f.Keyword = value
		case "level":
			level, ok := ParseLevel(value)
			if !ok {
				verr.Add("level", "must be one of "+joinValues(Levels))
				continue
			}
			f.Level = level
		case "type":
			gameType, ok := ParseGameType(value)
			if !ok {
				verr.Add("type", "must be one of "+joinValues(GameTypes))
				continue
			}
			f.Type = gameType
		case "date":
			date, err := time.Parse(DateLayout, value)
			if err != nil {
				verr.Add("date", "must be a date formatted YYYY-MM-DD")
				continue
			}
			f.Date = &date
		case "maxPrice", "max_price":
			price, err := strconv.Atoi(value)
			if err != nil || price < 0 {
				verr.Add("maxPrice", "must be a non-negative integer")
				continue
			}
			f.MaxPrice = &price
		case "available":
			available, err := strconv.ParseBool(value)
			if err != nil {
				verr.Add("available", "must be true or false")
				continue
			}
			f.OnlyAvailable = available
		}
	}

	if err := verr.OrNil(); err != nil {
		return Filter{}, err
	}
	return f, nil
}
