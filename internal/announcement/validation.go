package announcement

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
)

// draft is the full set of user-editable fields, checked as one unit on create and update.
type draft struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Type            string `json:"type" validate:"required,gametype"`
	Level           string `json:"level" validate:"required,level"`
	Location        string `json:"location" validate:"required"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string `json:"time" validate:"required,datetime=15:04"`
	MaxParticipants int    `json:"maxParticipants" validate:"min=2,max=10"`
	Price           int    `json:"price" validate:"min=0"`
	Contact         string `json:"contact" validate:"required,email"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name, as clients know them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("gametype", func(fl validator.FieldLevel) bool {
		_, ok := ParseGameType(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		_, ok := ParseLevel(fl.Field().String())
		return ok
	})

	return v
}

func (d *draft) normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Type = strings.TrimSpace(d.Type)
	d.Level = strings.TrimSpace(d.Level)
	d.Location = strings.TrimSpace(d.Location)
	d.Date = strings.TrimSpace(d.Date)
	d.Time = strings.TrimSpace(d.Time)
	d.Contact = strings.TrimSpace(d.Contact)
}

// check validates every field and returns all violations at once.
// When notBefore is non-zero, the date must fall on that day or later.
func (d *draft) check(notBefore time.Time) *apperror.ValidationError {
	verr := &apperror.ValidationError{}

	if err := validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			verr.Add("input", err.Error())
			return verr
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe))
		}
	}

	if !notBefore.IsZero() && !verr.Has("date") {
		if date, err := time.Parse(DateLayout, d.Date); err == nil && date.Before(notBefore) {
			verr.Add("date", "cannot be in the past")
		}
	}

	return verr
}

// apply copies the validated draft onto a. It must only be called after check passed.
func (d *draft) apply(a *Announcement) {
	gameType, _ := ParseGameType(d.Type)
	level, _ := ParseLevel(d.Level)
	date, _ := time.Parse(DateLayout, d.Date)
	// "7:30" parses too; store the zero-padded form so times compare as strings.
	clock, _ := time.Parse(TimeLayout, d.Time)

	a.Title = d.Title
	a.Description = d.Description
	a.Type = gameType
	a.Level = level
	a.Location = d.Location
	a.Date = date
	a.Time = clock.Format(TimeLayout)
	a.MaxParticipants = d.MaxParticipants
	a.Price = d.Price
	a.Contact = d.Contact
}

func draftOf(a *Announcement) draft {
	return draft{
		Title:           a.Title,
		Description:     a.Description,
		Type:            string(a.Type),
		Level:           string(a.Level),
		Location:        a.Location,
		Date:            a.Date.Format(DateLayout),
		Time:            a.Time,
		MaxParticipants: a.MaxParticipants,
		Price:           a.Price,
		Contact:         a.Contact,
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "max":
		if fe.Field() == "maxParticipants" {
			return fmt.Sprintf("must be between %d and %d", MinParticipants, MaxParticipants)
		}
		return "must be zero or positive"
	case "email":
		return "must be a valid email address"
	case "datetime":
		if fe.Field() == "time" {
			return "must be a time of day formatted HH:MM"
		}
		return "must be a date formatted YYYY-MM-DD"
	case "gametype":
		return fmt.Sprintf("must be one of %s", joinValues(GameTypes))
	case "level":
		return fmt.Sprintf("must be one of %s", joinValues(Levels))
	default:
		return "is invalid"
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
