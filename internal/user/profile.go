package user

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/badmatch-backend/internal/announcement"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
)

// profile is the editable part of a User, checked as one unit. Empty means unset.
type profile struct {
	DisplayName  string `json:"displayName" validate:"max=80"`
	Level        string `json:"level" validate:"omitempty,level"`
	Ranking      string `json:"ranking" validate:"omitempty,ranking"`
	Age          int    `json:"age" validate:"omitempty,min=13,max=100"`
	City         string `json:"city" validate:"max=80"`
	Location     string `json:"location" validate:"max=120"`
	Bio          string `json:"bio" validate:"max=500"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	Availability string `json:"availability" validate:"max=200"`
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 .()-]{5,19}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		_, ok := announcement.ParseLevel(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("ranking", func(fl validator.FieldLevel) bool {
		return slices.Contains(Rankings, fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return v
}

func profileOf(u *User) profile {
	p := profile{
		DisplayName:  deref(u.DisplayName),
		Level:        deref(u.Level),
		Ranking:      deref(u.Ranking),
		City:         deref(u.City),
		Location:     deref(u.Location),
		Bio:          deref(u.Bio),
		Phone:        deref(u.Phone),
		Availability: deref(u.Availability),
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	return p
}

func (p *profile) merge(req UpdateProfileRequest) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.DisplayName, req.DisplayName)
	set(&p.Level, req.Level)
	set(&p.Ranking, req.Ranking)
	set(&p.City, req.City)
	set(&p.Location, req.Location)
	set(&p.Bio, req.Bio)
	set(&p.Phone, req.Phone)
	set(&p.Availability, req.Availability)
	if req.Age != nil {
		p.Age = *req.Age
	}
	p.Ranking = strings.ToUpper(p.Ranking)
}

// check reports every violated field at once.
func (p *profile) check() error {
	verr := &apperror.ValidationError{}

	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate profile: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), profileMessage(fe))
		}
	}

	return verr.OrNil()
}

// apply copies the checked profile onto u, canonicalizing the level label.
func (p *profile) apply(u *User) {
	u.DisplayName = optional(p.DisplayName)
	u.Level = nil
	if level, ok := announcement.ParseLevel(p.Level); ok {
		l := string(level)
		u.Level = &l
	}
	u.Ranking = optional(p.Ranking)
	u.Age = nil
	if p.Age != 0 {
		age := p.Age
		u.Age = &age
	}
	u.City = optional(p.City)
	u.Location = optional(p.Location)
	u.Bio = optional(p.Bio)
	u.Phone = optional(p.Phone)
	u.Availability = optional(p.Availability)
}

func profileMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		if fe.Field() == "age" {
			return fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)
		}
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)
	case "level":
		return "must be one of the announcement levels"
	case "ranking":
		return "must be one of " + strings.Join(Rankings, ", ")
	case "phone":
		return "must be a phone number"
	default:
		return "is invalid"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
