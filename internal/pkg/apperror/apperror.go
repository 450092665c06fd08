package apperror

import (
	"errors"
	"strings"
)

// Error kinds exposed to API clients so they can render action-specific messages.
const (
	KindValidation           = "validation_error"
	KindUnauthenticated      = "unauthenticated"
	KindAuthorization        = "authorization_error"
	KindNotFound             = "not_found"
	KindConflict             = "conflict"
	KindCapacityExceeded     = "capacity_exceeded"
	KindAlreadyJoined        = "already_joined"
	KindNotAParticipant      = "not_a_participant"
	KindOrganizerCannotLeave = "organizer_cannot_leave"
	KindTransientIO          = "transient_io"
	KindInternal             = "internal_error"
)

// AppError is a custom error type that includes an HTTP status code and a machine-readable kind.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    string // Stable identifier of the error category
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// FieldError describes one violated rule on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violated field of an input, not just the first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a violation for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field already has a violation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns the error when at least one field was recorded, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// KindOf returns the kind carried by err, or KindInternal for untyped errors.
func KindOf(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindInternal
}
