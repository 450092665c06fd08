package response

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Fields  []apperror.FieldError `json:"fields,omitempty"`
}

// Error sends a JSON error response.
// It checks if the error is a ValidationError or an AppError to determine the status code.
// Anything else is logged and reported as 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   apperror.KindValidation,
			Message: "invalid input",
			Fields:  verr.Fields,
		})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Kind, Message: appErr.Message})
		return
	}

	log.Printf("%s %s: unexpected error: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   apperror.KindInternal,
		Message: "internal server error",
	})
}

// BindError reports a request that gin could not bind.
// Validator failures are expanded into one entry per field.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   lowerFirst(fe.Field()),
				Message: "failed on the '" + fe.Tag() + "' rule",
			})
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   apperror.KindValidation,
			Message: "invalid request",
			Fields:  fields,
		})
		return
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   apperror.KindValidation,
		Message: "invalid request: " + err.Error(),
	})
}

func lowerFirst(s string) string {
	if s == strings.ToUpper(s) { // acronyms such as ID
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:1]) + s[1:]
}
