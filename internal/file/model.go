package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, apperror.KindNotFound, "file not found")
	ErrTooLarge          = apperror.New(http.StatusRequestEntityTooLarge, apperror.KindValidation, "file is too large")
	ErrUnsupportedType   = apperror.New(http.StatusUnsupportedMediaType, apperror.KindValidation, "file type is not allowed")
	ErrInvalidImage      = apperror.New(http.StatusBadRequest, apperror.KindValidation, "file is not a readable image")
	ErrNoThumbnail       = apperror.New(http.StatusNotFound, apperror.KindNotFound, "thumbnail not available for this file")
	ErrMissingUploadFile = apperror.New(http.StatusBadRequest, apperror.KindValidation, "a file is required")
)

// Limits applied to profile pictures.
const (
	MaxImageBytes = 5 << 20
	ImageMaxSide  = 1000
	ThumbnailSide = 200
)

// ImageTypes are the picture formats accepted for upload.
var ImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// File is an uploaded object owned by a player.
type File struct {
	ID            string
	OwnerID       string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
