package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/storage"
)

// UploadInput describes one uploaded file and the rules it must satisfy.
type UploadInput struct {
	OwnerID  string
	Filename string
	Content  io.Reader

	MaxSizeBytes int64    // 0 = no limit
	AllowedTypes []string // sniffed MIME types; empty = allow all
	// ResizeImage requires a decodable picture. It is stored as a JPEG fitting
	// ImageMaxSide, with a square ThumbnailSide thumbnail.
	ResizeImage bool
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
	now     func() time.Time
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(85),
		now:     time.Now,
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	// Read one byte past the limit to tell "exactly the limit" from "too large".
	reader := in.Content
	if in.MaxSizeBytes > 0 {
		reader = io.LimitReader(in.Content, in.MaxSizeBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if in.MaxSizeBytes > 0 && int64(len(data)) > in.MaxSizeBytes {
		return nil, ErrTooLarge
	}

	// The client-declared Content-Type is not trusted.
	detected := mimetype.Detect(data)
	if !allowed(detected, in.AllowedTypes) {
		return nil, ErrUnsupportedType
	}

	fileID := uuid.New().String()
	// Sharding path: upload/ab/UUID.ext
	shard := fileID[:2]

	f := &File{
		ID:          fileID,
		OwnerID:     in.OwnerID,
		Filename:    filepath.Base(in.Filename),
		ContentType: detected.String(),
		CreatedAt:   s.now().UTC(),
	}
	content := data
	var thumbnail []byte

	if in.ResizeImage {
		img, err := s.imgProc.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, ErrInvalidImage
		}
		fitted, err := s.imgProc.Fit(img, ImageMaxSide, ImageMaxSide)
		if err != nil {
			return nil, err
		}
		thumb, err := s.imgProc.Thumbnail(img, ThumbnailSide)
		if err != nil {
			return nil, err
		}
		content, thumbnail = fitted.Bytes(), thumb.Bytes()
		f.ContentType = "image/jpeg"
		f.Filename = strings.TrimSuffix(f.Filename, filepath.Ext(f.Filename)) + ".jpg"
		f.StoragePath = fmt.Sprintf("upload/%s/%s.jpg", shard, fileID)
	} else {
		f.StoragePath = fmt.Sprintf("upload/%s/%s%s", shard, fileID, detected.Extension())
	}
	f.Size = int64(len(content))

	if err := s.storage.Save(ctx, f.StoragePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	if thumbnail != nil {
		tPath := fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID)
		if err := s.storage.Save(ctx, tPath, bytes.NewReader(thumbnail)); err != nil {
			s.discard(ctx, f.StoragePath)
			return nil, fmt.Errorf("failed to save thumbnail to storage: %w", err)
		}
		f.ThumbnailPath = &tPath
	}

	if err := s.repo.Create(ctx, f); err != nil {
		// Cleanup storage if db fails
		s.discard(ctx, f.StoragePath)
		if f.ThumbnailPath != nil {
			s.discard(ctx, *f.ThumbnailPath)
		}
		return nil, err
	}

	return f, nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.Get(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.storage.Get(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve thumbnail from storage: %w", err)
	}
	return stream, f, nil
}

// Delete removes the record first; leftover blobs are only logged.
func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.discard(ctx, f.StoragePath)
	if f.ThumbnailPath != nil {
		s.discard(ctx, *f.ThumbnailPath)
	}
	return nil
}

func (s *service) discard(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		log.Printf("failed to delete stored object %s: %v", path, err)
	}
}

func allowed(detected *mimetype.MIME, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if detected.Is(t) {
			return true
		}
	}
	return false
}
