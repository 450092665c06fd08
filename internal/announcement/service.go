package announcement

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
)

// Recorder observes the outcome of every directory operation.
type Recorder interface {
	Record(operation string, err error)
}

// Service is the single entry point of the announcement directory.
// The acting user is always passed explicitly; the service never reads it from ambient state.
type Service interface {
	List(ctx context.Context, page Page) ([]*Announcement, int, error)
	Search(ctx context.Context, filter Filter, sort SortParams, page Page) ([]*Announcement, int, error)
	GetByID(ctx context.Context, id string) (*Announcement, error)
	Create(ctx context.Context, req CreateRequest, organizerID string) (*Announcement, error)
	Update(ctx context.Context, id string, req UpdateRequest, requesterID string) (*Announcement, error)
	Delete(ctx context.Context, id string, requesterID string) error
	Join(ctx context.Context, id, userID string) (*Announcement, error)
	Leave(ctx context.Context, id, userID string) (*Announcement, error)
}

type service struct {
	store         *Store
	participation *Participation
	recorder      Recorder
}

// NewService composes the store and the participation workflow. recorder may be nil.
func NewService(store *Store, participation *Participation, recorder Recorder) Service {
	return &service{store: store, participation: participation, recorder: recorder}
}

func (s *service) List(ctx context.Context, page Page) ([]*Announcement, int, error) {
	items, total, err := s.search(ctx, Filter{}, SortParams{}, page)
	return items, total, s.finish("list", err)
}

func (s *service) Search(ctx context.Context, filter Filter, sort SortParams, page Page) ([]*Announcement, int, error) {
	items, total, err := s.search(ctx, filter, sort, page)
	return items, total, s.finish("search", err)
}

func (s *service) search(ctx context.Context, filter Filter, sort SortParams, page Page) ([]*Announcement, int, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	items, total := Paginate(Sort(Apply(records, filter), sort), page)
	return items, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Announcement, error) {
	a, err := s.store.Get(ctx, id)
	return a, s.finish("get", err)
}

func (s *service) Create(ctx context.Context, req CreateRequest, organizerID string) (*Announcement, error) {
	a, err := s.store.Create(ctx, req, organizerID)
	return a, s.finish("create", err)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, requesterID string) (*Announcement, error) {
	a, err := s.store.Update(ctx, id, req, requesterID)
	return a, s.finish("update", err)
}

func (s *service) Delete(ctx context.Context, id string, requesterID string) error {
	return s.finish("delete", s.store.Delete(ctx, id, requesterID))
}

func (s *service) Join(ctx context.Context, id, userID string) (*Announcement, error) {
	a, err := s.participation.Join(ctx, id, userID)
	return a, s.finish("join", err)
}

func (s *service) Leave(ctx context.Context, id, userID string) (*Announcement, error) {
	a, err := s.participation.Leave(ctx, id, userID)
	return a, s.finish("leave", err)
}

// finish records the outcome and makes sure every error leaving the directory carries a kind.
// Domain errors pass through untouched; anything else is logged and hidden behind an internal error.
func (s *service) finish(operation string, err error) error {
	if s.recorder != nil {
		s.recorder.Record(operation, err)
	}
	if err == nil {
		return nil
	}

	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		return err
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if errors.Is(err, ErrTransientIO) {
			log.Printf("announcement %s: %v", operation, err)
		}
		return err
	}

	log.Printf("announcement %s: unexpected error: %v", operation, err)
	return apperror.Wrap(err, http.StatusInternalServerError, apperror.KindInternal, "internal server error")
}
