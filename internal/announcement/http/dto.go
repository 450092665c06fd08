package http

import (
	"time"

	"github.com/nekogravitycat/badmatch-backend/internal/announcement"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/request"
)

// ListAnnouncementsRequest holds the paging and ordering parameters of list endpoints.
// Filter predicates are read separately so unknown keys can be ignored.
type ListAnnouncementsRequest struct {
	request.ListParams
	SortBy string `form:"sort_by" binding:"omitempty,oneof=date created_at price"`
}

func (r ListAnnouncementsRequest) page() announcement.Page {
	return announcement.Page{Number: r.Page, Size: r.PageSize}.Normalize()
}

func (r ListAnnouncementsRequest) sort() announcement.SortParams {
	return announcement.SortParams{
		By:   announcement.SortField(r.SortBy),
		Desc: r.SortOrder == "desc" || r.SortOrder == "DESC",
	}
}

// AnnouncementResponse is the full record as returned by detail and mutation endpoints.
type AnnouncementResponse struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Type                string    `json:"type"`
	Level               string    `json:"level"`
	Location            string    `json:"location"`
	Date                string    `json:"date"`
	Time                string    `json:"time"`
	MaxParticipants     int       `json:"maxParticipants"`
	CurrentParticipants int       `json:"currentParticipants"`
	Participants        []string  `json:"participants"`
	Price               int       `json:"price"`
	OrganizerID         string    `json:"organizerId"`
	Contact             string    `json:"contact"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func NewAnnouncementResponse(a *announcement.Announcement) AnnouncementResponse {
	participants := a.Participants
	if participants == nil {
		participants = []string{}
	}
	return AnnouncementResponse{
		ID:                  a.ID,
		Title:               a.Title,
		Description:         a.Description,
		Type:                string(a.Type),
		Level:               string(a.Level),
		Location:            a.Location,
		Date:                a.Date.Format(announcement.DateLayout),
		Time:                a.Time,
		MaxParticipants:     a.MaxParticipants,
		CurrentParticipants: a.CurrentParticipants(),
		Participants:        participants,
		Price:               a.Price,
		OrganizerID:         a.OrganizerID,
		Contact:             a.Contact,
		Status:              string(a.Status()),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// AnnouncementSummary is the list-view shape: the description is cut to an excerpt.
type AnnouncementSummary struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Excerpt             string    `json:"excerpt"`
	Type                string    `json:"type"`
	Level               string    `json:"level"`
	Location            string    `json:"location"`
	Date                string    `json:"date"`
	Time                string    `json:"time"`
	MaxParticipants     int       `json:"maxParticipants"`
	CurrentParticipants int       `json:"currentParticipants"`
	Price               int       `json:"price"`
	OrganizerID         string    `json:"organizerId"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
}

func NewAnnouncementSummary(a *announcement.Announcement) AnnouncementSummary {
	return AnnouncementSummary{
		ID:                  a.ID,
		Title:               a.Title,
		Excerpt:             a.Excerpt(),
		Type:                string(a.Type),
		Level:               string(a.Level),
		Location:            a.Location,
		Date:                a.Date.Format(announcement.DateLayout),
		Time:                a.Time,
		MaxParticipants:     a.MaxParticipants,
		CurrentParticipants: a.CurrentParticipants(),
		Price:               a.Price,
		OrganizerID:         a.OrganizerID,
		Status:              string(a.Status()),
		CreatedAt:           a.CreatedAt,
	}
}

// CreateAnnouncementBody is decoded from the request; field rules are enforced by the directory
// so that every violation is reported together.
type CreateAnnouncementBody struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	Level           string `json:"level"`
	Location        string `json:"location"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	MaxParticipants int    `json:"maxParticipants"`
	Price           int    `json:"price"`
	Contact         string `json:"contact"`
}

func (b CreateAnnouncementBody) toRequest() announcement.CreateRequest {
	return announcement.CreateRequest{
		Title:           b.Title,
		Description:     b.Description,
		Type:            b.Type,
		Level:           b.Level,
		Location:        b.Location,
		Date:            b.Date,
		Time:            b.Time,
		MaxParticipants: b.MaxParticipants,
		Price:           b.Price,
		Contact:         b.Contact,
	}
}

type UpdateAnnouncementBody struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Type            *string `json:"type"`
	Level           *string `json:"level"`
	Location        *string `json:"location"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	MaxParticipants *int    `json:"maxParticipants"`
	Price           *int    `json:"price"`
	Contact         *string `json:"contact"`
}

func (b UpdateAnnouncementBody) toRequest() announcement.UpdateRequest {
	return announcement.UpdateRequest{
		Title:           b.Title,
		Description:     b.Description,
		Type:            b.Type,
		Level:           b.Level,
		Location:        b.Location,
		Date:            b.Date,
		Time:            b.Time,
		MaxParticipants: b.MaxParticipants,
		Price:           b.Price,
		Contact:         b.Contact,
	}
}
