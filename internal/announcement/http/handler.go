package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/badmatch-backend/internal/announcement"
	"github.com/nekogravitycat/badmatch-backend/internal/auth"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/request"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/response"
)

type Handler struct {
	service announcement.Service
}

func NewHandler(service announcement.Service) *Handler {
	return &Handler{service: service}
}

// List searches the directory. Query keys it does not know are ignored.
func (h *Handler) List(c *gin.Context) {
	var req ListAnnouncementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	filter, err := announcement.ParseFilter(queryValues(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	h.search(c, filter, req)
}

// ListOrganized lists the announcements the current user organizes.
func (h *Handler) ListOrganized(c *gin.Context) {
	var req ListAnnouncementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	h.search(c, announcement.Filter{OrganizerID: auth.GetUserID(c)}, req)
}

// ListJoined lists the announcements the current user joined as a guest.
func (h *Handler) ListJoined(c *gin.Context) {
	var req ListAnnouncementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	h.search(c, announcement.Filter{ParticipantID: auth.GetUserID(c)}, req)
}

func (h *Handler) search(c *gin.Context, filter announcement.Filter, req ListAnnouncementsRequest) {
	page := req.page()

	list, total, err := h.service.Search(c.Request.Context(), filter, req.sort(), page)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]AnnouncementSummary, len(list))
	for i, a := range list {
		items[i] = NewAnnouncementSummary(a)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, page.Number, page.Size, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, err)
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAnnouncementResponse(a))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateAnnouncementBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	a, err := h.service.Create(c.Request.Context(), body.toRequest(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewAnnouncementResponse(a))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	var body UpdateAnnouncementBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	a, err := h.service.Update(c.Request.Context(), uri.ID, body.toRequest(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAnnouncementResponse(a))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Join(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, err)
		return
	}

	a, err := h.service.Join(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAnnouncementResponse(a))
}

func (h *Handler) Leave(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, err)
		return
	}

	a, err := h.service.Leave(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAnnouncementResponse(a))
}

// queryValues flattens the query string, keeping the first value of each key.
func queryValues(c *gin.Context) map[string]string {
	query := c.Request.URL.Query()
	values := make(map[string]string, len(query))
	for key, v := range query {
		if len(v) > 0 {
			values[key] = v[0]
		}
	}
	return values
}
