package app

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	annHttp "github.com/nekogravitycat/badmatch-backend/internal/announcement/http"
	fileHttp "github.com/nekogravitycat/badmatch-backend/internal/file/http"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/response"
	userHttp "github.com/nekogravitycat/badmatch-backend/internal/user/http"
)

type testApp struct {
	t      *testing.T
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewContainer(Config{
		JWTSecret:  "test-secret",
		JWTTTL:     time.Hour,
		BcryptCost: bcrypt.MinCost,
		Location:   time.UTC,
		Clock:      func() time.Time { return now },
	})
	return &testApp{t: t, router: c.Router}
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers a player and returns its id and access token.
func (a *testApp) signup(email string) (string, string) {
	a.t.Helper()

	w := a.do(http.MethodPost, "/v1/auth/register", map[string]string{
		"email": email, "password": "password123", "displayName": email,
	}, "")
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/auth/login", map[string]string{
		"email": email, "password": "password123",
	}, "")
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	login := decode[userHttp.LoginResponse](a.t, w)
	return login.User.ID, login.AccessToken
}

func announcementBody(capacity int) map[string]any {
	return map[string]any{
		"title":           "Double du samedi",
		"description":     "Recherche partenaires pour un double convivial au gymnase, raquettes disponibles sur place si besoin.",
		"type":            "Double",
		"level":           "debutant",
		"location":        "Gymnase d'Évry",
		"date":            "2026-06-15",
		"time":            "10:00",
		"maxParticipants": capacity,
		"price":           4,
		"contact":         "orga@example.com",
	}
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[response.ErrorResponse](t, w).Error
}

func TestDirectoryFlow(t *testing.T) {
	app := newTestApp(t)
	aliceID, alice := app.signup("alice@example.com")
	bobID, bob := app.signup("bob@example.com")
	_, carol := app.signup("carol@example.com")

	w := app.do(http.MethodPost, "/v1/announcements", announcementBody(2), "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", errorKind(t, w))

	w = app.do(http.MethodPost, "/v1/announcements", announcementBody(2), alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[annHttp.AnnouncementResponse](t, w)
	assert.Equal(t, aliceID, created.OrganizerID)
	assert.Equal(t, 1, created.CurrentParticipants)
	assert.Equal(t, "Débutant", created.Level)
	assert.Equal(t, "active", created.Status)
	path := "/v1/announcements/" + created.ID

	// Public search, with an unknown key that must be ignored.
	w = app.do(http.MethodGet, "/v1/announcements?level=debutant&location=EVRY&color=blue&max_price=4", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[response.PageResponse[annHttp.AnnouncementSummary]](t, w)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
	assert.Len(t, []rune(page.Items[0].Excerpt), 103)

	w = app.do(http.MethodGet, "/v1/announcements?max_price=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[response.PageResponse[annHttp.AnnouncementSummary]](t, w).Total)

	// Join and leave.
	w = app.do(http.MethodPost, path+"/join", nil, bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	joined := decode[annHttp.AnnouncementResponse](t, w)
	assert.Equal(t, 2, joined.CurrentParticipants)
	assert.Equal(t, []string{aliceID, bobID}, joined.Participants)
	assert.Equal(t, "full", joined.Status)

	w = app.do(http.MethodPost, path+"/join", nil, carol)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "capacity_exceeded", errorKind(t, w))

	w = app.do(http.MethodPost, path+"/join", nil, bob)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_joined", errorKind(t, w))

	w = app.do(http.MethodPost, path+"/leave", nil, alice)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "organizer_cannot_leave", errorKind(t, w))

	w = app.do(http.MethodGet, "/v1/me/participations", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[response.PageResponse[annHttp.AnnouncementSummary]](t, w).Total)

	w = app.do(http.MethodGet, "/v1/me/participations", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[response.PageResponse[annHttp.AnnouncementSummary]](t, w).Total)

	w = app.do(http.MethodGet, "/v1/me/announcements", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[response.PageResponse[annHttp.AnnouncementSummary]](t, w).Total)

	w = app.do(http.MethodPost, path+"/leave", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[annHttp.AnnouncementResponse](t, w).CurrentParticipants)

	w = app.do(http.MethodPost, path+"/leave", nil, bob)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "not_a_participant", errorKind(t, w))

	w = app.do(http.MethodPost, path+"/join", nil, carol)
	require.Equal(t, http.StatusOK, w.Code)

	// Organizer-only edits.
	w = app.do(http.MethodPatch, path, map[string]any{"title": "Hijacked"}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "authorization_error", errorKind(t, w))

	w = app.do(http.MethodPut, path, map[string]any{"title": "Double du dimanche"}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[annHttp.AnnouncementResponse](t, w)
	assert.Equal(t, "Double du dimanche", updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	w = app.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Double du dimanche", decode[annHttp.AnnouncementResponse](t, w).Title)

	// Delete twice.
	w = app.do(http.MethodDelete, path, nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodDelete, path, nil, alice)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.do(http.MethodDelete, path, nil, alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorKind(t, w))
}

func TestCreateReportsEveryInvalidField(t *testing.T) {
	app := newTestApp(t)
	_, alice := app.signup("alice@example.com")

	body := announcementBody(1)
	body["title"] = ""
	body["date"] = "2000-01-01"

	w := app.do(http.MethodPost, "/v1/announcements", body, alice)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[response.ErrorResponse](t, w)
	assert.Equal(t, "validation_error", resp.Error)

	fields := make(map[string]bool)
	for _, f := range resp.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["maxParticipants"])
	assert.True(t, fields["date"])
}

func TestSearchRejectsMalformedFilter(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/v1/announcements?maxPrice=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", errorKind(t, w))

	w = app.do(http.MethodGet, "/v1/announcements?sort_by=popularity", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchClampsOversizedPage(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/v1/announcements?page_size=100", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 50, decode[response.PageResponse[annHttp.AnnouncementSummary]](t, w).PageSize)

	w = app.do(http.MethodGet, "/v1/announcements?page_size=0", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 12, decode[response.PageResponse[annHttp.AnnouncementSummary]](t, w).PageSize)
}

func TestGetWithMalformedID(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/v1/announcements/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodGet, "/v1/announcements/0190a1b2-0000-7000-8000-000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfile(t *testing.T) {
	app := newTestApp(t)
	id, token := app.signup("dana@example.com")

	w := app.do(http.MethodPatch, "/v1/me", map[string]any{"level": "avance", "displayName": "Dana"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(http.MethodGet, "/v1/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[userHttp.UserResponse](t, w)
	assert.Equal(t, id, me.ID)
	require.NotNil(t, me.Level)
	assert.Equal(t, "Avancé", *me.Level)

	w = app.do(http.MethodGet, "/v1/users/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dana", decode[userHttp.UserTag](t, w).Name)

	w = app.do(http.MethodPost, "/v1/auth/register", map[string]string{
		"email": "dana@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	app.do(http.MethodGet, "/v1/announcements", nil, "")

	w = app.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `badmatch_directory_operations_total{operation="search",outcome="ok"} 1`)
}

func (a *testApp) upload(path, field, filename string, content []byte, token string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile(field, filename)
	require.NoError(a.t, err)
	_, err = part.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, form.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, x%h, color.RGBA{G: 180, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAvatar(t *testing.T) {
	app := newTestApp(t)
	id, token := app.signup("hugo@example.com")

	w := app.upload("/v1/me/avatar", "avatar", "hugo.png", pngBytes(t, 400, 300), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[fileHttp.FileUploadResponse](t, w)
	require.NotNil(t, first.ThumbnailURL)

	w = app.do(http.MethodGet, "/v1/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[userHttp.UserResponse](t, w)
	require.NotNil(t, me.AvatarURL)
	assert.Equal(t, first.URL, *me.AvatarURL)

	// Pictures are public, thumbnails are square JPEGs.
	w = app.do(http.MethodGet, *first.ThumbnailURL, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	thumb, _, err := image.Decode(w.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 200), thumb.Bounds().Size())

	w = app.do(http.MethodGet, "/v1/users/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	tag := decode[userHttp.UserTag](t, w)
	require.NotNil(t, tag.AvatarURL)
	assert.Equal(t, *first.ThumbnailURL, *tag.AvatarURL)

	// Replacing the picture deletes the old one.
	w = app.upload("/v1/me/avatar", "avatar", "hugo2.png", pngBytes(t, 64, 64), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[fileHttp.FileUploadResponse](t, w)
	assert.NotEqual(t, first.FileID, second.FileID)

	w = app.do(http.MethodGet, first.URL, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = app.do(http.MethodGet, second.URL, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodDelete, "/v1/me/avatar", nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = app.do(http.MethodGet, second.URL, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/v1/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[userHttp.UserResponse](t, w).AvatarURL)
}

func TestAvatarRejections(t *testing.T) {
	app := newTestApp(t)
	_, token := app.signup("ines@example.com")

	w := app.upload("/v1/me/avatar", "avatar", "notes.txt", []byte("not a picture at all"), token)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = app.upload("/v1/me/avatar", "photo", "me.png", pngBytes(t, 10, 10), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	oversized := append(pngBytes(t, 10, 10), bytes.Repeat([]byte{0}, 5<<20)...)
	w = app.upload("/v1/me/avatar", "avatar", "big.png", oversized, token)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = app.do(http.MethodPut, "/v1/me/avatar", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileFields(t *testing.T) {
	app := newTestApp(t)
	id, token := app.signup("jade@example.com")

	w := app.do(http.MethodPatch, "/v1/me", map[string]any{
		"age":          12,
		"ranking":      "Z9",
		"bio":          "Joueuse de simple",
		"availability": "Week-ends",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[response.ErrorResponse](t, w)
	fields := make(map[string]bool)
	for _, f := range resp.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["age"])
	assert.True(t, fields["ranking"])
	assert.False(t, fields["bio"])

	w = app.do(http.MethodPatch, "/v1/me", map[string]any{
		"age":          29,
		"ranking":      "p10",
		"city":         "Évry",
		"bio":          "Joueuse de simple",
		"availability": "Week-ends",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decode[userHttp.UserResponse](t, w)
	assert.Equal(t, 29, *me.Age)
	assert.Equal(t, "P10", *me.Ranking)
	assert.Equal(t, "Week-ends", *me.Availability)

	w = app.do(http.MethodGet, "/v1/users/"+id, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	tag := decode[userHttp.UserTag](t, w)
	assert.Equal(t, "Évry", *tag.City)
	assert.Equal(t, "P10", *tag.Ranking)
}
