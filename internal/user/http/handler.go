package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/badmatch-backend/internal/auth"
	"github.com/nekogravitycat/badmatch-backend/internal/file"
	fileHttp "github.com/nekogravitycat/badmatch-backend/internal/file/http"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/request"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/response"
	"github.com/nekogravitycat/badmatch-backend/internal/user"
)

type UserHandler struct {
	service     user.Service
	jwtManager  *auth.JWTManager
	fileService file.Service
	uploads     *fileHttp.Handler
}

func NewUserHandler(service user.Service, jwtManager *auth.JWTManager, fileService file.Service) *UserHandler {
	return &UserHandler{
		service:     service,
		jwtManager:  jwtManager,
		fileService: fileService,
		uploads:     fileHttp.NewHandler(fileService),
	}
}

// Register handles POST /v1/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.service.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewUserResponse(u))
}

// Login handles POST /v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.jwtManager.TTL().Seconds()),
		User:        NewUserResponse(u),
	})
}

// Me handles GET /v1/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.service.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(u))
}

// UpdateMe handles PATCH /v1/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), auth.GetUserID(c), req.toRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(u))
}

// Get handles GET /v1/users/:id and returns the public tag of a player,
// used by clients to name organizers and participants.
func (h *UserHandler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BindError(c, err)
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserTag(u))
}

// UploadAvatar handles PUT /v1/me/avatar (multipart field "avatar").
// The previous picture is deleted once the new one is referenced.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID := auth.GetUserID(c)

	h.uploads.HandleFileUpload(c, fileHttp.FileUploadConfig{
		FormFieldName: "avatar",
		MaxSizeBytes:  file.MaxImageBytes,
		AllowedTypes:  file.ImageTypes,
		ResizeImage:   true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			previous, err := h.service.SetAvatar(ctx, userID, &fileID)
			if err != nil {
				return err
			}
			h.discardFile(ctx, previous)
			return nil
		},
	})
}

// DeleteAvatar handles DELETE /v1/me/avatar
func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	previous, err := h.service.SetAvatar(c.Request.Context(), auth.GetUserID(c), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.discardFile(c.Request.Context(), previous)

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) discardFile(ctx context.Context, id *string) {
	if id == nil {
		return
	}
	if err := h.fileService.Delete(ctx, *id); err != nil && !errors.Is(err, file.ErrNotFound) {
		log.Printf("failed to delete replaced avatar %s: %v", *id, err)
	}
}
