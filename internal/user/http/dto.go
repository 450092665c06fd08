package http

import (
	"strings"
	"time"

	"github.com/nekogravitycat/badmatch-backend/internal/file"
	"github.com/nekogravitycat/badmatch-backend/internal/user"
)

// RegisterRequest is the payload for POST /v1/auth/register.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateMeRequest is the payload for PATCH /v1/me. Field rules are checked by the service
// so every violation is reported together.
type UpdateMeRequest struct {
	DisplayName  *string `json:"displayName"`
	Level        *string `json:"level"`
	Ranking      *string `json:"ranking"`
	Age          *int    `json:"age"`
	City         *string `json:"city"`
	Location     *string `json:"location"`
	Bio          *string `json:"bio"`
	Phone        *string `json:"phone"`
	Availability *string `json:"availability"`
}

func (r UpdateMeRequest) toRequest() user.UpdateProfileRequest {
	return user.UpdateProfileRequest{
		DisplayName:  r.DisplayName,
		Level:        r.Level,
		Ranking:      r.Ranking,
		Age:          r.Age,
		City:         r.City,
		Location:     r.Location,
		Bio:          r.Bio,
		Phone:        r.Phone,
		Availability: r.Availability,
	}
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	DisplayName        *string    `json:"displayName"`
	Level              *string    `json:"level"`
	Ranking            *string    `json:"ranking"`
	Age                *int       `json:"age"`
	City               *string    `json:"city"`
	Location           *string    `json:"location"`
	Bio                *string    `json:"bio"`
	Phone              *string    `json:"phone"`
	Availability       *string    `json:"availability"`
	AvatarURL          *string    `json:"avatarUrl"`
	AvatarThumbnailURL *string    `json:"avatarThumbnailUrl"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastLoginAt        *time.Time `json:"lastLoginAt"`
}

// UserTag is the public card of a player: no email, phone or age.
type UserTag struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Level     *string `json:"level"`
	Ranking   *string `json:"ranking"`
	City      *string `json:"city"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
}

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresIn   int          `json:"expiresIn"` // seconds
	User        UserResponse `json:"user"`
}

func NewUserResponse(u *user.User) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		Level:        u.Level,
		Ranking:      u.Ranking,
		Age:          u.Age,
		City:         u.City,
		Location:     u.Location,
		Bio:          u.Bio,
		Phone:        u.Phone,
		Availability: u.Availability,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
	}
	if u.AvatarFileID != nil {
		url, thumb := file.FileURL(*u.AvatarFileID), file.ThumbnailURL(*u.AvatarFileID)
		resp.AvatarURL, resp.AvatarThumbnailURL = &url, &thumb
	}
	return resp
}

// NewUserTag names a user by display name, falling back to the part of the email before "@".
func NewUserTag(u *user.User) UserTag {
	name, _, _ := strings.Cut(u.Email, "@")
	if u.DisplayName != nil {
		name = *u.DisplayName
	}
	tag := UserTag{
		ID:      u.ID,
		Name:    name,
		Level:   u.Level,
		Ranking: u.Ranking,
		City:    u.City,
		Bio:     u.Bio,
	}
	if u.AvatarFileID != nil {
		thumb := file.ThumbnailURL(*u.AvatarFileID)
		tag.AvatarURL = &thumb
	}
	return tag
}
