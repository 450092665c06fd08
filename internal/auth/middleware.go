package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/badmatch-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/response"
)

var (
	errMissingHeader = apperror.New(http.StatusUnauthorized, apperror.KindUnauthenticated, "missing Authorization header")
	errBadHeader     = apperror.New(http.StatusUnauthorized, apperror.KindUnauthenticated, "invalid Authorization header format")
	errBadToken      = apperror.New(http.StatusUnauthorized, apperror.KindUnauthenticated, "invalid or expired token")
)

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, errMissingHeader)
			return
		}

		scheme, tokenStr, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
			abort(c, errBadHeader)
			return
		}

		claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(tokenStr))
		if err != nil {
			abort(c, errBadToken)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
