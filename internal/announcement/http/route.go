package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/announcements")

	// === Public Routes ===
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}

	// === Authenticated Routes ===
	authGroup := group.Group("")
	authGroup.Use(authMiddleware)
	{
		authGroup.POST("", h.Create)
		authGroup.PUT("/:id", h.Update)
		authGroup.PATCH("/:id", h.Update)
		authGroup.DELETE("/:id", h.Delete)
		authGroup.POST("/:id/join", h.Join)
		authGroup.POST("/:id/leave", h.Leave)
	}

	// === Current User ===
	me := g.Group("/me")
	me.Use(authMiddleware)
	{
		me.GET("/announcements", h.ListOrganized)
		me.GET("/participations", h.ListJoined)
	}
}
