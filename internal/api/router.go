package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/badmatch-backend/internal/announcement"
	annHttp "github.com/nekogravitycat/badmatch-backend/internal/announcement/http"
	"github.com/nekogravitycat/badmatch-backend/internal/auth"
	"github.com/nekogravitycat/badmatch-backend/internal/file"
	fileHttp "github.com/nekogravitycat/badmatch-backend/internal/file/http"
	"github.com/nekogravitycat/badmatch-backend/internal/metrics"
	"github.com/nekogravitycat/badmatch-backend/internal/user"
	userHttp "github.com/nekogravitycat/badmatch-backend/internal/user/http"
)

// Config holds everything the router needs to register module routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService user.Service
	AnnService  announcement.Service
	FileService file.Service
	JWTManager  *auth.JWTManager
	Metrics     *metrics.Metrics
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Metrics, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(cors.New(corsConfig(cfg)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	userHandler := userHttp.NewUserHandler(cfg.UserService, cfg.JWTManager, cfg.FileService)
	annHandler := annHttp.NewHandler(cfg.AnnService)
	fileHandler := fileHttp.NewHandler(cfg.FileService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		annHttp.RegisterRoutes(v1, annHandler, authMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler)
	}

	return r
}

func corsConfig(cfg Config) cors.Config {
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		config.AllowOrigins = []string{
			"http://localhost:5173", // Vite dev server
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	return config
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
