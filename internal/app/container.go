package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/badmatch-backend/internal/announcement"
	"github.com/nekogravitycat/badmatch-backend/internal/api"
	"github.com/nekogravitycat/badmatch-backend/internal/auth"
	"github.com/nekogravitycat/badmatch-backend/internal/file"
	"github.com/nekogravitycat/badmatch-backend/internal/metrics"
	"github.com/nekogravitycat/badmatch-backend/internal/pkg/storage"
	"github.com/nekogravitycat/badmatch-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	// DBPool selects the PostgreSQL repositories; nil keeps everything in process memory.
	DBPool *pgxpool.Pool
	// Storage holds uploaded pictures; nil keeps them in process memory.
	Storage    storage.Storage
	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int
	// Location decides what "today" means when validating announcement dates.
	Location *time.Location
	// Clock defaults to time.Now.
	Clock announcement.Clock
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	JWTManager  *auth.JWTManager
	Metrics     *metrics.Metrics
	UserService user.Service
	AnnService  announcement.Service
	FileService file.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	m := metrics.New()

	// Storage
	var (
		userRepo user.Repository
		annRepo  announcement.Repository
		fileRepo file.Repository
	)
	if cfg.DBPool != nil {
		userRepo = user.NewPgxRepository(cfg.DBPool)
		annRepo = announcement.NewPgxRepository(cfg.DBPool)
		fileRepo = file.NewPgxRepository(cfg.DBPool)
	} else {
		userRepo = user.NewMemoryRepository()
		annRepo = announcement.NewMemoryRepository()
		fileRepo = file.NewMemoryRepository()
	}
	blobs := cfg.Storage
	if blobs == nil {
		blobs = storage.NewMemoryStorage()
	}

	// File Module
	fileService := file.NewService(fileRepo, blobs)

	// User Module
	userService := user.NewService(userRepo, passwordHasher)

	// Announcement Module
	annStore := announcement.NewStore(annRepo, clock, cfg.Location)
	participation := announcement.NewParticipation(annRepo, clock)
	annService := announcement.NewService(annStore, participation, m)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		UserService:  userService,
		AnnService:   annService,
		FileService:  fileService,
		JWTManager:   jwtManager,
		Metrics:      m,
	})

	return &Container{
		Router:      router,
		JWTManager:  jwtManager,
		Metrics:     m,
		UserService: userService,
		AnnService:  annService,
		FileService: fileService,
	}
}
