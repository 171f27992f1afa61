package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/cloudly/miniapp/internal/config"
	"github.com/cloudly/miniapp/internal/db"
	"github.com/cloudly/miniapp/internal/llm"
	"github.com/cloudly/miniapp/internal/markdown"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Provider        llm.Provider
	UserRepository  repository.UserRepository
	AuthService     *service.AuthService
	UserService     *service.UserService
	ActivityService *service.ActivityService
	CourseService   *service.CourseService
	CatalogService  *service.CatalogService
	ProgressService *service.ProgressService
	JournalService  *service.JournalService
	AnalysisService *service.AnalysisService
	CBTService      *service.CBTService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	journalRepository := repository.NewJournalRepository(database)
	courseRepository := repository.NewCourseRepository(database)
	progressRepository := repository.NewProgressRepository(database)
	activityRepository := repository.NewActivityRepository(database)
	cbtRepository := repository.NewCBTRepository(database)

	// Storage is optional: without a bucket, image uploads answer 503
	fileStorage, err := storage.New(ctx, cfg)
	if errors.Is(err, storage.ErrNotConfigured) {
		slog.Info("object storage not configured, course image uploads disabled")
		fileStorage = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	provider, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize language model provider: %v", err)
	}

	// Services
	parser := markdown.NewParser()
	activityService := service.NewActivityService(activityRepository)
	userService := service.NewUserService(userRepository, activityService)
	authService := service.NewAuthService(
		userService,
		cfg.TelegramBotToken,
		cfg.TelegramInitDataMaxAge,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)
	progressService := service.NewProgressService(progressRepository, courseRepository)
	courseService := service.NewCourseService(courseRepository, progressService, fileStorage, parser)
	catalogService := service.NewCatalogService(courseRepository, parser)
	journalService := service.NewJournalService(journalRepository, userRepository, activityService)
	analysisService := service.NewAnalysisService(provider, cfg.LLMTimeout)
	cbtService := service.NewCBTService(cbtRepository)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Provider:        provider,
		UserRepository:  userRepository,
		AuthService:     authService,
		UserService:     userService,
		ActivityService: activityService,
		CourseService:   courseService,
		CatalogService:  catalogService,
		ProgressService: progressService,
		JournalService:  journalService,
		AnalysisService: analysisService,
		CBTService:      cbtService,
	}, nil
}

// SeedCourses imports course files from CONTENT_PATH, or from bundled when
// that directory does not exist.
func (a *App) SeedCourses(ctx context.Context, bundled fs.FS) (int, error) {
	fsys := bundled
	info, err := os.Stat(a.Cfg.ContentPath)
	if err == nil && info.IsDir() {
		fsys = os.DirFS(a.Cfg.ContentPath)
	}

	created, err := a.CatalogService.Seed(ctx, fsys)
	if err != nil {
		return 0, fmt.Errorf("failed to seed courses: %w", err)
	}
	return created, nil
}

func (a *App) Close() error {
	if closer, ok := a.Provider.(interface{ Close() error }); ok {
		err := closer.Close()
		if err != nil {
			slog.Error("failed to close language model provider", "error", err)
		}
	}
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
