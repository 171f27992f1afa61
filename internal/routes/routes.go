package routes

import (
	"net/http"

	"github.com/cloudly/miniapp/internal/app"
	"github.com/cloudly/miniapp/internal/handler"
	"github.com/cloudly/miniapp/internal/metrics"
	"github.com/cloudly/miniapp/internal/middleware"
	"github.com/cloudly/miniapp/internal/web"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	user := handler.NewUserHandler(app.ActivityService)
	course := handler.NewCourseHandler(app.CourseService, app.ProgressService)
	journal := handler.NewJournalHandler(app.JournalService, app.AnalysisService)
	analysis := handler.NewAnalysisHandler(app.AnalysisService)
	cbt := handler.NewCBTHandler(app.CBTService)
	admin := handler.NewAdminHandler(app.UserService, app.CourseService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth(app.Cfg.AuthRateLimit)
	mux.HandleFunc("POST /api/auth/telegram", rateLimiter(auth.TelegramLogin))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	// User
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(user.Me))
	mux.HandleFunc("GET /api/user-progress", middleware.RequireAuth(user.Progress))
	mux.HandleFunc("POST /api/user-progress", middleware.RequireAuth(user.SaveProgress))

	// Courses
	mux.HandleFunc("GET /api/courses", middleware.RequireAuth(course.Courses))
	mux.HandleFunc("GET /api/courses/{id}", middleware.RequireAuth(course.Course))
	mux.HandleFunc("GET /api/courses/{id}/lessons/{lessonID}", middleware.RequireAuth(course.LessonPage))
	mux.HandleFunc("POST /api/courses/{id}/lessons/{lessonID}/complete", middleware.RequireAuth(course.CompleteLesson))

	// Journal
	mux.HandleFunc("GET /api/journal", middleware.RequireAuth(journal.Entry))
	mux.HandleFunc("GET /api/journal/recent", middleware.RequireAuth(journal.Recent))
	mux.HandleFunc("POST /api/journal", middleware.RequireAuth(journal.Save))
	mux.HandleFunc("POST /api/journal/analysis", middleware.RequireAuth(journal.Analysis))

	// Language model assistance
	mux.HandleFunc("POST /api/analyze-response", middleware.RequireAuth(analysis.AnalyzeResponse))
	mux.HandleFunc("POST /api/analyze-emotions", middleware.RequireAuth(analysis.AnalyzeEmotions))

	// CBT worksheets
	mux.HandleFunc("GET /api/cbt-analyses", middleware.RequireAuth(cbt.List))
	mux.HandleFunc("POST /api/cbt-analyses", middleware.RequireAuth(cbt.Create))

	// ============================================================================
	// ADMIN ROUTES (/admin/*)
	// ============================================================================

	requireAdmin := middleware.RequireAdmin(app.Cfg.AdminUsername, app.Cfg.AdminPasswordHash)
	mux.HandleFunc("GET /admin/users", requireAdmin(admin.Users))
	mux.HandleFunc("POST /admin/courses/{id}/image", requireAdmin(admin.UploadCourseImage))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		web.RespondJSONError(w, r, web.ErrNotFound)
	})

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Recover,
		middleware.Config(app.Cfg),
		middleware.AuthMiddleware(app.AuthService),
		middleware.RequestLogging, // Must stay last: reads the matched route pattern
	)

	return handler
}
