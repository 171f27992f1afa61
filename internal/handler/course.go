package handler

import (
	"log/slog"
	"net/http"

	"github.com/cloudly/miniapp/internal/ctxkeys"
	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/web"
)

type CourseHandler struct {
	courseService   *service.CourseService
	progressService *service.ProgressService
}

func NewCourseHandler(courseService *service.CourseService, progressService *service.ProgressService) *CourseHandler {
	return &CourseHandler{
		courseService:   courseService,
		progressService: progressService,
	}
}

func (h *CourseHandler) Courses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.Courses(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "courses": courses})
}

func (h *CourseHandler) Course(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	courseID := r.PathValue("id")

	detail, err := h.courseService.CourseDetail(r.Context(), user.ID, courseID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "data": detail})
}

// LessonPage serves one page of a lesson. Without ?page the user's saved
// page is resumed.
func (h *CourseHandler) LessonPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	courseID := r.PathValue("id")
	lessonID := r.PathValue("lessonID")

	page, err := queryInt(r, "page", 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	lessonPage, err := h.courseService.LessonPage(r.Context(), user.ID, courseID, lessonID, page)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "data": lessonPage})
}

func (h *CourseHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	courseID := r.PathValue("id")
	lessonID := r.PathValue("lessonID")

	progress, err := h.progressService.MarkLessonCompleted(r.Context(), user.ID, courseID, lessonID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("lesson completed", "user_id", user.ID, "course_id", courseID, "lesson_id", lessonID)
	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "progress": progress})
}
