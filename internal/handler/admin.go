package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cloudly/miniapp/internal/service"
	"github.com/cloudly/miniapp/internal/validation"
	"github.com/cloudly/miniapp/internal/web"
)

const (
	defaultUsersPage = 50
	maxUsersPage     = 200
)

type AdminHandler struct {
	userService   *service.UserService
	courseService *service.CourseService
}

func NewAdminHandler(userService *service.UserService, courseService *service.CourseService) *AdminHandler {
	return &AdminHandler{
		userService:   userService,
		courseService: courseService,
	}
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultUsersPage)
	if err != nil {
		respondError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if limit == 0 {
		limit = defaultUsersPage
	}
	limit = min(limit, maxUsersPage)

	users, total, err := h.userService.Users(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// UploadCourseImage stores a multipart "image" file as the course cover.
func (h *AdminHandler) UploadCourseImage(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	maxSize := validation.ImageConstraints.MaxSize

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+(1<<20))
	err := r.ParseMultipartForm(maxSize)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: failed to parse form", web.ErrBadRequest))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, r, &validation.FieldError{Field: "image", Message: "is required"})
		return
	}
	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close file", "error", closeErr)
		}
	}()

	contentType, err := validation.ValidateFile("image", header, validation.ImageConstraints)
	if err != nil {
		respondError(w, r, err)
		return
	}

	course, err := h.courseService.UploadImage(r.Context(), courseID, file, contentType, header.Filename)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("course image uploaded", "course_id", courseID, "size", header.Size)
	web.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "course": course})
}
