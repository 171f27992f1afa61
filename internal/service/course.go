package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/cloudly/miniapp/internal/markdown"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/pagination"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/storage"
)

type LessonSummary struct {
	*model.Lesson
	Completed bool `json:"completed"`
}

type CourseDetail struct {
	Course     *model.Course         `json:"course"`
	Lessons    []LessonSummary       `json:"lessons"`
	Progress   *model.CourseProgress `json:"progress"`
	Percentage float64               `json:"completion_percentage"`
}

// LessonPage is one page of a lesson with its blocks rendered to HTML.
type LessonPage struct {
	Lesson       *model.Lesson        `json:"lesson"`
	Blocks       []model.ContentBlock `json:"blocks"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	Completed    bool                 `json:"completed"`
	NextLessonID *string              `json:"next_lesson_id"`
}

type CourseService struct {
	courseRepository repository.CourseRepository
	progressService  *ProgressService
	storage          storage.Storage
	parser           *markdown.Parser
	pageBudget       int
}

// NewCourseService creates the course service. store may be nil when object
// storage is not configured; image URLs are then served as stored.
func NewCourseService(
	courseRepository repository.CourseRepository,
	progressService *ProgressService,
	store storage.Storage,
	parser *markdown.Parser,
) *CourseService {
	return &CourseService{
		courseRepository: courseRepository,
		progressService:  progressService,
		storage:          store,
		parser:           parser,
		pageBudget:       pagination.DefaultBudget,
	}
}

func (s *CourseService) Courses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courseRepository.Courses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	for _, course := range courses {
		course.ImageURL = s.imageURL(course.ImageURL)
	}
	return courses, nil
}

// CourseDetail returns a course with its lessons marked completed for userID.
func (s *CourseService) CourseDetail(ctx context.Context, userID, courseID string) (*CourseDetail, error) {
	course, err := s.courseRepository.ByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	course.ImageURL = s.imageURL(course.ImageURL)

	lessons, err := s.courseRepository.Lessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}

	progress, err := s.progressService.GetOrCreateProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	summaries := lo.Map(lessons, func(lesson *model.Lesson, _ int) LessonSummary {
		lesson.ImageURL = s.imageURL(lesson.ImageURL)
		return LessonSummary{Lesson: lesson, Completed: IsLessonCompleted(progress, lesson.ID)}
	})

	return &CourseDetail{
		Course:     course,
		Lessons:    summaries,
		Progress:   progress,
		Percentage: CompletionPercentage(progress, len(lessons)),
	}, nil
}

// LessonPage returns page of a lesson and remembers it as the user's reading
// position. A page below 1 resumes the stored position.
func (s *CourseService) LessonPage(ctx context.Context, userID, courseID, lessonID string, page int) (*LessonPage, error) {
	lesson, err := s.courseRepository.Lesson(ctx, courseID, lessonID)
	if err != nil {
		return nil, err
	}
	lesson.ImageURL = s.imageURL(lesson.ImageURL)

	stored, err := s.courseRepository.Blocks(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content blocks: %w", err)
	}
	blocks := lo.FromSlicePtr(stored)

	progress, err := s.progressService.GetOrCreateProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
		if progress.CurrentLessonID != nil && *progress.CurrentLessonID == lessonID {
			page = progress.CurrentPage
		}
	}

	pageBlocks, page, total := pagination.Page(blocks, s.pageBudget, page)
	for i := range pageBlocks {
		pageBlocks[i].HTML, err = s.parser.RenderBlock(pageBlocks[i])
		if err != nil {
			return nil, fmt.Errorf("failed to render block %s: %w", pageBlocks[i].ID, err)
		}
	}

	if total > 0 {
		updated, err := s.progressService.SetPage(ctx, userID, courseID, lessonID, page, total)
		if err != nil {
			slog.Warn("failed to save reading position", "error", err, "user_id", userID, "lesson_id", lessonID)
		} else {
			progress = updated
		}
	}

	lessons, err := s.courseRepository.Lessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}

	result := &LessonPage{
		Lesson:     lesson,
		Blocks:     lo.Ternary(pageBlocks == nil, []model.ContentBlock{}, pageBlocks),
		Page:       max(page, 1),
		TotalPages: total,
		Completed:  IsLessonCompleted(progress, lessonID),
	}
	if next := nextLesson(lessons, lessonID); next != nil {
		result.NextLessonID = &next.ID
	}
	return result, nil
}

// UploadImage stores a new cover image for a course and points the course at it.
func (s *CourseService) UploadImage(ctx context.Context, courseID string, body io.Reader, contentType, filename string) (*model.Course, error) {
	if s.storage == nil {
		return nil, storage.ErrNotConfigured
	}

	_, err := s.courseRepository.ByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	key := path.Join("courses", courseID, uuid.New().String()+strings.ToLower(path.Ext(filename)))
	err = s.storage.Save(ctx, key, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	err = s.courseRepository.UpdateImage(ctx, courseID, key)
	if err != nil {
		delErr := s.storage.Delete(ctx, key)
		if delErr != nil {
			slog.Error("failed to delete image from storage during cleanup", "error", delErr, "key", key)
		}
		return nil, fmt.Errorf("failed to update course image: %w", err)
	}

	course, err := s.courseRepository.ByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	course.ImageURL = s.imageURL(course.ImageURL)
	return course, nil
}

// imageURL turns a stored object key into a URL. Absolute URLs and paths are
// returned unchanged.
func (s *CourseService) imageURL(stored string) string {
	if stored == "" || s.storage == nil || strings.Contains(stored, "://") || strings.HasPrefix(stored, "/") {
		return stored
	}
	return s.storage.URL(stored)
}
