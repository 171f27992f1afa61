package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cloudly/miniapp/internal/markdown"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
)

const (
	courseFile            = "course.md"
	defaultLessonDuration = 5
)

// CatalogService loads courses from markdown files. Each course lives in
// courses/<slug>/ with a course.md holding its front matter and one file per
// lesson, whose body is split into content blocks.
type CatalogService struct {
	courseRepository repository.CourseRepository
	parser           *markdown.Parser
	now              func() time.Time
}

func NewCatalogService(courseRepository repository.CourseRepository, parser *markdown.Parser) *CatalogService {
	return &CatalogService{
		courseRepository: courseRepository,
		parser:           parser,
		now:              time.Now,
	}
}

// Seed imports every course in fsys whose title is not stored yet and
// returns how many were created.
func (s *CatalogService) Seed(ctx context.Context, fsys fs.FS) (int, error) {
	courseFiles, err := fs.Glob(fsys, path.Join("courses", "*", courseFile))
	if err != nil {
		return 0, err
	}

	created := 0
	for _, file := range courseFiles {
		ok, err := s.seedCourse(ctx, fsys, path.Dir(file))
		if err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", path.Dir(file), err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (s *CatalogService) seedCourse(ctx context.Context, fsys fs.FS, dir string) (bool, error) {
	source, err := fs.ReadFile(fsys, path.Join(dir, courseFile))
	if err != nil {
		return false, err
	}
	doc := s.parser.ParseDocument(source)

	title := metaString(doc.Meta, "title")
	if title == "" {
		return false, fmt.Errorf("%s has no title", courseFile)
	}

	_, err = s.courseRepository.ByTitle(ctx, title)
	if err == nil {
		slog.Debug("course already seeded", "title", title)
		return false, nil
	}
	if !errors.Is(err, repository.ErrCourseNotFound) {
		return false, err
	}

	now := s.now().UTC()
	course := &model.Course{
		ID:          uuid.New().String(),
		Title:       title,
		Description: metaString(doc.Meta, "description"),
		ImageURL:    metaString(doc.Meta, "image_url"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.courseRepository.Create(ctx, course)
	if err != nil {
		return false, err
	}

	lessonFiles, err := fs.Glob(fsys, path.Join(dir, "*.md"))
	if err != nil {
		return false, err
	}
	lessonFiles = slices.DeleteFunc(lessonFiles, func(f string) bool { return path.Base(f) == courseFile })
	slices.Sort(lessonFiles)

	for i, file := range lessonFiles {
		err := s.seedLesson(ctx, fsys, course.ID, file, i+1, now)
		if err != nil {
			return false, fmt.Errorf("lesson %s: %w", path.Base(file), err)
		}
	}

	slog.Info("course seeded", "title", title, "lessons", len(lessonFiles))
	return true, nil
}

func (s *CatalogService) seedLesson(ctx context.Context, fsys fs.FS, courseID, file string, position int, now time.Time) error {
	source, err := fs.ReadFile(fsys, file)
	if err != nil {
		return err
	}
	doc := s.parser.ParseDocument(source)

	lesson := &model.Lesson{
		ID:              uuid.New().String(),
		CourseID:        courseID,
		Title:           metaString(doc.Meta, "title"),
		Description:     metaString(doc.Meta, "description"),
		ImageURL:        metaString(doc.Meta, "image_url"),
		DurationMinutes: metaInt(doc.Meta, "duration_minutes", defaultLessonDuration),
		Order:           metaInt(doc.Meta, "order", position),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if lesson.Title == "" {
		return errors.New("missing title")
	}

	blocks := make([]*model.ContentBlock, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		block.ID = uuid.New().String()
		block.LessonID = lesson.ID
		blocks = append(blocks, &block)
	}

	return s.courseRepository.CreateLesson(ctx, lesson, blocks)
}

func metaString(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func metaInt(meta map[string]any, key string, fallback int) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
