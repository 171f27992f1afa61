package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudly/miniapp/internal/markdown"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/storage"
)

type memoryStorage struct {
	objects map[string]string
}

func (m *memoryStorage) Save(_ context.Context, key string, body io.Reader, _ string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = string(b)
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestCourseService_CourseDetail(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, lessons := env.seedCourse(t, "course", 4)

	_, err := env.progress.MarkLessonCompleted(ctx, user.ID, course.ID, lessons[0].ID)
	require.NoError(t, err)

	detail, err := env.course.CourseDetail(ctx, user.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lessons, 4)
	assert.True(t, detail.Lessons[0].Completed)
	assert.False(t, detail.Lessons[1].Completed)
	assert.InDelta(t, 25.0, detail.Percentage, 1e-9)
	assert.Equal(t, lessons[1].ID, *detail.Progress.CurrentLessonID)

	_, err = env.course.CourseDetail(ctx, user.ID, "missing")
	assert.ErrorIs(t, err, repository.ErrCourseNotFound)
}

func TestCourseService_LessonPage(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course := &model.Course{ID: "c", Title: "Paged", CreatedAt: env.now, UpdatedAt: env.now}
	require.NoError(t, env.courses.Create(ctx, course))

	lesson := &model.Lesson{ID: "l", CourseID: "c", Title: "Long", Order: 1, CreatedAt: env.now, UpdatedAt: env.now}
	require.NoError(t, env.courses.CreateLesson(ctx, lesson, []*model.ContentBlock{
		{ID: "b1", BlockType: model.BlockTypeHeading, Content: strings.Repeat("h", 50), Order: 1},
		{ID: "b2", BlockType: model.BlockTypeParagraph, Content: strings.Repeat("a", 600), Order: 2},
		{ID: "b3", BlockType: model.BlockTypeParagraph, Content: strings.Repeat("b", 400), Order: 3},
	}))

	page, err := env.course.LessonPage(ctx, user.ID, "c", "l", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Blocks, 2)
	assert.Equal(t, "<h3>"+strings.Repeat("h", 50)+"</h3>", page.Blocks[0].HTML)
	assert.Nil(t, page.NextLessonID)

	page, err = env.course.LessonPage(ctx, user.ID, "c", "l", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page, "page is clamped")
	require.Len(t, page.Blocks, 1)
	assert.Equal(t, "b3", page.Blocks[0].ID)
	assert.Equal(t, "<p>"+strings.Repeat("b", 400)+"</p>", page.Blocks[0].HTML)

	page, err = env.course.LessonPage(ctx, user.ID, "c", "l", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page, "resumes stored position")

	_, err = env.course.LessonPage(ctx, user.ID, "c", "nope", 1)
	assert.ErrorIs(t, err, repository.ErrLessonNotFound)
}

func TestCourseService_LessonPage_Empty(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, lessons := env.seedCourse(t, "course", 2)
	require.NoError(t, env.courses.CreateLesson(ctx, &model.Lesson{
		ID: "blank", CourseID: course.ID, Title: "Blank", Order: 3, CreatedAt: env.now, UpdatedAt: env.now,
	}, nil))

	page, err := env.course.LessonPage(ctx, user.ID, course.ID, "blank", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Zero(t, page.TotalPages)
	assert.Empty(t, page.Blocks)

	first, err := env.course.LessonPage(ctx, user.ID, course.ID, lessons[0].ID, 1)
	require.NoError(t, err)
	require.NotNil(t, first.NextLessonID)
	assert.Equal(t, lessons[1].ID, *first.NextLessonID)
}

func TestCourseService_UploadImage(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.seedCourse(t, "course", 1)

	_, err := env.course.UploadImage(ctx, course.ID, strings.NewReader("img"), "image/png", "cover.png")
	assert.ErrorIs(t, err, storage.ErrNotConfigured)

	store := &memoryStorage{objects: map[string]string{}}
	svc := NewCourseService(env.courses, env.progress, store, markdown.NewParser())

	updated, err := svc.UploadImage(ctx, course.ID, strings.NewReader("img"), "image/png", "Cover.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.ImageURL, "https://cdn.example.com/courses/"+course.ID+"/"))
	assert.True(t, strings.HasSuffix(updated.ImageURL, ".png"))
	assert.Len(t, store.objects, 1)

	courses, err := svc.Courses(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURL, courses[0].ImageURL)

	_, err = svc.UploadImage(ctx, "missing", strings.NewReader("img"), "image/png", "x.png")
	assert.ErrorIs(t, err, repository.ErrCourseNotFound)
}
