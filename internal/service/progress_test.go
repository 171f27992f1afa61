package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
)

func TestProgressService_GetOrCreateProgress(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, lessons := env.seedCourse(t, "course", 3)

	progress, err := env.progress.GetOrCreateProgress(ctx, user.ID, course.ID)
	require.NoError(t, err)
	require.NotNil(t, progress.CurrentLessonID)
	assert.Equal(t, lessons[0].ID, *progress.CurrentLessonID)
	assert.Equal(t, 1, progress.CurrentPage)
	assert.Zero(t, progress.CompletedLessons.Len())

	again, err := env.progress.GetOrCreateProgress(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.ID, again.ID)
}

func TestProgressService_GetOrCreateProgress_EmptyCourse(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, _ := env.seedCourse(t, "empty", 0)

	progress, err := env.progress.GetOrCreateProgress(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Nil(t, progress.CurrentLessonID)
}

func TestProgressService_MarkLessonCompleted(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, lessons := env.seedCourse(t, "course", 3)

	progress, err := env.progress.MarkLessonCompleted(ctx, user.ID, course.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{lessons[0].ID}, progress.CompletedLessons.IDs())
	assert.Equal(t, lessons[1].ID, *progress.CurrentLessonID)
	assert.Equal(t, 1, progress.CurrentPage)

	again, err := env.progress.MarkLessonCompleted(ctx, user.ID, course.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, progress.CompletedLessons.IDs(), again.CompletedLessons.IDs())

	last, err := env.progress.MarkLessonCompleted(ctx, user.ID, course.ID, lessons[2].ID)
	require.NoError(t, err)
	assert.Equal(t, lessons[2].ID, *last.CurrentLessonID, "last lesson has no successor")
	assert.True(t, IsLessonCompleted(last, lessons[2].ID))
	assert.False(t, IsLessonCompleted(last, lessons[1].ID))

	stored, err := env.progresses.ByUserAndCourse(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CompletedLessons.Len())
}

func TestProgressService_MarkLessonCompleted_UnknownLesson(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, _ := env.seedCourse(t, "course", 1)
	other, otherLessons := env.seedCourse(t, "other", 1)
	require.NotEqual(t, course.ID, other.ID)

	_, err := env.progress.MarkLessonCompleted(ctx, user.ID, course.ID, otherLessons[0].ID)
	assert.ErrorIs(t, err, repository.ErrLessonNotFound)
}

func TestProgressService_MarkLessonCompleted_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, lessons := env.seedCourse(t, "course", 4)

	var wg sync.WaitGroup
	for _, lesson := range lessons {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Losing both attempts is allowed; the set must never lose an id it reported.
			_, _ = env.progress.MarkLessonCompleted(ctx, user.ID, course.ID, lesson.ID)
		}()
	}
	wg.Wait()

	stored, err := env.progresses.ByUserAndCourse(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, stored.CompletedLessons.Len(), len(lessons))
	assert.GreaterOrEqual(t, stored.CompletedLessons.Len(), 1)
}

func TestProgressService_SetPage(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, lessons := env.seedCourse(t, "course", 2)

	tests := []struct {
		page, total, want int
	}{
		{0, 3, 1},
		{2, 3, 2},
		{9, 3, 3},
		{5, 0, 1},
	}
	for _, tt := range tests {
		progress, err := env.progress.SetPage(ctx, user.ID, course.ID, lessons[1].ID, tt.page, tt.total)
		require.NoError(t, err)
		assert.Equal(t, tt.want, progress.CurrentPage, "page %d of %d", tt.page, tt.total)
		assert.Equal(t, lessons[1].ID, *progress.CurrentLessonID)
	}
}

func TestCompletionPercentage(t *testing.T) {
	progress := &model.CourseProgress{CompletedLessons: model.NewLessonSet("a", "b")}

	assert.Zero(t, CompletionPercentage(progress, 0))
	assert.Zero(t, CompletionPercentage(nil, 4))
	assert.InDelta(t, 50.0, CompletionPercentage(progress, 4), 1e-9)
	assert.InDelta(t, 100.0, CompletionPercentage(progress, 2), 1e-9)
	assert.InDelta(t, 100.0, CompletionPercentage(progress, 1), 1e-9)
}

// conflictingProgress fails the first n updates with a version conflict.
type conflictingProgress struct {
	repository.ProgressRepository
	failures int
	calls    int
}

func (c *conflictingProgress) Update(ctx context.Context, progress *model.CourseProgress) error {
	c.calls++
	if c.calls <= c.failures {
		return repository.ErrVersionConflict
	}
	return c.ProgressRepository.Update(ctx, progress)
}

func TestProgressService_RetriesOnce(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 1)
	course, lessons := env.seedCourse(t, "course", 2)

	flaky := &conflictingProgress{ProgressRepository: env.progresses, failures: 1}
	svc := NewProgressService(flaky, env.courses)

	progress, err := svc.MarkLessonCompleted(ctx, user.ID, course.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.True(t, IsLessonCompleted(progress, lessons[0].ID))
	assert.Equal(t, 2, flaky.calls)

	flaky.calls, flaky.failures = 0, 2
	_, err = svc.MarkLessonCompleted(ctx, user.ID, course.ID, lessons[1].ID)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	assert.Equal(t, 2, flaky.calls)
}
