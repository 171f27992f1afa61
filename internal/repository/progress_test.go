package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/testutil"
)

func TestProgressRepository(t *testing.T) {
	database := testutil.NewDB(t)
	user := createUser(t, repository.NewUserRepository(database), 1)
	course := createCourse(t, repository.NewCourseRepository(database), "Basics", 0)
	progressRepo := repository.NewProgressRepository(database)

	_, err := progressRepo.ByUserAndCourse(ctx, user.ID, course.ID)
	require.ErrorIs(t, err, repository.ErrProgressNotFound)

	progress := &model.CourseProgress{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		CourseID:         course.ID,
		CurrentPage:      1,
		CompletedLessons: model.NewLessonSet(),
		LastAccessed:     time.Now().UTC(),
	}
	require.NoError(t, progressRepo.Create(ctx, progress))

	dup := *progress
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, progressRepo.Create(ctx, &dup), repository.ErrDuplicateProgress)

	stale, err := progressRepo.ByUserAndCourse(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stale.CompletedLessons.Len())

	progress.CompletedLessons.Add("b")
	progress.CompletedLessons.Add("a")
	progress.CurrentPage = 3
	require.NoError(t, progressRepo.Update(ctx, progress))

	assert.ErrorIs(t, progressRepo.Update(ctx, stale), repository.ErrVersionConflict)

	got, err := progressRepo.ByUserAndCourse(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.CompletedLessons.IDs())
	assert.Equal(t, 3, got.CurrentPage)
	assert.Equal(t, 1, got.Version)

	all, err := progressRepo.ByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProgressRepository_MalformedCompletedLessons(t *testing.T) {
	database := testutil.NewDB(t)
	user := createUser(t, repository.NewUserRepository(database), 1)
	course := createCourse(t, repository.NewCourseRepository(database), "Basics", 0)

	_, err := database.Exec(`INSERT INTO course_progress (id, user_id, course_id, current_page, completed_lessons, last_accessed)
		VALUES ($1, $2, $3, 1, 'not json', $4)`, uuid.New().String(), user.ID, course.ID, time.Now().UTC())
	require.NoError(t, err)

	got, err := repository.NewProgressRepository(database).ByUserAndCourse(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CompletedLessons.Len())
}
