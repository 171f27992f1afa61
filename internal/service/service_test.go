package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cloudly/miniapp/internal/markdown"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/telegram"
	"github.com/cloudly/miniapp/internal/testutil"
)

const testBotToken = "123456:TEST-TOKEN"

var ctx = context.Background()

// testEnv wires every service to one temporary database and a shared clock.
type testEnv struct {
	now time.Time

	users      repository.UserRepository
	journals   repository.JournalRepository
	courses    repository.CourseRepository
	progresses repository.ProgressRepository
	activities repository.ActivityRepository

	activity *ActivityService
	user     *UserService
	auth     *AuthService
	progress *ProgressService
	course   *CourseService
	catalog  *CatalogService
	journal  *JournalService
	cbt      *CBTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := testutil.NewDB(t)
	env := &testEnv{
		now:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		users:      repository.NewUserRepository(database),
		journals:   repository.NewJournalRepository(database),
		courses:    repository.NewCourseRepository(database),
		progresses: repository.NewProgressRepository(database),
		activities: repository.NewActivityRepository(database),
	}
	clock := func() time.Time { return env.now }
	parser := markdown.NewParser()

	env.activity = NewActivityService(env.activities)
	env.activity.now = clock
	env.user = NewUserService(env.users, env.activity)
	env.user.now = clock
	env.auth = NewAuthService(env.user, testBotToken, time.Hour, "test-secret", 24*time.Hour, false)
	env.auth.now = clock
	env.progress = NewProgressService(env.progresses, env.courses)
	env.progress.now = clock
	env.course = NewCourseService(env.courses, env.progress, nil, parser)
	env.catalog = NewCatalogService(env.courses, parser)
	env.catalog.now = clock
	env.journal = NewJournalService(env.journals, env.users, env.activity)
	env.journal.now = clock
	env.cbt = NewCBTService(repository.NewCBTRepository(database))
	env.cbt.now = clock

	return env
}

// at moves the shared clock to 09:00 UTC on the given day.
func (e *testEnv) at(year int, month time.Month, day int) {
	e.now = time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
}

func (e *testEnv) register(t *testing.T, telegramID int64) *model.User {
	t.Helper()
	user, err := e.user.RecordVisit(ctx, &telegram.UserIdentity{ID: telegramID, FirstName: "Ada"})
	require.NoError(t, err)
	return user
}

// seedCourse creates a course with n lessons of two short paragraphs each.
func (e *testEnv) seedCourse(t *testing.T, title string, n int) (*model.Course, []*model.Lesson) {
	t.Helper()

	course := &model.Course{ID: title + "-id", Title: title, CreatedAt: e.now, UpdatedAt: e.now}
	require.NoError(t, e.courses.Create(ctx, course))

	for i := 1; i <= n; i++ {
		lesson := &model.Lesson{
			ID:              course.ID + "-lesson-" + string(rune('0'+i)),
			CourseID:        course.ID,
			Title:           "Lesson",
			DurationMinutes: 5,
			Order:           i,
			CreatedAt:       e.now,
			UpdatedAt:       e.now,
		}
		blocks := []*model.ContentBlock{
			{ID: lesson.ID + "-b1", BlockType: model.BlockTypeHeading, Content: "Heading", Order: 1},
			{ID: lesson.ID + "-b2", BlockType: model.BlockTypeParagraph, Content: "First **paragraph**.", Order: 2},
		}
		require.NoError(t, e.courses.CreateLesson(ctx, lesson, blocks))
	}

	lessons, err := e.courses.Lessons(ctx, course.ID)
	require.NoError(t, err)
	return course, lessons
}
