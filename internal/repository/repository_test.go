package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
)

var ctx = context.Background()

func createUser(t *testing.T, users repository.UserRepository, telegramID int64) *model.User {
	t.Helper()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	user := &model.User{
		ID:             uuid.New().String(),
		TelegramID:     telegramID,
		FirstName:      "Ada",
		VisitStreak:    1,
		LastStreakDate: model.DateOf(now),
		TotalVisits:    1,
		LastVisit:      now,
		CreatedAt:      now,
	}
	require.NoError(t, users.Create(ctx, user))
	return user
}

func createCourse(t *testing.T, courses repository.CourseRepository, title string, lessons int) *model.Course {
	t.Helper()

	now := time.Now().UTC()
	course := &model.Course{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, courses.Create(ctx, course))

	for i := 1; i <= lessons; i++ {
		lesson := &model.Lesson{
			ID:              uuid.New().String(),
			CourseID:        course.ID,
			Title:           title + " lesson",
			DurationMinutes: 5,
			Order:           i,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		require.NoError(t, courses.CreateLesson(ctx, lesson, nil))
	}
	return course
}
