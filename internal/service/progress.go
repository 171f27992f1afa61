package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudly/miniapp/internal/metrics"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/pagination"
	"github.com/cloudly/miniapp/internal/repository"
)

type ProgressService struct {
	progressRepository repository.ProgressRepository
	courseRepository   repository.CourseRepository
	now                func() time.Time
}

func NewProgressService(progressRepository repository.ProgressRepository, courseRepository repository.CourseRepository) *ProgressService {
	return &ProgressService{
		progressRepository: progressRepository,
		courseRepository:   courseRepository,
		now:                time.Now,
	}
}

// GetOrCreateProgress returns the user's progress in a course, starting it on
// the first lesson if none exists yet.
func (s *ProgressService) GetOrCreateProgress(ctx context.Context, userID, courseID string) (*model.CourseProgress, error) {
	progress, err := s.progressRepository.ByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, repository.ErrProgressNotFound) {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	lessons, err := s.courseRepository.Lessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}

	progress = &model.CourseProgress{
		ID:               uuid.New().String(),
		UserID:           userID,
		CourseID:         courseID,
		CurrentPage:      1,
		CompletedLessons: model.NewLessonSet(),
		LastAccessed:     s.now().UTC(),
		Version:          1,
	}
	if len(lessons) > 0 {
		progress.CurrentLessonID = &lessons[0].ID
	}

	err = s.progressRepository.Create(ctx, progress)
	if errors.Is(err, repository.ErrDuplicateProgress) {
		return s.progressRepository.ByUserAndCourse(ctx, userID, courseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	return progress, nil
}

// MarkLessonCompleted adds lessonID to the completed set and moves the
// current lesson on to the next one, if any. Marking twice is a no-op for
// the set.
func (s *ProgressService) MarkLessonCompleted(ctx context.Context, userID, courseID, lessonID string) (*model.CourseProgress, error) {
	_, err := s.courseRepository.Lesson(ctx, courseID, lessonID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.courseRepository.Lessons(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %w", err)
	}
	next := nextLesson(lessons, lessonID)

	var progress *model.CourseProgress
	var added bool
	err = retryOnConflict("progress", func() error {
		current, err := s.GetOrCreateProgress(ctx, userID, courseID)
		if err != nil {
			return err
		}

		added = !current.CompletedLessons.Has(lessonID)
		current.CompletedLessons = current.CompletedLessons.Union(model.NewLessonSet(lessonID))
		if next != nil {
			current.CurrentLessonID = &next.ID
			current.CurrentPage = 1
		}
		current.LastAccessed = s.now().UTC()

		err = s.progressRepository.Update(ctx, current)
		if err != nil {
			return err
		}
		progress = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if added {
		metrics.LessonsCompleted.Inc()
	}
	return progress, nil
}

// SetPage remembers where the user is reading. page is clamped into [1, totalPages].
func (s *ProgressService) SetPage(ctx context.Context, userID, courseID, lessonID string, page, totalPages int) (*model.CourseProgress, error) {
	page = pagination.Clamp(page, totalPages)

	var progress *model.CourseProgress
	err := retryOnConflict("progress", func() error {
		current, err := s.GetOrCreateProgress(ctx, userID, courseID)
		if err != nil {
			return err
		}

		current.CurrentLessonID = &lessonID
		current.CurrentPage = page
		current.LastAccessed = s.now().UTC()

		err = s.progressRepository.Update(ctx, current)
		if err != nil {
			return err
		}
		progress = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func IsLessonCompleted(progress *model.CourseProgress, lessonID string) bool {
	return progress != nil && progress.CompletedLessons.Has(lessonID)
}

// CompletionPercentage returns the share of completed lessons in [0, 100].
func CompletionPercentage(progress *model.CourseProgress, totalLessons int) float64 {
	if progress == nil || totalLessons <= 0 {
		return 0
	}
	return min(100, 100*float64(progress.CompletedLessons.Len())/float64(totalLessons))
}

// nextLesson returns the lesson following lessonID in course order.
func nextLesson(lessons []*model.Lesson, lessonID string) *model.Lesson {
	for i, lesson := range lessons {
		if lesson.ID == lessonID && i+1 < len(lessons) {
			return lessons[i+1]
		}
	}
	return nil
}
