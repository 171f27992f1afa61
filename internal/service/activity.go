package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
)

// ProgressFlags is a client report of completed daily steps.
type ProgressFlags struct {
	OnboardingCompleted bool `json:"onboarding_completed"`
	LessonCompleted     bool `json:"lesson_completed"`
	JournalCompleted    bool `json:"journal_completed"`
	Reset               bool `json:"reset"`
}

type ActivityService struct {
	activityRepository repository.ActivityRepository
	now                func() time.Time
}

func NewActivityService(activityRepository repository.ActivityRepository) *ActivityService {
	return &ActivityService{
		activityRepository: activityRepository,
		now:                time.Now,
	}
}

func (s *ActivityService) Log(ctx context.Context, userID, activityType string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode activity data: %w", err)
	}

	return s.activityRepository.Create(ctx, &model.UserActivity{
		ID:           uuid.New().String(),
		UserID:       userID,
		ActivityType: activityType,
		Data:         string(raw),
		Timestamp:    s.now().UTC(),
	})
}

// DailyProgress reports onboarding status and the last lesson and journal completions.
func (s *ActivityService) DailyProgress(ctx context.Context, userID string) (*model.DailyProgress, error) {
	progress := &model.DailyProgress{}

	onboarded, err := s.last(ctx, userID, model.ActivityOnboardingCompleted)
	if err != nil {
		return nil, err
	}
	progress.OnboardingCompleted = onboarded != nil

	progress.LastLessonDate, err = s.last(ctx, userID, model.ActivityLessonCompleted)
	if err != nil {
		return nil, err
	}

	progress.LastJournalDate, err = s.last(ctx, userID, model.ActivityJournalCompleted)
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *ActivityService) last(ctx context.Context, userID, activityType string) (*time.Time, error) {
	ts, err := s.activityRepository.Last(ctx, userID, activityType)
	if errors.Is(err, repository.ErrActivityNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last %s activity: %w", activityType, err)
	}
	return &ts, nil
}

// Record logs one activity per set flag. Reset instead forgets all
// onboarding, lesson and journal completions.
func (s *ActivityService) Record(ctx context.Context, userID string, flags ProgressFlags) error {
	if flags.Reset {
		_, err := s.activityRepository.DeleteTypes(ctx, userID,
			model.ActivityOnboardingCompleted,
			model.ActivityLessonCompleted,
			model.ActivityJournalCompleted,
		)
		if err != nil {
			return fmt.Errorf("failed to reset progress: %w", err)
		}
		return nil
	}

	kinds := map[string]bool{
		model.ActivityOnboardingCompleted: flags.OnboardingCompleted,
		model.ActivityLessonCompleted:     flags.LessonCompleted,
		model.ActivityJournalCompleted:    flags.JournalCompleted,
	}
	for kind, set := range kinds {
		if !set {
			continue
		}
		err := s.Log(ctx, userID, kind, map[string]any{"source": "user_progress"})
		if err != nil {
			return fmt.Errorf("failed to log %s: %w", kind, err)
		}
	}
	return nil
}
