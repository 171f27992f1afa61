package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/cloudly/miniapp/internal/metrics"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/validation"
)

const (
	DefaultRecentEntries = 7
	maxRecentEntries     = 60
)

// SavedJournal is the outcome of saving a journal entry.
type SavedJournal struct {
	Entry         *model.JournalEntry `json:"entry"`
	StreakChanged bool                `json:"streak_changed"`
	Streak        int                 `json:"streak"`
}

type JournalService struct {
	journalRepository repository.JournalRepository
	userRepository    repository.UserRepository
	activityService   *ActivityService
	now               func() time.Time
}

func NewJournalService(
	journalRepository repository.JournalRepository,
	userRepository repository.UserRepository,
	activityService *ActivityService,
) *JournalService {
	return &JournalService{
		journalRepository: journalRepository,
		userRepository:    userRepository,
		activityService:   activityService,
		now:               time.Now,
	}
}

func (s *JournalService) Today() model.Date {
	return model.DateOf(s.now())
}

func (s *JournalService) ByDate(ctx context.Context, userID string, date model.Date) (*model.JournalEntry, error) {
	return s.journalRepository.ByDate(ctx, userID, date)
}

// Recent returns up to limit entries, newest first.
func (s *JournalService) Recent(ctx context.Context, userID string, limit int) ([]*model.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentEntries
	}
	limit = min(limit, maxRecentEntries)

	entries, err := s.journalRepository.Recent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent entries: %w", err)
	}
	return entries, nil
}

// Save creates the user's entry for date or updates the fields that are set,
// then reconciles the user's streak.
func (s *JournalService) Save(ctx context.Context, user *model.User, date model.Date, fields model.JournalFields) (*SavedJournal, error) {
	err := validateJournal(fields)
	if err != nil {
		return nil, err
	}

	entry, err := s.upsert(ctx, user.ID, date, fields)
	if err != nil {
		return nil, err
	}

	changed, err := s.RecordJournalAndUpdateStreak(ctx, user, date)
	if err != nil {
		return nil, err
	}

	if entry.IsComplete() && date.Equal(s.Today()) {
		err = s.activityService.Log(ctx, user.ID, model.ActivityJournalCompleted, map[string]any{"date": date.String()})
		if err != nil {
			slog.Warn("failed to log journal activity", "error", err, "user_id", user.ID)
		}
	}

	return &SavedJournal{
		Entry:         entry,
		StreakChanged: changed,
		Streak:        user.VisitStreak,
	}, nil
}

func (s *JournalService) upsert(ctx context.Context, userID string, date model.Date, fields model.JournalFields) (*model.JournalEntry, error) {
	now := s.now().UTC()

	entry, err := s.journalRepository.ByDate(ctx, userID, date)
	if errors.Is(err, repository.ErrJournalEntryNotFound) {
		entry = &model.JournalEntry{
			ID:          uuid.New().String(),
			UserID:      userID,
			JournalDate: date,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		entry.Apply(fields)

		err = s.journalRepository.Create(ctx, entry)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, repository.ErrDuplicateJournalDate) {
			return nil, fmt.Errorf("failed to create journal entry: %w", err)
		}
		// Created concurrently for the same date; fall through to update it.
		entry, err = s.journalRepository.ByDate(ctx, userID, date)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}

	entry.Apply(fields)
	entry.UpdatedAt = now

	err = s.journalRepository.Update(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}
	return entry, nil
}

// RecordJournalAndUpdateStreak applies the streak rules for an entry saved on
// journalDate and persists the user when the streak changed. user is updated
// in place with the stored values.
func (s *JournalService) RecordJournalAndUpdateStreak(ctx context.Context, user *model.User, journalDate model.Date) (bool, error) {
	today := s.Today()
	if journalDate.After(today) {
		return false, nil
	}

	dates, err := s.journalRepository.Dates(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to get journal dates: %w", err)
	}
	days := lo.SliceToMap(dates, func(d model.Date) (string, bool) {
		return d.String(), true
	})
	exists := func(d model.Date) bool { return days[d.String()] }

	var changed bool
	err = retryOnConflict("user", func() error {
		current, err := s.userRepository.ByID(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		streak, last, ok := applyStreak(current.VisitStreak, current.LastStreakDate, journalDate, today, exists)
		if !ok {
			changed = false
			*user = *current
			return nil
		}

		current.VisitStreak = streak
		current.LastStreakDate = last
		err = s.userRepository.Update(ctx, current)
		if err != nil {
			return err
		}

		changed = true
		*user = *current
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed {
		metrics.StreakUpdates.Inc()
		slog.Info("streak updated", "user_id", user.ID, "streak", user.VisitStreak, "last_streak_date", user.LastStreakDate.String())
	}
	return changed, nil
}

func validateJournal(fields model.JournalFields) error {
	if fields.Situation == nil {
		return &validation.FieldError{Field: "situation", Message: "is required"}
	}

	return validation.First(
		validation.Required("situation", *fields.Situation),
		maxLength("emotions", fields.Emotions),
		maxLength("rational_response", fields.RationalResponse),
		maxLength("result", fields.Result),
	)
}

func maxLength(field string, value *string) error {
	if value == nil {
		return nil
	}
	return validation.MaxLength(field, *value, validation.MaxTextLength)
}
