// Package scheduler runs the daily journal reminder.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/cloudly/miniapp/internal/metrics"
	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
)

const reminderText = "Вы ещё не заполнили КПТ-дневник сегодня. Уделите пару минут своим мыслям и эмоциям."

// Notifier delivers a reminder to a Telegram chat.
type Notifier interface {
	SendReminder(ctx context.Context, chatID int64, text string) error
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	users     repository.UserRepository
	notifier  Notifier
	at        string
	now       func() time.Time
}

// New creates a scheduler that reminds users at the given UTC time (HH:MM).
func New(users repository.UserRepository, notifier Notifier, at string) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		users:     users,
		notifier:  notifier,
		at:        at,
		now:       time.Now,
	}
}

// Start schedules the reminder job and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.at).Do(s.run)
	if err != nil {
		return fmt.Errorf("failed to schedule reminders at %q: %w", s.at, err)
	}

	s.scheduler.StartAsync()
	slog.Info("journal reminders scheduled", "at", s.at)
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	sent, err := s.RemindUsers(ctx)
	if err != nil {
		slog.Error("failed to send journal reminders", "error", err)
		return
	}
	slog.Info("journal reminders sent", "count", sent)
}

// RemindUsers notifies every user without a journal entry for today and
// returns how many reminders were delivered. Delivery failures are logged
// and skipped.
func (s *Scheduler) RemindUsers(ctx context.Context) (int, error) {
	users, err := s.users.WithoutJournalOn(ctx, model.DateOf(s.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	sent := 0
	for _, user := range users {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		err := s.notifier.SendReminder(ctx, user.TelegramID, reminderText)
		if err != nil {
			metrics.Reminders.WithLabelValues("failed").Inc()
			slog.Warn("failed to send reminder", "error", err, "user_id", user.ID)
			continue
		}
		metrics.Reminders.WithLabelValues("sent").Inc()
		sent++
	}
	return sent, nil
}
