package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/testutil"
)

type fakeNotifier struct {
	chats  []int64
	failOn int64
}

func (f *fakeNotifier) SendReminder(_ context.Context, chatID int64, _ string) error {
	if chatID == f.failOn {
		return errors.New("bot was blocked by the user")
	}
	f.chats = append(f.chats, chatID)
	return nil
}

func TestRemindUsers(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewDB(t)
	users := repository.NewUserRepository(database)
	journals := repository.NewJournalRepository(database)
	now := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)

	ids := map[int64]string{}
	for _, telegramID := range []int64{1, 2, 3} {
		user := &model.User{
			ID:             uuid.New().String(),
			TelegramID:     telegramID,
			FirstName:      "U",
			VisitStreak:    1,
			LastStreakDate: model.DateOf(now),
			TotalVisits:    1,
			LastVisit:      now,
			CreatedAt:      now.Add(time.Duration(telegramID) * time.Minute),
		}
		require.NoError(t, users.Create(ctx, user))
		ids[telegramID] = user.ID
	}

	require.NoError(t, journals.Create(ctx, &model.JournalEntry{
		ID:          uuid.New().String(),
		UserID:      ids[2],
		JournalDate: model.DateOf(now),
		Situation:   testutil.Ptr("done"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	notifier := &fakeNotifier{failOn: 3}
	s := New(users, notifier, "19:00")
	s.now = func() time.Time { return now }

	sent, err := s.RemindUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []int64{1}, notifier.chats)
}

func TestStart_InvalidTime(t *testing.T) {
	s := New(nil, &fakeNotifier{}, "25:99")
	assert.Error(t, s.Start())
}
