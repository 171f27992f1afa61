package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/testutil"
)

func day(d int) model.Date {
	return model.NewDate(2024, time.January, d)
}

func days(ds ...int) func(model.Date) bool {
	set := make(map[string]bool)
	for _, d := range ds {
		set[day(d).String()] = true
	}
	return func(d model.Date) bool { return set[d.String()] }
}

func TestApplyStreak(t *testing.T) {
	tests := []struct {
		name        string
		streak      int
		last        int
		journal     int
		today       int
		exists      func(model.Date) bool
		wantStreak  int
		wantLast    int
		wantChanged bool
	}{
		{"future entry", 3, 9, 11, 10, days(9, 10, 11), 3, 9, false},
		{"today extends yesterday", 3, 9, 10, 10, days(8, 9, 10), 4, 10, true},
		{"today without yesterday", 3, 8, 10, 10, days(8, 10), 3, 8, false},
		{"yesterday exists but streak ended earlier", 1, 7, 10, 10, days(7, 9, 10), 1, 7, false},
		{"past without next day", 1, 10, 5, 10, days(5, 10), 1, 10, false},
		{"backfill forward run", 1, 10, 7, 10, days(7, 8, 9, 10), 4, 10, true},
		{"backfill joins both sides", 2, 2, 3, 4, days(1, 2, 3, 4), 4, 4, true},
		{"backfill shorter run", 5, 10, 2, 10, days(2, 3, 10), 5, 10, false},
		{"backfill equal run keeps streak", 2, 9, 2, 10, days(2, 3, 9), 2, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, last, changed := applyStreak(tt.streak, day(tt.last), day(tt.journal), day(tt.today), tt.exists)
			assert.Equal(t, tt.wantStreak, streak)
			assert.Equal(t, day(tt.wantLast).String(), last.String())
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestRecordJournalAndUpdateStreak_BackfillScenario(t *testing.T) {
	env := newTestEnv(t)
	env.at(2024, time.January, 1)
	user := env.register(t, 42)
	require.Equal(t, 1, user.VisitStreak)

	save := func(d int) *SavedJournal {
		t.Helper()
		saved, err := env.journal.Save(ctx, user, day(d), model.JournalFields{Situation: testutil.Ptr("day")})
		require.NoError(t, err)
		return saved
	}

	saved := save(1)
	assert.False(t, saved.StreakChanged)
	assert.Equal(t, 1, saved.Streak)

	env.at(2024, time.January, 2)
	saved = save(2)
	assert.True(t, saved.StreakChanged)
	assert.Equal(t, 2, saved.Streak)
	assert.Equal(t, "2024-01-02", user.LastStreakDate.String())

	env.at(2024, time.January, 4)
	saved = save(4)
	assert.False(t, saved.StreakChanged)
	assert.Equal(t, 2, saved.Streak)

	saved = save(3)
	assert.True(t, saved.StreakChanged)
	assert.Equal(t, 4, saved.Streak)

	stored, err := env.users.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.VisitStreak)
	assert.Equal(t, "2024-01-04", stored.LastStreakDate.String())
}

func TestRecordJournalAndUpdateStreak_FutureDate(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, 42)

	changed, err := env.journal.RecordJournalAndUpdateStreak(ctx, user, model.DateOf(env.now).AddDays(1))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, user.VisitStreak)
}
