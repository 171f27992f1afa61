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

func newEntry(userID string, date model.Date) *model.JournalEntry {
	now := time.Now().UTC()
	return &model.JournalEntry{
		ID:          uuid.New().String(),
		UserID:      userID,
		JournalDate: date,
		Situation:   testutil.Ptr("situation " + date.String()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestJournalRepository_OneEntryPerDay(t *testing.T) {
	database := testutil.NewDB(t)
	user := createUser(t, repository.NewUserRepository(database), 1)
	journals := repository.NewJournalRepository(database)

	day := model.NewDate(2025, 3, 10)
	require.NoError(t, journals.Create(ctx, newEntry(user.ID, day)))
	assert.ErrorIs(t, journals.Create(ctx, newEntry(user.ID, day)), repository.ErrDuplicateJournalDate)
}

func TestJournalRepository_UpdateAndByDate(t *testing.T) {
	database := testutil.NewDB(t)
	user := createUser(t, repository.NewUserRepository(database), 1)
	journals := repository.NewJournalRepository(database)

	day := model.NewDate(2025, 3, 10)
	entry := newEntry(user.ID, day)
	require.NoError(t, journals.Create(ctx, entry))

	entry.Emotions = testutil.Ptr("calm")
	require.NoError(t, journals.Update(ctx, entry))

	got, err := journals.ByDate(ctx, user.ID, day)
	require.NoError(t, err)
	assert.Equal(t, "situation 2025-03-10", *got.Situation)
	assert.Equal(t, "calm", *got.Emotions)
	assert.Nil(t, got.Result)

	_, err = journals.ByDate(ctx, user.ID, day.AddDays(1))
	assert.ErrorIs(t, err, repository.ErrJournalEntryNotFound)
}

func TestJournalRepository_RecentAndDates(t *testing.T) {
	database := testutil.NewDB(t)
	user := createUser(t, repository.NewUserRepository(database), 1)
	journals := repository.NewJournalRepository(database)

	start := model.NewDate(2025, 3, 1)
	for _, offset := range []int{0, 1, 2, 4, 9} {
		require.NoError(t, journals.Create(ctx, newEntry(user.ID, start.AddDays(offset))))
	}

	recent, err := journals.Recent(ctx, user.ID, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, start.AddDays(9), recent[0].JournalDate)
	assert.Equal(t, start.AddDays(4), recent[1].JournalDate)
	assert.Equal(t, start.AddDays(2), recent[2].JournalDate)

	dates, err := journals.Dates(ctx, user.ID)
	require.NoError(t, err)
	testutil.AssertEqual(t, dates, []model.Date{start, start.AddDays(1), start.AddDays(2), start.AddDays(4), start.AddDays(9)})
}
