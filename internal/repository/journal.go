package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/cloudly/miniapp/internal/model"
)

var (
	ErrJournalEntryNotFound = errors.New("journal entry not found")
	ErrDuplicateJournalDate = errors.New("journal entry already exists for date")
)

type JournalRepository interface {
	Create(ctx context.Context, entry *model.JournalEntry) error
	Update(ctx context.Context, entry *model.JournalEntry) error
	ByDate(ctx context.Context, userID string, date model.Date) (*model.JournalEntry, error)
	Recent(ctx context.Context, userID string, limit int) ([]*model.JournalEntry, error)
	// Dates returns every date the user has a journal entry for, ascending.
	Dates(ctx context.Context, userID string) ([]model.Date, error)
}

type journalRepository struct {
	db *sqlx.DB
}

func NewJournalRepository(db *sqlx.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) Create(ctx context.Context, entry *model.JournalEntry) error {
	query := `INSERT INTO journal_entries (id, user_id, journal_date, situation, emotions, rational_response, result, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.JournalDate,
		entry.Situation,
		entry.Emotions,
		entry.RationalResponse,
		entry.Result,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateJournalDate
	}

	return err
}

func (r *journalRepository) Update(ctx context.Context, entry *model.JournalEntry) error {
	query := `UPDATE journal_entries
	          SET situation = $1, emotions = $2, rational_response = $3, result = $4, updated_at = $5
	          WHERE id = $6 AND user_id = $7`

	result, err := r.db.ExecContext(ctx, query,
		entry.Situation,
		entry.Emotions,
		entry.RationalResponse,
		entry.Result,
		entry.UpdatedAt,
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrJournalEntryNotFound
	}

	return nil
}

func (r *journalRepository) ByDate(ctx context.Context, userID string, date model.Date) (*model.JournalEntry, error) {
	entry := &model.JournalEntry{}
	query := `SELECT * FROM journal_entries WHERE user_id = $1 AND journal_date = $2`

	err := r.db.GetContext(ctx, entry, query, userID, date)
	if err == sql.ErrNoRows {
		return nil, ErrJournalEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *journalRepository) Recent(ctx context.Context, userID string, limit int) ([]*model.JournalEntry, error) {
	var entries []*model.JournalEntry
	query := `SELECT * FROM journal_entries WHERE user_id = $1 ORDER BY journal_date DESC LIMIT $2`

	err := r.db.SelectContext(ctx, &entries, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *journalRepository) Dates(ctx context.Context, userID string) ([]model.Date, error) {
	var dates []model.Date
	query := `SELECT journal_date FROM journal_entries WHERE user_id = $1 ORDER BY journal_date ASC`

	err := r.db.SelectContext(ctx, &dates, query, userID)
	if err != nil {
		return nil, err
	}

	return dates, nil
}
