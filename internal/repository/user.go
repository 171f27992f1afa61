package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/cloudly/miniapp/internal/model"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateTelegramID = errors.New("telegram id already registered")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	// Update writes the row only if its version still matches user.Version,
	// and bumps user.Version on success.
	Update(ctx context.Context, user *model.User) error
	Users(ctx context.Context, limit, offset int) ([]*model.User, error)
	Count(ctx context.Context) (int, error)
	WithoutJournalOn(ctx context.Context, date model.Date) ([]*model.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, telegram_id, first_name, last_name, username, language_code, is_premium,
	          visit_streak, last_streak_date, total_visits, last_visit, created_at, version)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.TelegramID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.LanguageCode,
		user.IsPremium,
		user.VisitStreak,
		user.LastStreakDate,
		user.TotalVisits,
		user.LastVisit,
		user.CreatedAt,
		user.Version,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateTelegramID
	}

	return err
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) ByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE telegram_id = $1`

	err := r.db.GetContext(ctx, user, query, telegramID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users
	          SET first_name = $1, last_name = $2, username = $3, language_code = $4, is_premium = $5,
	              visit_streak = $6, last_streak_date = $7, total_visits = $8, last_visit = $9,
	              version = version + 1
	          WHERE id = $10 AND version = $11`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Username,
		user.LanguageCode,
		user.IsPremium,
		user.VisitStreak,
		user.LastStreakDate,
		user.TotalVisits,
		user.LastVisit,
		user.ID,
		user.Version,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrVersionConflict
	}

	user.Version++
	return nil
}

func (r *userRepository) Users(ctx context.Context, limit, offset int) ([]*model.User, error) {
	var users []*model.User
	query := `SELECT * FROM users ORDER BY last_visit DESC LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &users, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func (r *userRepository) WithoutJournalOn(ctx context.Context, date model.Date) ([]*model.User, error) {
	var users []*model.User
	query := `SELECT u.* FROM users u
	          WHERE NOT EXISTS (
	              SELECT 1 FROM journal_entries j WHERE j.user_id = u.id AND j.journal_date = $1
	          )
	          ORDER BY u.created_at ASC`

	err := r.db.SelectContext(ctx, &users, query, date)
	if err != nil {
		return nil, err
	}

	return users, nil
}
