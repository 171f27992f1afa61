package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/cloudly/miniapp/internal/model"
)

var ErrActivityNotFound = errors.New("activity not found")

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.UserActivity) error
	// Last returns the time of the user's most recent activity of the given type.
	Last(ctx context.Context, userID, activityType string) (time.Time, error)
	DeleteTypes(ctx context.Context, userID string, activityTypes ...string) (int64, error)
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *model.UserActivity) error {
	query := `INSERT INTO user_activities (id, user_id, activity_type, data, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		activity.ID,
		activity.UserID,
		activity.ActivityType,
		activity.Data,
		activity.Timestamp,
	)
	return err
}

func (r *activityRepository) Last(ctx context.Context, userID, activityType string) (time.Time, error) {
	var activity model.UserActivity
	query := `SELECT * FROM user_activities WHERE user_id = $1 AND activity_type = $2 ORDER BY created_at DESC LIMIT 1`

	err := r.db.GetContext(ctx, &activity, query, userID, activityType)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrActivityNotFound
	}
	if err != nil {
		return time.Time{}, err
	}

	return activity.Timestamp, nil
}

func (r *activityRepository) DeleteTypes(ctx context.Context, userID string, activityTypes ...string) (int64, error) {
	if len(activityTypes) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM user_activities WHERE user_id = ? AND activity_type IN (?)`,
		userID, lo.Uniq(activityTypes))
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
