package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/cloudly/miniapp/internal/model"
)

var (
	ErrProgressNotFound  = errors.New("course progress not found")
	ErrDuplicateProgress = errors.New("course progress already exists")
)

type ProgressRepository interface {
	Create(ctx context.Context, progress *model.CourseProgress) error
	ByUserAndCourse(ctx context.Context, userID, courseID string) (*model.CourseProgress, error)
	ByUser(ctx context.Context, userID string) ([]*model.CourseProgress, error)
	// Update writes the row only if its version still matches progress.Version,
	// and bumps progress.Version on success.
	Update(ctx context.Context, progress *model.CourseProgress) error
}

type progressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sqlx.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Create(ctx context.Context, progress *model.CourseProgress) error {
	query := `INSERT INTO course_progress (id, user_id, course_id, current_lesson_id, current_page, completed_lessons, last_accessed, version)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		progress.ID,
		progress.UserID,
		progress.CourseID,
		progress.CurrentLessonID,
		progress.CurrentPage,
		progress.CompletedLessons,
		progress.LastAccessed,
		progress.Version,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateProgress
	}

	return err
}

func (r *progressRepository) ByUserAndCourse(ctx context.Context, userID, courseID string) (*model.CourseProgress, error) {
	progress := &model.CourseProgress{}
	query := `SELECT * FROM course_progress WHERE user_id = $1 AND course_id = $2`

	err := r.db.GetContext(ctx, progress, query, userID, courseID)
	if err == sql.ErrNoRows {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func (r *progressRepository) ByUser(ctx context.Context, userID string) ([]*model.CourseProgress, error) {
	var progress []*model.CourseProgress
	query := `SELECT * FROM course_progress WHERE user_id = $1 ORDER BY last_accessed DESC`

	err := r.db.SelectContext(ctx, &progress, query, userID)
	if err != nil {
		return nil, err
	}

	return progress, nil
}

func (r *progressRepository) Update(ctx context.Context, progress *model.CourseProgress) error {
	query := `UPDATE course_progress
	          SET current_lesson_id = $1, current_page = $2, completed_lessons = $3, last_accessed = $4,
	              version = version + 1
	          WHERE id = $5 AND version = $6`

	result, err := r.db.ExecContext(ctx, query,
		progress.CurrentLessonID,
		progress.CurrentPage,
		progress.CompletedLessons,
		progress.LastAccessed,
		progress.ID,
		progress.Version,
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

	progress.Version++
	return nil
}
