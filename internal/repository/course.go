package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cloudly/miniapp/internal/model"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

// CourseRepository stores courses together with their lessons and content blocks.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	ByID(ctx context.Context, id string) (*model.Course, error)
	ByTitle(ctx context.Context, title string) (*model.Course, error)
	Courses(ctx context.Context) ([]*model.Course, error)
	UpdateImage(ctx context.Context, id, imageURL string) error

	// CreateLesson inserts the lesson and its blocks atomically.
	CreateLesson(ctx context.Context, lesson *model.Lesson, blocks []*model.ContentBlock) error
	Lessons(ctx context.Context, courseID string) ([]*model.Lesson, error)
	Lesson(ctx context.Context, courseID, lessonID string) (*model.Lesson, error)
	CountLessons(ctx context.Context, courseID string) (int, error)
	Blocks(ctx context.Context, lessonID string) ([]*model.ContentBlock, error)
}

type courseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `INSERT INTO courses (id, title, description, image_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.ImageURL,
		course.CreatedAt,
		course.UpdatedAt,
	)
	return err
}

// courseRow is a course with its lesson count, as returned by the listing queries.
type courseRow struct {
	model.Course
	LessonsCount int `db:"lessons_count"`
}

func (c courseRow) toModel() *model.Course {
	course := c.Course
	course.LessonsCount = c.LessonsCount
	return &course
}

const courseSelect = `SELECT c.*, (SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS lessons_count FROM courses c`

func (r *courseRepository) ByID(ctx context.Context, id string) (*model.Course, error) {
	return r.getCourse(ctx, courseSelect+` WHERE c.id = $1`, id)
}

func (r *courseRepository) ByTitle(ctx context.Context, title string) (*model.Course, error) {
	return r.getCourse(ctx, courseSelect+` WHERE c.title = $1`, title)
}

func (r *courseRepository) getCourse(ctx context.Context, query string, arg any) (*model.Course, error) {
	var row courseRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if err == sql.ErrNoRows {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

func (r *courseRepository) Courses(ctx context.Context) ([]*model.Course, error) {
	var rows []courseRow
	err := r.db.SelectContext(ctx, &rows, courseSelect+` ORDER BY c.created_at ASC, c.title ASC`)
	if err != nil {
		return nil, err
	}

	courses := make([]*model.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toModel())
	}
	return courses, nil
}

func (r *courseRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	query := `UPDATE courses SET image_url = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, imageURL, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrCourseNotFound
	}

	return nil
}

func (r *courseRepository) CreateLesson(ctx context.Context, lesson *model.Lesson, blocks []*model.ContentBlock) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO lessons (id, course_id, title, description, image_url, duration_minutes, sort_order, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.ExecContext(ctx, query,
		lesson.ID,
		lesson.CourseID,
		lesson.Title,
		lesson.Description,
		lesson.ImageURL,
		lesson.DurationMinutes,
		lesson.Order,
		lesson.CreatedAt,
		lesson.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}

	for _, block := range blocks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO content_blocks (id, lesson_id, block_type, content, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			block.ID,
			lesson.ID,
			block.BlockType,
			block.Content,
			block.Order,
		)
		if err != nil {
			return fmt.Errorf("insert content block: %w", err)
		}
	}

	return tx.Commit()
}

func (r *courseRepository) Lessons(ctx context.Context, courseID string) ([]*model.Lesson, error) {
	var lessons []*model.Lesson
	query := `SELECT * FROM lessons WHERE course_id = $1 ORDER BY sort_order ASC, id ASC`

	err := r.db.SelectContext(ctx, &lessons, query, courseID)
	if err != nil {
		return nil, err
	}

	return lessons, nil
}

func (r *courseRepository) Lesson(ctx context.Context, courseID, lessonID string) (*model.Lesson, error) {
	lesson := &model.Lesson{}
	query := `SELECT * FROM lessons WHERE id = $1 AND course_id = $2`

	err := r.db.GetContext(ctx, lesson, query, lessonID, courseID)
	if err == sql.ErrNoRows {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	return lesson, nil
}

func (r *courseRepository) CountLessons(ctx context.Context, courseID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM lessons WHERE course_id = $1`, courseID)
	return count, err
}

func (r *courseRepository) Blocks(ctx context.Context, lessonID string) ([]*model.ContentBlock, error) {
	var blocks []*model.ContentBlock
	query := `SELECT * FROM content_blocks WHERE lesson_id = $1 ORDER BY sort_order ASC, id ASC`

	err := r.db.SelectContext(ctx, &blocks, query, lessonID)
	if err != nil {
		return nil, err
	}

	return blocks, nil
}
