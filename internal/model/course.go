package model

import (
	"time"
)

const (
	BlockTypeHeading   = "heading"
	BlockTypeParagraph = "paragraph"
)

type Course struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Computed fields (not in database)
	LessonsCount int `db:"-" json:"lessons_count"`
}

type Lesson struct {
	ID              string    `db:"id" json:"id"`
	CourseID        string    `db:"course_id" json:"course_id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	ImageURL        string    `db:"image_url" json:"image_url"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Order           int       `db:"sort_order" json:"order"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type ContentBlock struct {
	ID        string `db:"id" json:"id"`
	LessonID  string `db:"lesson_id" json:"lesson_id"`
	BlockType string `db:"block_type" json:"block_type"`
	Content   string `db:"content" json:"content"`
	Order     int    `db:"sort_order" json:"order"`

	// Computed fields (not in database)
	HTML string `db:"-" json:"html,omitempty"`
}

func (b ContentBlock) IsHeading() bool {
	return b.BlockType == BlockTypeHeading
}
