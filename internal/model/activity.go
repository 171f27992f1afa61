package model

import (
	"time"
)

const (
	ActivityLogin               = "login"
	ActivityOnboardingCompleted = "onboarding_completed"
	ActivityLessonCompleted     = "lesson_completed"
	ActivityJournalCompleted    = "journal_completed"
)

type UserActivity struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Data         string    `db:"data" json:"data"`
	Timestamp    time.Time `db:"created_at" json:"timestamp"`
}

// DailyProgress summarises which activities a user has ever done and when last.
type DailyProgress struct {
	OnboardingCompleted bool       `json:"onboarding_completed"`
	LastLessonDate      *time.Time `json:"last_lesson_date"`
	LastJournalDate     *time.Time `json:"last_journal_date"`
}
