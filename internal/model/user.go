package model

import (
	"time"
)

type User struct {
	ID             string    `db:"id" json:"id"`
	TelegramID     int64     `db:"telegram_id" json:"telegram_id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       *string   `db:"last_name" json:"last_name,omitempty"`
	Username       *string   `db:"username" json:"username,omitempty"`
	LanguageCode   *string   `db:"language_code" json:"language_code,omitempty"`
	IsPremium      bool      `db:"is_premium" json:"is_premium"`
	VisitStreak    int       `db:"visit_streak" json:"visit_streak"`
	LastStreakDate Date      `db:"last_streak_date" json:"last_streak_date"`
	TotalVisits    int       `db:"total_visits" json:"total_visits"`
	LastVisit      time.Time `db:"last_visit" json:"last_visit"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	Version        int       `db:"version" json:"-"`
}

type VisitStats struct {
	Streak                int       `json:"streak"`
	TotalVisits           int       `json:"total_visits"`
	LastVisit             time.Time `json:"last_visit"`
	CreatedAt             time.Time `json:"created_at"`
	DaysSinceRegistration int       `json:"days_since_registration"`
}

func (u *User) VisitStats(now time.Time) VisitStats {
	days := int(DateOf(now).Sub(DateOf(u.CreatedAt).Time).Hours() / 24)
	return VisitStats{
		Streak:                u.VisitStreak,
		TotalVisits:           u.TotalVisits,
		LastVisit:             u.LastVisit,
		CreatedAt:             u.CreatedAt,
		DaysSinceRegistration: days,
	}
}
