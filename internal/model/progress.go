package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
)

// LessonSet is a set of completed lesson IDs.
// It is persisted as a sorted JSON array.
type LessonSet map[string]struct{}

func NewLessonSet(ids ...string) LessonSet {
	s := make(LessonSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s LessonSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add reports whether id was not already present.
func (s LessonSet) Add(id string) bool {
	if s.Has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s LessonSet) Len() int {
	return len(s)
}

// Union returns a new set holding the members of both sets.
func (s LessonSet) Union(o LessonSet) LessonSet {
	return NewLessonSet(lo.Union(s.IDs(), o.IDs())...)
}

// IDs returns the members in sorted order.
func (s LessonSet) IDs() []string {
	ids := lo.Keys(s)
	slices.Sort(ids)
	return ids
}

func (s LessonSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *LessonSet) UnmarshalJSON(b []byte) error {
	var ids []string
	err := json.Unmarshal(b, &ids)
	if err != nil {
		return err
	}
	*s = NewLessonSet(ids...)
	return nil
}

func (s LessonSet) Value() (driver.Value, error) {
	b, err := json.Marshal(s.IDs())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan tolerates empty and malformed values by treating them as an empty set.
func (s *LessonSet) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case nil:
		*s = NewLessonSet()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into LessonSet", src)
	}

	var ids []string
	if len(raw) == 0 || json.Unmarshal(raw, &ids) != nil {
		*s = NewLessonSet()
		return nil
	}
	*s = NewLessonSet(ids...)
	return nil
}

type CourseProgress struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	CourseID         string    `db:"course_id" json:"course_id"`
	CurrentLessonID  *string   `db:"current_lesson_id" json:"current_lesson_id"`
	CurrentPage      int       `db:"current_page" json:"current_page"`
	CompletedLessons LessonSet `db:"completed_lessons" json:"completed_lessons"`
	LastAccessed     time.Time `db:"last_accessed" json:"last_accessed"`
	Version          int       `db:"version" json:"-"`
}
