package model

import (
	"time"
)

type JournalEntry struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	JournalDate      Date      `db:"journal_date" json:"journal_date"`
	Situation        *string   `db:"situation" json:"situation"`
	Emotions         *string   `db:"emotions" json:"emotions"`
	RationalResponse *string   `db:"rational_response" json:"rational_response"`
	Result           *string   `db:"result" json:"result"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// JournalFields carries a partial update. Nil fields leave stored values untouched.
type JournalFields struct {
	Situation        *string
	Emotions         *string
	RationalResponse *string
	Result           *string
}

// IsComplete reports whether every free-text field is filled in.
func (e *JournalEntry) IsComplete() bool {
	return nonEmpty(e.Situation) && nonEmpty(e.Emotions) && nonEmpty(e.RationalResponse) && nonEmpty(e.Result)
}

func (e *JournalEntry) Apply(f JournalFields) {
	if f.Situation != nil {
		e.Situation = f.Situation
	}
	if f.Emotions != nil {
		e.Emotions = f.Emotions
	}
	if f.RationalResponse != nil {
		e.RationalResponse = f.RationalResponse
	}
	if f.Result != nil {
		e.Result = f.Result
	}
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
