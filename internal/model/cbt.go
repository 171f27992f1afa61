package model

import (
	"time"
)

type CBTAnalysis struct {
	ID                     string    `db:"id" json:"id"`
	UserID                 string    `db:"user_id" json:"user_id"`
	Situation              string    `db:"situation" json:"situation"`
	Thoughts               string    `db:"thoughts" json:"thoughts"`
	Emotion                string    `db:"emotion" json:"emotion"`
	EmotionIntensityBefore int       `db:"emotion_intensity_before" json:"emotion_intensity_before"`
	PhysicalReaction       string    `db:"physical_reaction" json:"physical_reaction"`
	EvidenceFor            string    `db:"evidence_for" json:"evidence_for"`
	EvidenceAgainst        string    `db:"evidence_against" json:"evidence_against"`
	RationalPerspective    string    `db:"rational_perspective" json:"rational_perspective"`
	EmotionIntensityAfter  int       `db:"emotion_intensity_after" json:"emotion_intensity_after"`
	FutureCoping           string    `db:"future_coping" json:"future_coping"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
}

func (a *CBTAnalysis) IntensityChange() int {
	return a.EmotionIntensityBefore - a.EmotionIntensityAfter
}
