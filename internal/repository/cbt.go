package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/cloudly/miniapp/internal/model"
)

type CBTRepository interface {
	Create(ctx context.Context, analysis *model.CBTAnalysis) error
	ByUser(ctx context.Context, userID string) ([]*model.CBTAnalysis, error)
}

type cbtRepository struct {
	db *sqlx.DB
}

func NewCBTRepository(db *sqlx.DB) CBTRepository {
	return &cbtRepository{db: db}
}

func (r *cbtRepository) Create(ctx context.Context, analysis *model.CBTAnalysis) error {
	query := `INSERT INTO cbt_analyses (id, user_id, situation, thoughts, emotion, emotion_intensity_before,
	          physical_reaction, evidence_for, evidence_against, rational_perspective, emotion_intensity_after,
	          future_coping, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.Situation,
		analysis.Thoughts,
		analysis.Emotion,
		analysis.EmotionIntensityBefore,
		analysis.PhysicalReaction,
		analysis.EvidenceFor,
		analysis.EvidenceAgainst,
		analysis.RationalPerspective,
		analysis.EmotionIntensityAfter,
		analysis.FutureCoping,
		analysis.CreatedAt,
	)
	return err
}

func (r *cbtRepository) ByUser(ctx context.Context, userID string) ([]*model.CBTAnalysis, error) {
	var analyses []*model.CBTAnalysis
	query := `SELECT * FROM cbt_analyses WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &analyses, query, userID)
	if err != nil {
		return nil, err
	}

	return analyses, nil
}
