package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/validation"
)

type CBTService struct {
	cbtRepository repository.CBTRepository
	now           func() time.Time
}

func NewCBTService(cbtRepository repository.CBTRepository) *CBTService {
	return &CBTService{
		cbtRepository: cbtRepository,
		now:           time.Now,
	}
}

// Create validates and stores a worksheet. Every text field is required and
// intensities are rated 1 to 10.
func (s *CBTService) Create(ctx context.Context, userID string, input model.CBTAnalysis) (*model.CBTAnalysis, error) {
	err := validation.First(
		validation.Required("situation", input.Situation),
		validation.Required("thoughts", input.Thoughts),
		validation.Required("emotion", input.Emotion),
		validation.Range("emotion_intensity_before", input.EmotionIntensityBefore, 1, 10),
		validation.Required("physical_reaction", input.PhysicalReaction),
		validation.Required("evidence_for", input.EvidenceFor),
		validation.Required("evidence_against", input.EvidenceAgainst),
		validation.Required("rational_perspective", input.RationalPerspective),
		validation.Range("emotion_intensity_after", input.EmotionIntensityAfter, 1, 10),
		validation.Required("future_coping", input.FutureCoping),
	)
	if err != nil {
		return nil, err
	}

	analysis := &model.CBTAnalysis{
		ID:                     uuid.New().String(),
		UserID:                 userID,
		Situation:              strings.TrimSpace(input.Situation),
		Thoughts:               strings.TrimSpace(input.Thoughts),
		Emotion:                strings.TrimSpace(input.Emotion),
		EmotionIntensityBefore: input.EmotionIntensityBefore,
		PhysicalReaction:       strings.TrimSpace(input.PhysicalReaction),
		EvidenceFor:            strings.TrimSpace(input.EvidenceFor),
		EvidenceAgainst:        strings.TrimSpace(input.EvidenceAgainst),
		RationalPerspective:    strings.TrimSpace(input.RationalPerspective),
		EmotionIntensityAfter:  input.EmotionIntensityAfter,
		FutureCoping:           strings.TrimSpace(input.FutureCoping),
		CreatedAt:              s.now().UTC(),
	}

	err = s.cbtRepository.Create(ctx, analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to save cbt analysis: %w", err)
	}
	return analysis, nil
}

func (s *CBTService) List(ctx context.Context, userID string) ([]*model.CBTAnalysis, error) {
	analyses, err := s.cbtRepository.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cbt analyses: %w", err)
	}
	return analyses, nil
}
