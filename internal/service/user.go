package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cloudly/miniapp/internal/model"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/telegram"
)

type UserService struct {
	userRepository  repository.UserRepository
	activityService *ActivityService
	now             func() time.Time
}

func NewUserService(userRepository repository.UserRepository, activityService *ActivityService) *UserService {
	return &UserService{
		userRepository:  userRepository,
		activityService: activityService,
		now:             time.Now,
	}
}

// RecordVisit registers a verified Telegram visit. The first visit creates the
// user with a streak of one; later visits refresh the profile and count the visit.
func (s *UserService) RecordVisit(ctx context.Context, identity *telegram.UserIdentity) (*model.User, error) {
	if identity == nil || identity.ID == 0 {
		return nil, fmt.Errorf("missing telegram user")
	}

	now := s.now().UTC()

	var user *model.User
	err := retryOnConflict("user", func() error {
		existing, err := s.userRepository.ByTelegramID(ctx, identity.ID)
		if errors.Is(err, repository.ErrUserNotFound) {
			created, err := s.create(ctx, identity, now)
			if errors.Is(err, repository.ErrDuplicateTelegramID) {
				// A concurrent first login won; count this one as a revisit.
				return repository.ErrVersionConflict
			}
			user = created
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		applyIdentity(existing, identity)
		existing.TotalVisits++
		existing.LastVisit = now

		err = s.userRepository.Update(ctx, existing)
		if err != nil {
			return err
		}
		user = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logLogin(ctx, user.ID)
	return user, nil
}

func (s *UserService) create(ctx context.Context, identity *telegram.UserIdentity, now time.Time) (*model.User, error) {
	user := &model.User{
		ID:             uuid.New().String(),
		TelegramID:     identity.ID,
		VisitStreak:    1,
		LastStreakDate: model.DateOf(now),
		TotalVisits:    1,
		LastVisit:      now,
		CreatedAt:      now,
		Version:        1,
	}
	applyIdentity(user, identity)

	err := s.userRepository.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "telegram_id", user.TelegramID)
	return user, nil
}

func applyIdentity(user *model.User, identity *telegram.UserIdentity) {
	if identity.FirstName != "" {
		user.FirstName = identity.FirstName
	}
	if identity.LastName != "" {
		user.LastName = &identity.LastName
	}
	if identity.Username != "" {
		user.Username = &identity.Username
	}
	if identity.LanguageCode != "" {
		user.LanguageCode = &identity.LanguageCode
	}
	user.IsPremium = identity.IsPremium
}

func (s *UserService) logLogin(ctx context.Context, userID string) {
	err := s.activityService.Log(ctx, userID, model.ActivityLogin, map[string]any{"source": "telegram_webapp"})
	if err != nil {
		slog.Warn("failed to log login activity", "error", err, "user_id", userID)
	}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepository.ByID(ctx, id)
}

// Users returns one page of users, most recently active first, and the total count.
func (s *UserService) Users(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
	users, err := s.userRepository.Users(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	total, err := s.userRepository.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return users, total, nil
}
