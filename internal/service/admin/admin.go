// Package admin covers the thin admin surface: role mutation with the
// self-modification safeguard, user management and read-only stats.
package admin

import (
	"context"
	"fmt"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/logging"
	"github.com/crafthaus/shop-api/internal/models"
	"github.com/crafthaus/shop-api/internal/repo"
	"github.com/crafthaus/shop-api/internal/service/auth"
)

type Service struct {
	Repo *repo.GormRepo
}

// UpdateUserRole changes the target's role. An admin cannot change their
// own role, so they cannot accidentally lock themselves out.
func (s *Service) UpdateUserRole(ctx context.Context, actorID, targetID uint, role string) (*models.User, error) {
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return nil, fmt.Errorf("invalid role %q: %w", role, apperr.ErrValidation)
	}
	if actorID == targetID {
		return nil, fmt.Errorf("cannot change your own role: %w", apperr.ErrValidation)
	}

	user, err := s.Repo.FindUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("user_role_updated",
		"actor_id", actorID, "target_id", targetID, "role", role)
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

// DeleteUser removes a user account. An admin cannot delete themselves.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return fmt.Errorf("cannot delete your own account: %w", apperr.ErrValidation)
	}
	if _, err := s.Repo.FindUserByID(ctx, targetID); err != nil {
		return err
	}
	return s.Repo.DeleteUser(ctx, targetID)
}

func (s *Service) Stats(ctx context.Context) (*repo.Stats, error) {
	return s.Repo.AggregateStats(ctx)
}
