// Package auth is the session manager: credential checks, token issuance,
// verification and rotation. One refresh token is valid per user at any
// time; issuing a new pair on login or register overwrites the stored
// value and implicitly revokes every other session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/events"
	"github.com/crafthaus/shop-api/internal/hash"
	"github.com/crafthaus/shop-api/internal/logging"
	"github.com/crafthaus/shop-api/internal/models"
	"github.com/crafthaus/shop-api/internal/repo"
	"github.com/crafthaus/shop-api/internal/tokens"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Service struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	Events        events.Publisher
}

// Identity is the resolved caller attached to every protected request.
// Role is read live from the store on verify, never from token claims.
type Identity struct {
	ID   uint
	Role string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if name == "" || email == "" || password == "" {
		return nil, nil, fmt.Errorf("name, email and password are required: %w", apperr.ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	l.Info("user_registered", "user_id", user.ID)

	return user, pair, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	// The same error for an unknown email and a wrong password, so a
	// caller cannot probe which one it was.
	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthenticated)
		}
		return nil, nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthenticated)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
		"email":  user.Email,
	})
	l.Info("login_successful", "user_id", user.ID)

	return user, pair, nil
}

// Verify resolves an access token to an identity. It is read-only apart
// from the lookup that attaches the user's current role.
func (s *Service) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("missing access token: %w", apperr.ErrUnauthenticated)
	}
	userID, err := tokens.ParseAccess(accessToken, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("unknown subject: %w", apperr.ErrUnauthenticated)
		}
		return nil, err
	}
	return &Identity{ID: user.ID, Role: user.Role}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated here; only login and register mint
// a new one. A presented token that no longer equals the stored value has
// been superseded and is refused as revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken == "" {
		return "", time.Time{}, fmt.Errorf("missing refresh token: %w", apperr.ErrUnauthenticated)
	}
	userID, err := tokens.ParseRefresh(refreshToken, s.RefreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", time.Time{}, fmt.Errorf("unknown subject: %w", apperr.ErrUnauthenticated)
		}
		return "", time.Time{}, err
	}
	if user.RefreshToken != refreshToken {
		return "", time.Time{}, apperr.ErrRevoked
	}

	access, exp, err := tokens.SignAccess(user.ID, s.JWTSecret, time.Now())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	return access, exp, nil
}

// Logout clears the stored refresh token so the presented one cannot be
// exchanged again. The clear is conditional on the stored value still
// matching, so a login that happened elsewhere in the meantime survives.
func (s *Service) Logout(ctx context.Context, userID uint, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.ClearRefreshToken(ctx, userID, refreshToken)
}

func (s *Service) RequireRole(id *Identity, role string) error {
	if id == nil {
		return fmt.Errorf("no identity: %w", apperr.ErrUnauthenticated)
	}
	if id.Role != role {
		return fmt.Errorf("%s role required: %w", role, apperr.ErrForbidden)
	}
	return nil
}

func (s *Service) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := time.Now()
	access, accessExp, err := tokens.SignAccess(user.ID, s.JWTSecret, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	refresh, refreshExp, err := tokens.SignRefresh(user.ID, s.RefreshSecret, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	if err := s.Repo.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}
	user.RefreshToken = refresh
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *Service) publish(ctx context.Context, topic string, userID uint, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(pubCtx, topic, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}
