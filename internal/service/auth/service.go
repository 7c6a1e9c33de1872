package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linguacare/admin-api/internal/model"
	"github.com/linguacare/admin-api/internal/repository"
	"github.com/linguacare/admin-api/pkg/auth"
	apperrors "github.com/linguacare/admin-api/pkg/errors"
	"github.com/linguacare/admin-api/pkg/logger"
)

const (
	maxLoginAttempts = 5
	lockoutWindow    = 15 * time.Minute
)

type Service struct {
	users  repository.UserRepository
	jwt    auth.JWTService
	expiry time.Duration
	logger *logger.Logger
}

func NewService(users repository.UserRepository, jwtSvc auth.JWTService, expiry time.Duration, l *logger.Logger) *Service {
	return &Service{users: users, jwt: jwtSvc, expiry: expiry, logger: l}
}

// Login verifies credentials and issues an access token. Accounts lock for
// a window after repeated failures; the error never reveals whether the
// email or the password was wrong.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(nil)
	}

	if user.Status == model.UserStatusLocked {
		if time.Since(user.LastLoginAttempt) < lockoutWindow {
			return nil, apperrors.Forbidden("account temporarily locked")
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		user.LoginAttempts++
		user.LastLoginAttempt = time.Now()
		if user.LoginAttempts >= maxLoginAttempts {
			user.Status = model.UserStatusLocked
			s.logger.Warn("account locked after repeated login failures", "user_id", user.ID.String())
		}
		if updateErr := s.users.Update(ctx, user); updateErr != nil {
			s.logger.Error(updateErr, "failed to record login attempt", "user_id", user.ID.String())
		}
		return nil, apperrors.Unauthorized(nil)
	}

	user.LoginAttempts = 0
	user.LastLoginAttempt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to reset login attempts", "user_id", user.ID.String())
	}

	token, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.expiry),
		User:        user,
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *Service) ValidateToken(token string) (*model.TokenClaims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}

// HashPassword produces a bcrypt hash for storage. Used by user creation
// and the seed tool.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
