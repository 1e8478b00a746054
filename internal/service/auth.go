package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pnedelko/user-service/internal/hash"
	"github.com/pnedelko/user-service/internal/logging"
	"github.com/pnedelko/user-service/internal/models"
	"github.com/pnedelko/user-service/internal/repo"
	"github.com/pnedelko/user-service/internal/tokens"
)

// Notifier delivers user-facing messages outside the request path.
// Implementations must be fire-and-forget from the caller's point of
// view; a delivery failure never rolls back state.
type Notifier interface {
	SendResetEmail(ctx context.Context, user *models.User, link string) error
}

type AuthService struct {
	Repo             *repo.GormRepo
	Tokens           *TokenService
	Notify           Notifier
	FrontendEndpoint string
	ResetCodeTTL     time.Duration
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Role         models.Role
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Status == models.StatusBlocked {
		l.Warn("login rejected", "reason", "account blocked", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.Tokens.IssueAccess(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.Tokens.IssueRefresh(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	l.Info("login successful", "user_id", user.ID)
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         user.Role,
	}, nil
}

// Logout revokes the presented token, access or refresh alike. The
// claims come from the route guard, which already verified them.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.Claims) error {
	return s.Tokens.Revoke(ctx, claims)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return s.Tokens.Refresh(ctx, refreshToken)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Repo.UpdatePasswordHash(ctx, user.ID, newHash)
}

// ForgotPassword stores a fresh one-time reset code on the account and
// hands the reset link to the notifier. An unknown email is reported to
// the caller; the HTTP layer keeps the upstream 400 behavior, which is
// an account-enumeration trade-off recorded in DESIGN.md.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	code := uuid.NewString()
	if err := s.Repo.SetResetCode(ctx, user.ID, code, time.Now().UTC()); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.FrontendEndpoint, code)
	if err := s.Notify.SendResetEmail(ctx, user, link); err != nil {
		l.Error("reset email dispatch failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes a reset code exactly once. Unknown, already
// consumed and superseded codes are indistinguishable to the caller.
func (s *AuthService) ResetPassword(ctx context.Context, code, newPassword string) error {
	user, err := s.Repo.FindUserByResetCode(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.ResetRequestedAt == nil || time.Since(*user.ResetRequestedAt) > s.ResetCodeTTL {
		return ErrResetCodeExpired
	}

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// The conditional update clears the code and swaps the hash in one
	// statement; the loser of a concurrent race sees zero rows.
	ok, err := s.Repo.ConsumeResetCode(ctx, code, newHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
