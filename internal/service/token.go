package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pnedelko/user-service/internal/repo"
	"github.com/pnedelko/user-service/internal/tokens"
)

// TokenService issues and validates the signed bearer tokens. Both
// kinds are HS256 JWTs carrying sub, typ, jti, iat and exp; revocation
// is a lookup against the revoked_tokens table by jti.
type TokenService struct {
	Repo       *repo.GormRepo
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (t *TokenService) IssueAccess(subject string) (string, error) {
	return tokens.Sign(subject, tokens.TypeAccess, t.AccessTTL, t.Secret)
}

func (t *TokenService) IssueRefresh(subject string) (string, error) {
	return tokens.Sign(subject, tokens.TypeRefresh, t.RefreshTTL, t.Secret)
}

// Validate checks the token in fixed order: signature, expiry, type,
// then the revocation list. The first failing check wins, so the store
// is only hit for otherwise well-formed tokens.
func (t *TokenService) Validate(ctx context.Context, tokenStr, expectedType string) (*tokens.Claims, error) {
	claims, err := tokens.ClaimsFromToken(tokenStr, t.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.Type != expectedType {
		return nil, ErrTokenTypeMismatch
	}
	revoked, err := t.Repo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Refresh mints a new access token off a valid refresh token. The
// refresh token itself is left untouched; it stays usable until its own
// expiry or an explicit logout.
func (t *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := t.Validate(ctx, refreshToken, tokens.TypeRefresh)
	if err != nil {
		return "", err
	}
	return t.IssueAccess(claims.Subject)
}

// Revoke puts the claim set's jti on the revocation list. Idempotent.
func (t *TokenService) Revoke(ctx context.Context, claims *tokens.Claims) error {
	expiresAt := time.Now().Add(t.RefreshTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return t.Repo.Revoke(ctx, claims.ID, expiresAt)
}
