package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnedelko/user-service/internal/tokens"
)

func TestTokenService_ValidateAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	raw, err := env.Tokens.IssueAccess("user-1")
	require.NoError(t, err)

	claims, err := env.Tokens.Validate(ctx, raw, tokens.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, tokens.TypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_ValidateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.Tokens.Validate(ctx, "garbage", tokens.TypeAccess)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong signature", func(t *testing.T) {
		raw, err := tokens.Sign("user-1", tokens.TypeAccess, time.Hour, []byte("other-secret"))
		require.NoError(t, err)
		_, err = env.Tokens.Validate(ctx, raw, tokens.TypeAccess)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		raw, err := tokens.Sign("user-1", tokens.TypeAccess, -time.Minute, testSecret)
		require.NoError(t, err)
		_, err = env.Tokens.Validate(ctx, raw, tokens.TypeAccess)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("access where refresh expected", func(t *testing.T) {
		raw, err := env.Tokens.IssueAccess("user-1")
		require.NoError(t, err)
		_, err = env.Tokens.Validate(ctx, raw, tokens.TypeRefresh)
		assert.ErrorIs(t, err, ErrTokenTypeMismatch)
	})

	t.Run("refresh where access expected", func(t *testing.T) {
		raw, err := env.Tokens.IssueRefresh("user-1")
		require.NoError(t, err)
		_, err = env.Tokens.Validate(ctx, raw, tokens.TypeAccess)
		assert.ErrorIs(t, err, ErrTokenTypeMismatch)
	})
}

func TestTokenService_RevokeThenValidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	raw, err := env.Tokens.IssueAccess("user-1")
	require.NoError(t, err)

	claims, err := env.Tokens.Validate(ctx, raw, tokens.TypeAccess)
	require.NoError(t, err)

	require.NoError(t, env.Tokens.Revoke(ctx, claims))

	_, err = env.Tokens.Validate(ctx, raw, tokens.TypeAccess)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revoking again is still fine.
	require.NoError(t, env.Tokens.Revoke(ctx, claims))
}

func TestTokenService_Refresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	refresh, err := env.Tokens.IssueRefresh("user-1")
	require.NoError(t, err)

	access, err := env.Tokens.Refresh(ctx, refresh)
	require.NoError(t, err)

	claims, err := env.Tokens.Validate(ctx, access, tokens.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)

	// The refresh token stays valid after use.
	_, err = env.Tokens.Validate(ctx, refresh, tokens.TypeRefresh)
	require.NoError(t, err)
}

func TestTokenService_RefreshRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)

	access, err := env.Tokens.IssueAccess("user-1")
	require.NoError(t, err)

	_, err = env.Tokens.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestTokenService_RefreshAfterRevoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	refresh, err := env.Tokens.IssueRefresh("user-1")
	require.NoError(t, err)

	claims, err := env.Tokens.Validate(ctx, refresh, tokens.TypeRefresh)
	require.NoError(t, err)
	require.NoError(t, env.Tokens.Revoke(ctx, claims))

	_, err = env.Tokens.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
