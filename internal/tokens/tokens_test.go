package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestSign_ClaimSet(t *testing.T) {
	t.Parallel()

	raw, err := Sign("user-1", TypeAccess, time.Hour, testSecret)
	require.NoError(t, err)

	claims, err := ClaimsFromToken(raw, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestSign_UniqueJTI(t *testing.T) {
	t.Parallel()

	a, err := Sign("user-1", TypeRefresh, time.Hour, testSecret)
	require.NoError(t, err)
	b, err := Sign("user-1", TypeRefresh, time.Hour, testSecret)
	require.NoError(t, err)

	ca, err := ClaimsFromToken(a, testSecret)
	require.NoError(t, err)
	cb, err := ClaimsFromToken(b, testSecret)
	require.NoError(t, err)

	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestClaimsFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := Sign("user-1", TypeAccess, time.Hour, testSecret)
	require.NoError(t, err)

	_, err = ClaimsFromToken(raw, []byte("other-secret"))
	assert.Error(t, err)
}

func TestClaimsFromToken_Expired(t *testing.T) {
	t.Parallel()

	raw, err := Sign("user-1", TypeAccess, -time.Minute, testSecret)
	require.NoError(t, err)

	_, err = ClaimsFromToken(raw, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestClaimsFromToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := ClaimsFromToken("not.a.token", testSecret)
	assert.Error(t, err)
}
