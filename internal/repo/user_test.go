package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnedelko/user-service/internal/models"
)

func mustCreateUser(t *testing.T, r *GormRepo, email string, mutate ...func(*models.User)) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		Name:         "someone",
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func TestFindUserByEmail_CaseInsensitive(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	created := mustCreateUser(t, r, "Mixed.Case@Example.COM")
	assert.Equal(t, "mixed.case@example.com", created.Email)

	found, err := r.FindUserByEmail(ctx, "MIXED.case@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = r.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindActiveUserByID_SkipsBlocked(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	active := mustCreateUser(t, r, "active@example.com")
	blocked := mustCreateUser(t, r, "blocked@example.com", func(u *models.User) {
		u.Status = models.StatusBlocked
	})

	found, err := r.FindActiveUserByID(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.Email, found.Email)

	_, err = r.FindActiveUserByID(ctx, blocked.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The plain lookup still sees the blocked row.
	found, err = r.FindUserByID(ctx, blocked.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, found.Status)
}

func TestBlockUser(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := mustCreateUser(t, r, "victim@example.com")

	require.NoError(t, r.BlockUser(ctx, u.ID))

	got, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, got.Status)

	// Already blocked and unknown ids both report not found.
	assert.ErrorIs(t, r.BlockUser(ctx, u.ID), ErrNotFound)
	assert.ErrorIs(t, r.BlockUser(ctx, uuid.New()), ErrNotFound)
}

func TestConsumeResetCode_ExactlyOnce(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := mustCreateUser(t, r, "reset@example.com")
	require.NoError(t, r.SetResetCode(ctx, u.ID, "code-123", time.Now().UTC()))

	byCode, err := r.FindUserByResetCode(ctx, "code-123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byCode.ID)

	ok, err := r.ConsumeResetCode(ctx, "code-123", "new-hash")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Nil(t, got.ResetCode)
	assert.Nil(t, got.ResetRequestedAt)

	// Second consumption of the same code hits zero rows.
	ok, err = r.ConsumeResetCode(ctx, "code-123", "other-hash")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.FindUserByResetCode(ctx, "code-123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetResetCode_ReplacesPrevious(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u := mustCreateUser(t, r, "replace@example.com")
	require.NoError(t, r.SetResetCode(ctx, u.ID, "first", time.Now().UTC()))
	require.NoError(t, r.SetResetCode(ctx, u.ID, "second", time.Now().UTC()))

	_, err := r.FindUserByResetCode(ctx, "first")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := r.FindUserByResetCode(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestListUsers(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	mustCreateUser(t, r, "a@example.com", func(u *models.User) { u.Name = "alice"; u.Role = models.RoleAdmin })
	mustCreateUser(t, r, "b@example.com", func(u *models.User) { u.Name = "bob" })
	mustCreateUser(t, r, "c@example.com", func(u *models.User) {
		u.Name = "carol"
		u.Status = models.StatusBlocked
	})

	t.Run("all with paging", func(t *testing.T) {
		users, total, err := r.ListUsers(ctx, UserFilter{SortBy: "name", Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Name)
		assert.Equal(t, "bob", users[1].Name)
	})

	t.Run("filter by role", func(t *testing.T) {
		users, total, err := r.ListUsers(ctx, UserFilter{Role: string(models.RoleAdmin), Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0].Name)
	})

	t.Run("filter by status", func(t *testing.T) {
		_, total, err := r.ListUsers(ctx, UserFilter{Status: string(models.StatusBlocked), Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("sort descending", func(t *testing.T) {
		users, _, err := r.ListUsers(ctx, UserFilter{SortBy: "name", SortDesc: true, Limit: 10})
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "carol", users[0].Name)
	})

	t.Run("unknown sort column falls back", func(t *testing.T) {
		_, _, err := r.ListUsers(ctx, UserFilter{SortBy: "password_hash; DROP TABLE users", Limit: 10})
		require.NoError(t, err)
	})
}
