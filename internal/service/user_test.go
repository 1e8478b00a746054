package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnedelko/user-service/internal/models"
	"github.com/pnedelko/user-service/internal/repo"
)

// stubIndexer records index traffic instead of talking to elasticsearch.
type stubIndexer struct {
	mu      sync.Mutex
	indexed []string
	deleted []uuid.UUID
	err     error
}

func (s *stubIndexer) IndexUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed = append(s.indexed, u.Email)
	return s.err
}

func (s *stubIndexer) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return s.err
}

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	idx := &stubIndexer{}
	env.Users.Indexer = idx
	ctx := context.Background()

	u, err := env.Users.Create(ctx, CreateUserInput{
		Email:    "New.User@Example.com",
		Name:     "new user",
		Role:     models.RoleUser,
		Password: "password1",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", u.Email)
	assert.Equal(t, models.StatusActive, u.Status)
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, []string{"new.user@example.com"}, idx.indexed)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.Users.Create(ctx, CreateUserInput{
			Email:    "NEW.USER@example.com",
			Name:     "other",
			Role:     models.RoleUser,
			Password: "password1",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := env.Users.Create(ctx, CreateUserInput{Email: "x@example.com", Role: models.RoleUser})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bad role", func(t *testing.T) {
		_, err := env.Users.Create(ctx, CreateUserInput{
			Email:    "y@example.com",
			Name:     "y",
			Role:     "superuser",
			Password: "password1",
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("index failure does not fail the write", func(t *testing.T) {
		idx.err = assert.AnError
		_, err := env.Users.Create(ctx, CreateUserInput{
			Email:    "z@example.com",
			Name:     "z",
			Role:     models.RoleUser,
			Password: "password1",
		})
		require.NoError(t, err)
	})
}

func TestUserService_GetAndBlock(t *testing.T) {
	env := newTestEnv(t)
	idx := &stubIndexer{}
	env.Users.Indexer = idx
	ctx := context.Background()

	u := env.createUser(t, "user@example.com", "password1")

	got, err := env.Users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	require.NoError(t, env.Users.Block(ctx, u.ID))
	assert.Equal(t, []uuid.UUID{u.ID}, idx.deleted)

	_, err = env.Users.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, env.Users.Block(ctx, u.ID), ErrNotFound)
	assert.ErrorIs(t, env.Users.Block(ctx, uuid.New()), ErrNotFound)
}

func TestUserService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.createUser(t, "user@example.com", "password1")
	env.createUser(t, "taken@example.com", "password1")

	t.Run("rename and promote", func(t *testing.T) {
		name := "renamed"
		role := models.RoleAdmin
		got, err := env.Users.Update(ctx, u.ID, UpdateUserInput{Name: &name, Role: &role})
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
		assert.Equal(t, models.RoleAdmin, got.Role)
	})

	t.Run("email collision", func(t *testing.T) {
		email := "taken@example.com"
		_, err := env.Users.Update(ctx, u.ID, UpdateUserInput{Email: &email})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("same email is not a collision", func(t *testing.T) {
		email := "USER@example.com"
		_, err := env.Users.Update(ctx, u.ID, UpdateUserInput{Email: &email})
		require.NoError(t, err)
	})

	t.Run("password change", func(t *testing.T) {
		pw := "brand-new-pass"
		_, err := env.Users.Update(ctx, u.ID, UpdateUserInput{Password: &pw})
		require.NoError(t, err)

		_, err = env.Auth.Login(ctx, "user@example.com", "brand-new-pass")
		require.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		name := "ghost"
		_, err := env.Users.Update(ctx, uuid.New(), UpdateUserInput{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, "a@example.com", "password1")
	env.createUser(t, "b@example.com", "password1", func(u *models.User) {
		u.Role = models.RoleAdmin
	})

	users, total, err := env.Users.List(ctx, repo.UserFilter{Role: string(models.RoleAdmin), Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "b@example.com", users[0].Email)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.Users.EnsureAdmin(ctx, "admin@example.com", "admin-pass"))

	admin, err := env.Repo.FindUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// Second run leaves the existing account alone.
	require.NoError(t, env.Users.EnsureAdmin(ctx, "admin@example.com", "different-pass"))
	again, err := env.Repo.FindUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.PasswordHash, again.PasswordHash)
}
