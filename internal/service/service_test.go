package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pnedelko/user-service/internal/hash"
	"github.com/pnedelko/user-service/internal/models"
	"github.com/pnedelko/user-service/internal/repo"
)

var testSecret = []byte("service-test-secret")

type testEnv struct {
	Repo   *repo.GormRepo
	Tokens *TokenService
	Auth   *AuthService
	Users  *UserService
	Notify *stubNotifier
}

// stubNotifier records reset links instead of producing messages.
type stubNotifier struct {
	mu    sync.Mutex
	links []string
	err   error
}

func (n *stubNotifier) SendResetEmail(_ context.Context, _ *models.User, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links = append(n.links, link)
	return n.err
}

func (n *stubNotifier) Links() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.links...)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RevokedToken{}))

	r := &repo.GormRepo{DB: db}
	tokens := &TokenService{
		Repo:       r,
		Secret:     testSecret,
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	notify := &stubNotifier{}
	return &testEnv{
		Repo:   r,
		Tokens: tokens,
		Auth: &AuthService{
			Repo:             r,
			Tokens:           tokens,
			Notify:           notify,
			FrontendEndpoint: "http://front.test",
			ResetCodeTTL:     10 * time.Minute,
		},
		Users:  &UserService{Repo: r},
		Notify: notify,
	}
}

func (env *testEnv) createUser(t *testing.T, email, password string, mutate ...func(*models.User)) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "someone",
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		PasswordHash: pwHash,
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, env.Repo.CreateUser(context.Background(), u))
	return u
}
