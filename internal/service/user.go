package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pnedelko/user-service/internal/hash"
	"github.com/pnedelko/user-service/internal/logging"
	"github.com/pnedelko/user-service/internal/models"
	"github.com/pnedelko/user-service/internal/repo"
)

// Indexer mirrors user records into the search index. Indexing is best
// effort; failures are logged and never fail the write.
type Indexer interface {
	IndexUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type UserService struct {
	Repo    *repo.GormRepo
	Indexer Indexer
}

type CreateUserInput struct {
	Email    string
	Name     string
	Role     models.Role
	Password string
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if in.Email == "" || in.Name == "" || in.Password == "" {
		return nil, ErrValidation
	}
	if !in.Role.Valid() {
		return nil, ErrValidation
	}
	if _, err := s.Repo.FindUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:        strings.ToLower(in.Email),
		Name:         in.Name,
		Role:         in.Role,
		Status:       models.StatusActive,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.index(ctx, user)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.FindActiveUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateUserInput struct {
	Email    *string
	Name     *string
	Role     *models.Role
	Password *string
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && strings.ToLower(*in.Email) != user.Email {
		if _, err := s.Repo.FindUserByEmail(ctx, *in.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		user.Email = strings.ToLower(*in.Email)
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, ErrValidation
		}
		user.Role = *in.Role
	}
	if in.Password != nil {
		pwHash, err := hash.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	s.index(ctx, user)
	return user, nil
}

func (s *UserService) List(ctx context.Context, f repo.UserFilter) ([]models.User, int64, error) {
	return s.Repo.ListUsers(ctx, f)
}

// Block soft-deletes an account. The row stays; the account can never
// authenticate again and drops out of profile reads.
func (s *UserService) Block(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.BlockUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.Indexer != nil {
		if err := s.Indexer.DeleteUser(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search index delete failed", "user_id", id, "error", err)
		}
	}
	return nil
}

// EnsureAdmin seeds the admin account on startup when missing.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.Repo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	_, err = s.Create(ctx, CreateUserInput{
		Email:    email,
		Name:     "admin",
		Role:     models.RoleAdmin,
		Password: password,
	})
	return err
}

func (s *UserService) index(ctx context.Context, user *models.User) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexUser(ctx, user); err != nil {
		logging.FromContext(ctx).Error("search index update failed", "user_id", user.ID, "error", err)
	}
}
