package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pnedelko/user-service/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindActiveUserByID is the profile-read variant: blocked accounts are
// reported as missing.
func (r *GormRepo) FindActiveUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("id = ? AND status <> ?", id, models.StatusBlocked).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	return r.DB.WithContext(ctx).Save(u).Error
}

func (r *GormRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *GormRepo) BlockUser(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND status <> ?", id, models.StatusBlocked).
		Update("status", models.StatusBlocked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetCode stores a pending reset code, replacing any earlier one.
func (r *GormRepo) SetResetCode(ctx context.Context, id uuid.UUID, code string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reset_code":         code,
			"reset_requested_at": at,
		}).Error
}

func (r *GormRepo) FindUserByResetCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("reset_code = ?", code).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ConsumeResetCode sets the new password hash and clears the pending
// reset fields in one conditional update. The WHERE on reset_code makes
// consumption atomic: of two racing calls only one sees RowsAffected=1.
func (r *GormRepo) ConsumeResetCode(ctx context.Context, code, newHash string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("reset_code = ?", code).
		Updates(map[string]any{
			"password_hash":      newHash,
			"reset_code":         nil,
			"reset_requested_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type UserFilter struct {
	Role     string
	Status   string
	SortBy   string
	SortDesc bool
	Offset   int
	Limit    int
}

var userSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func (r *GormRepo) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := userSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	order := col + " ASC"
	if f.SortDesc {
		order = col + " DESC"
	}

	var users []models.User
	err := q.Order(order).Offset(f.Offset).Limit(f.Limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
