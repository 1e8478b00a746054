package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/pnedelko/user-service/internal/models"
)

// Revoke adds jti to the revocation list. Revoking the same jti twice
// is a no-op success.
func (r *GormRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	rec := models.RevokedToken{
		JTI:       jti,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&rec).Error
}

func (r *GormRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PruneRevoked drops records whose token expired before the cutoff. An
// expired token fails validation on its own, so losing its revocation
// record changes nothing observable.
func (r *GormRepo) PruneRevoked(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
