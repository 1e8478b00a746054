package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusBlocked
}

// User is the account record. Email is stored lowercased, uniqueness is
// therefore case-insensitive. ResetCode and ResetRequestedAt are set
// together by the forgot-password flow and cleared together by a
// successful reset.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         Role      `gorm:"not null"                 json:"role"`
	Status       Status    `gorm:"not null;default:active"  json:"status"`
	Name         string    `gorm:"not null"                 json:"name"`

	ResetCode        *string    `gorm:"uniqueIndex" json:"-"`
	ResetRequestedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RevokedToken is an entry in the token revocation list, keyed by jti.
// Rows are never mutated; once the token's own expiry has passed the
// row is dead weight and may be pruned.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	RevokedAt time.Time `gorm:"not null"             json:"revoked_at"`
	ExpiresAt time.Time `gorm:"index;not null"       json:"expires_at"`
}
