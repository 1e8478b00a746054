package service

import "errors"

// Login, blocked-account and wrong-password failures all collapse into
// ErrInvalidCredentials so callers cannot probe which accounts exist or
// are locked out.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrTokenTypeMismatch  = errors.New("token type mismatch")
	ErrNotFound           = errors.New("not found")
	ErrResetCodeExpired   = errors.New("reset code expired")
	ErrEmailTaken         = errors.New("email already in use")
	ErrValidation         = errors.New("validation failed")
)
