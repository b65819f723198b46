package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrUnauthorized       = errors.New("not authorized")
	ErrStoreUnavailable   = errors.New("user store unavailable")
)
