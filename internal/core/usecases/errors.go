package usecases

import "errors"

// Sentinel errors the HTTP layer maps to status codes.
var (
	ErrNotOwner           = errors.New("user does not own this resource")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)
