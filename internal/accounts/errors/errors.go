package errors

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")

	ErrDuplicateEmail = errors.New("email is already registered")

	ErrSessionNotFound = errors.New("session not found")

	ErrSessionExpired = errors.New("session expired")
)
