package domain

import "errors"

// Виды ошибок. Оборачиваются через %w и проверяются через errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrCredentials     = errors.New("invalid credentials")
	ErrUnauthenticated = errors.New("unauthenticated")
)
