package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"milk-delivery-api/statemachine"
)

// Sentinel errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateName      = errors.New("name already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = statemachine.ErrInvalidTransition
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// lookupError turns gorm's record-not-found into ErrNotFound and wraps everything else.
func lookupError(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// isUniqueViolation detects unique-index failures from sqlite and postgres.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
