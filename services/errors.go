package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every "target id does not exist" failure.
var ErrNotFound = errors.New("não encontrado")

// ErrDuplicateSlug is returned when a new group's slug is already taken.
var ErrDuplicateSlug = errors.New("Já existe um grupo com este nome")

// ValidationError is a rejected payload: a missing field or a broken invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// IsValidation reports whether err is a payload rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrDuplicateSlug)
}
