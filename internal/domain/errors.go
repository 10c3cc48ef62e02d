package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// ErrConferenceNotFound is returned when a conference cannot be resolved by id or slug.
// It matches ErrNotFound with errors.Is.
var ErrConferenceNotFound = fmt.Errorf("conference %w", ErrNotFound)

// ErrQuestionNotFound is returned when a question id does not exist.
var ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
