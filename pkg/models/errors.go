package models

import "errors"

// Error kinds surfaced by the review engine and the services built on top of it.
// Callers match them with errors.Is; concrete errors wrap one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

// Domain errors for specific entities.
var (
	ErrWordNotFound    = wrapKind(ErrNotFound, "word not found")
	ErrBookNotFound    = wrapKind(ErrNotFound, "vocabulary book not found")
	ErrSessionNotFound = wrapKind(ErrNotFound, "study session not found")
	ErrUserNotFound    = wrapKind(ErrNotFound, "user not found")
	ErrSessionClosed   = wrapKind(ErrInvalidState, "study session already closed")
)

type kindError struct {
	kind error
	msg  string
}

func wrapKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
