// Package apperr holds the error taxonomy shared by the core and its backends.
package apperr

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidFilename = errors.New("invalid filename")

	// Lock/unlock failures, kept apart from I/O errors.
	ErrAlreadyLocked = errors.New("note is already locked")
	ErrNotLocked     = errors.New("locked note not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrRateLimited   = errors.New("too many failed attempts")
	ErrCorrupted     = errors.New("encrypted note is corrupted")

	// Lifecycle.
	ErrPinLimit = errors.New("pinned tab limit reached")
	ErrStale    = errors.New("stale result discarded")
	ErrReadOnly = errors.New("note is read-only")
	ErrNoActive = errors.New("no active note")
	ErrClosed   = errors.New("controller closed")
)

// PasswordError reports a wrong password together with the attempts left
// before the note is rate limited.
type PasswordError struct {
	Remaining int
}

func (e *PasswordError) Error() string {
	return fmt.Sprintf("incorrect password, %d attempts remaining", e.Remaining)
}

func (e *PasswordError) Unwrap() error { return ErrWrongPassword }

// RateLimitError reports an unlock lockout.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %d seconds", int(e.RetryAfter.Seconds()))
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
