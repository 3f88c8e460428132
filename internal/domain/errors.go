package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the item or session is absent. Usually a normal outcome.
	ErrNotFound = errors.New("not found")
	// ErrDecode means stored bytes could not be decoded into a record
	ErrDecode = errors.New("decode error")
	// ErrStorageFailure means the store was unavailable or timed out
	ErrStorageFailure = errors.New("storage failure")
	// ErrNoItemsAvailable means the catalog is empty
	ErrNoItemsAvailable = errors.New("no items available")
	// ErrInvariantViolation means a session was observed in a state the
	// atomic take makes impossible. It is a defect, not a recoverable case.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrInvalidItem means a quiz item failed validation on write
	ErrInvalidItem = errors.New("invalid quiz item")
)

// DecodeError reports corrupt bytes stored under Key
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDecode) match any DecodeError
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
