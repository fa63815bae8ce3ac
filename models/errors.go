package models

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to tell them apart; every error returned by the
// repository, the fight engine and the ring wraps exactly one of them.
var (
	ErrValidation     = errors.New("validation error")
	ErrDuplicate      = errors.New("duplicate boxer")
	ErrNotFound       = errors.New("boxer not found")
	ErrTypeConstraint = errors.New("not a boxer")
	ErrCapacity       = errors.New("ring is full")
	ErrPrecondition   = errors.New("ring not ready")
)

// Error carries a kind plus a human-readable message and an optional cause.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Is(target error) bool { return e.Kind == target }
func (e *Error) Unwrap() error        { return e.Cause }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
