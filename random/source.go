// Package random supplies the entropy that decides fights. The production
// source fetches one decimal fraction from an HTTP service; tests substitute
// Fixed or Func.
package random

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Source returns one uniform float in [0, 1) per call. Implementations make
// exactly one attempt; there are no retries.
type Source interface {
	Next(ctx context.Context) (float64, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrTimeout is returned when the upstream did not answer in time.
	ErrTimeout = errors.New("random: request timed out")
	// ErrUnavailable covers every other transport or HTTP status failure.
	ErrUnavailable = errors.New("random: source unavailable")
	// ErrParse is returned when the body is not a fraction in [0, 1).
	ErrParse = errors.New("random: invalid response")
)

// Error pairs an error kind with its cause.
type Error struct {
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Is(target error) bool { return e.Kind == target }
func (e *Error) Unwrap() error        { return e.Cause }

// ─────────────────────────────────────────────────────────────────────────────
// Substitutes
// ─────────────────────────────────────────────────────────────────────────────

// Func adapts a function to Source.
type Func func(ctx context.Context) (float64, error)

func (f Func) Next(ctx context.Context) (float64, error) { return f(ctx) }

// Fixed always returns the same value.
type Fixed float64

func (f Fixed) Next(context.Context) (float64, error) { return float64(f), nil }

// Local draws from math/rand/v2. It serves offline runs where the HTTP
// service is not reachable.
type Local struct{}

func (Local) Next(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &Error{Kind: ErrUnavailable, Cause: err}
	}
	return rand.Float64(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Observation
// ─────────────────────────────────────────────────────────────────────────────

// Observer receives the latency and result of each draw.
type Observer interface {
	ObserveRandomFetch(d time.Duration, err error)
}

// Observed wraps src so every draw is reported to obs.
func Observed(src Source, obs Observer) Source {
	if obs == nil {
		return src
	}
	return Func(func(ctx context.Context) (float64, error) {
		start := time.Now()
		v, err := src.Next(ctx)
		obs.ObserveRandomFetch(time.Since(start), err)
		return v, err
	})
}
