// Package ring holds the two-slot staging area that gates when a fight may
// happen.
//
// A Ring is not safe for concurrent use. Callers that share one across
// goroutines must serialize Enter, Fight and Clear themselves.
package ring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skryldev/boxing-ring/logging"
	"github.com/Skryldev/boxing-ring/models"
)

// Capacity is the number of boxers a fight needs.
const Capacity = 2

// State is derived from the number of occupants.
type State int

const (
	Empty State = iota
	OneSeated
	Ready
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case OneSeated:
		return "one_seated"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Resolver decides a fight between the first and second occupant.
type Resolver interface {
	Resolve(ctx context.Context, a, b models.Boxer) (models.FightResult, error)
}

type Ring struct {
	occupants []models.Boxer
	resolver  Resolver
	logger    *slog.Logger
}

// New returns an empty ring that delegates fights to resolver.
func New(resolver Resolver, logger *slog.Logger) *Ring {
	return &Ring{
		occupants: make([]models.Boxer, 0, Capacity),
		resolver:  resolver,
		logger:    logging.Component(logger, "ring"),
	}
}

// State reports Empty, OneSeated or Ready.
func (r *Ring) State() State { return State(len(r.occupants)) }

// Enter seats a copy of b. A nil or invalid boxer fails with
// models.ErrTypeConstraint, a full ring with models.ErrCapacity.
func (r *Ring) Enter(b *models.Boxer) error {
	if !b.Valid() {
		r.logger.Error("attempted to enter an invalid boxer into the ring")
		return models.Errorf(models.ErrTypeConstraint, "expected a stored boxer")
	}
	if len(r.occupants) >= Capacity {
		r.logger.Warn("ring is full", logging.FieldBoxer, b.Name)
		return models.Errorf(models.ErrCapacity, "cannot add %q", b.Name)
	}
	r.occupants = append(r.occupants, *b)
	r.logger.Info("boxer entered the ring", logging.FieldBoxer, b.Name, "state", r.State())
	return nil
}

// Fight resolves the two occupants in entry order. It fails with
// models.ErrPrecondition unless the ring is Ready. Once resolution has been
// attempted the ring is empty again, whether it succeeded or not.
func (r *Ring) Fight(ctx context.Context) (models.FightResult, error) {
	if r.State() != Ready {
		r.logger.ErrorContext(ctx, "fight attempted without two boxers", "state", r.State())
		return models.FightResult{}, models.Errorf(models.ErrPrecondition,
			"two boxers are needed, ring has %d", len(r.occupants))
	}
	defer r.Clear()

	return r.resolver.Resolve(ctx, r.occupants[0], r.occupants[1])
}

// Occupants returns a copy of the seated boxers in entry order.
func (r *Ring) Occupants() []models.Boxer {
	out := make([]models.Boxer, len(r.occupants))
	copy(out, r.occupants)
	return out
}

// Clear empties the ring.
func (r *Ring) Clear() {
	if len(r.occupants) == 0 {
		return
	}
	r.logger.Info("clearing the ring")
	r.occupants = r.occupants[:0]
}
