// Package fight resolves a bout between two boxers: a deterministic skill
// score per boxer, a logistic win probability over the skill gap, and one
// external random draw.
package fight

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/Skryldev/boxing-ring/logging"
	"github.com/Skryldev/boxing-ring/models"
	"github.com/Skryldev/boxing-ring/random"
)

// StatsRecorder persists both sides of a fight atomically.
type StatsRecorder interface {
	RecordFight(ctx context.Context, winnerID, loserID int64) error
}

// Observer is told how each resolution attempt ended; err is nil on success.
type Observer interface {
	ObserveFight(err error)
}

// Engine resolves fights. It holds no per-fight state and may be shared.
type Engine struct {
	rng      random.Source
	stats    StatsRecorder
	logger   *slog.Logger
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = logging.Component(l, "fight") }
}

// WithObserver reports every resolution attempt to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine wires the random source and the stats recorder.
func NewEngine(rng random.Source, stats StatsRecorder, opts ...Option) *Engine {
	e := &Engine{
		rng:    rng,
		stats:  stats,
		logger: logging.Component(nil, "fight"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeSkill scores a boxer as weight × name length + reach/10 plus an age
// modifier of -1 under 25 and -2 over 35.
func ComputeSkill(b models.Boxer) float64 {
	ageModifier := 0.0
	switch {
	case b.Age < 25:
		ageModifier = -1
	case b.Age > 35:
		ageModifier = -2
	}
	return float64(b.Weight*utf8.RuneCountInString(b.Name)) + b.Reach/10 + ageModifier
}

// WinProbability is the logistic function of the absolute skill gap. It is
// always at least 0.5 and is the chance that the first boxer passed to
// Resolve wins, whichever of the two is stronger.
func WinProbability(skillA, skillB float64) float64 {
	delta := math.Abs(skillA - skillB)
	return 1 / (1 + math.Exp(-delta))
}

// Resolve draws once from the random source and declares a the winner iff the
// draw is below WinProbability, b otherwise. Stats are written only after a
// winner is known; a failed draw aborts with nothing persisted.
func (e *Engine) Resolve(ctx context.Context, a, b models.Boxer) (result models.FightResult, err error) {
	if e.observer != nil {
		defer func() { e.observer.ObserveFight(err) }()
	}

	if a.ID == b.ID {
		return models.FightResult{}, models.Errorf(models.ErrValidation, "boxer %q cannot fight itself", a.Name)
	}

	skillA, skillB := ComputeSkill(a), ComputeSkill(b)
	p := WinProbability(skillA, skillB)
	e.logger.DebugContext(ctx, "skills computed",
		"skill_a", skillA, "skill_b", skillB, logging.FieldProb, p)

	r, err := e.rng.Next(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "fight aborted, no random number", "error", err)
		return models.FightResult{}, fmt.Errorf("fight: draw: %w", err)
	}

	result = models.FightResult{Winner: b, Loser: a}
	if r < p {
		result = models.FightResult{Winner: a, Loser: b}
	}

	if err := e.stats.RecordFight(ctx, result.Winner.ID, result.Loser.ID); err != nil {
		e.logger.ErrorContext(ctx, "fight stats not recorded", "error", err)
		return models.FightResult{}, fmt.Errorf("fight: record: %w", err)
	}

	// The returned copies reflect the persisted counters.
	result.Winner.Fights++
	result.Winner.Wins++
	result.Loser.Fights++

	e.logger.InfoContext(ctx, "fight result",
		logging.FieldWinner, result.Winner.Name, logging.FieldLoser, result.Loser.Name,
		logging.FieldDraw, r, logging.FieldProb, p)
	return result, nil
}
