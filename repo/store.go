package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skryldev/boxing-ring/db"
	"github.com/Skryldev/boxing-ring/logging"
	"github.com/Skryldev/boxing-ring/models"
)

// BoxerStore is the repository bound to a connection pool. On top of the
// plain CRUD surface it records both sides of a fight in one transaction.
type BoxerStore struct {
	BoxerRepository
	db     *db.DB
	logger *slog.Logger
}

// NewBoxerStore returns a store whose single-statement operations run on d
// directly.
func NewBoxerStore(d *db.DB, logger *slog.Logger) *BoxerStore {
	return &BoxerStore{
		BoxerRepository: NewBoxerRepo(d, logger),
		db:              d,
		logger:          logger,
	}
}

// RecordFight applies UpdateStats(winner, win) then UpdateStats(loser, loss)
// inside a single transaction. Either both rows change or neither does.
func (s *BoxerStore) RecordFight(ctx context.Context, winnerID, loserID int64) error {
	if winnerID == loserID {
		return models.Errorf(models.ErrValidation, "boxer %d cannot fight itself", winnerID)
	}
	err := s.db.ExecTx(ctx, func(tx *db.Tx) error {
		r := NewBoxerRepo(tx, s.logger)
		if err := r.UpdateStats(ctx, winnerID, models.Win); err != nil {
			return err
		}
		return r.UpdateStats(ctx, loserID, models.Loss)
	})
	if err != nil {
		return fmt.Errorf("repo/boxer: record fight: %w", err)
	}
	logging.Component(s.logger, "repo").InfoContext(ctx, "fight recorded",
		logging.FieldWinner, winnerID, logging.FieldLoser, loserID)
	return nil
}

// Ping reports whether the underlying database is reachable.
func (s *BoxerStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }
