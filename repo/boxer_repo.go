package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skryldev/boxing-ring/db"
	"github.com/Skryldev/boxing-ring/logging"
	"github.com/Skryldev/boxing-ring/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// BoxerRepository interface
// ─────────────────────────────────────────────────────────────────────────────

// BoxerRepository defines the contract for boxer persistence.
// Every error wraps one of the models error kinds or a db sentinel.
type BoxerRepository interface {
	Create(ctx context.Context, params models.CreateBoxerParams) (*models.Boxer, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Boxer, error)
	GetByName(ctx context.Context, name string) (*models.Boxer, error)
	List(ctx context.Context) ([]*models.Boxer, error)
	GetLeaderboard(ctx context.Context, sortBy models.SortKey) ([]models.LeaderboardEntry, error)
	UpdateStats(ctx context.Context, id int64, outcome models.Outcome) error
}

// boxerRepo is the production implementation backed by a db.Querier.
type boxerRepo struct {
	q      db.Querier
	logger *slog.Logger
}

// NewBoxerRepo returns a BoxerRepository backed by q, which can be a *db.DB
// or a *db.Tx.
func NewBoxerRepo(q db.Querier, logger *slog.Logger) BoxerRepository {
	return &boxerRepo{q: q, logger: logging.Component(logger, "repo")}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL
// ─────────────────────────────────────────────────────────────────────────────

const (
	boxerColumns = `id, name, weight, height, reach, age, fights, wins`

	sqlBoxerExists = `
		SELECT 1 FROM boxers WHERE name = ?`

	sqlInsertBoxer = `
		INSERT INTO boxers (name, weight, height, reach, age, fights, wins)
		VALUES (?, ?, ?, ?, ?, 0, 0)`

	sqlGetBoxerByID = `
		SELECT ` + boxerColumns + `
		FROM   boxers
		WHERE  id = ?`

	sqlGetBoxerByName = `
		SELECT ` + boxerColumns + `
		FROM   boxers
		WHERE  name = ?`

	sqlListBoxers = `
		SELECT ` + boxerColumns + `
		FROM   boxers
		ORDER  BY id`

	sqlLeaderboardByWins = `
		SELECT ` + boxerColumns + `
		FROM   boxers
		WHERE  fights > 0
		ORDER  BY wins DESC, id ASC`

	sqlLeaderboardByWinPct = `
		SELECT ` + boxerColumns + `
		FROM   boxers
		WHERE  fights > 0
		ORDER  BY (wins * 1.0 / fights) DESC, id ASC`

	sqlDeleteBoxer = `
		DELETE FROM boxers WHERE id = ?`

	sqlRecordWin = `
		UPDATE boxers SET fights = fights + 1, wins = wins + 1 WHERE id = ?`

	sqlRecordLoss = `
		UPDATE boxers SET fights = fights + 1 WHERE id = ?`
)

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

// Create validates params, rejects a name that is already taken and inserts a
// boxer with no recorded fights. The existence check and the insert are two
// statements; the UNIQUE constraint catches a concurrent insert in between.
func (r *boxerRepo) Create(ctx context.Context, params models.CreateBoxerParams) (*models.Boxer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var one int
	err := r.q.QueryRow(ctx, sqlBoxerExists, params.Name).Scan(&one)
	switch {
	case err == nil:
		return nil, duplicate(params.Name, nil)
	case !db.IsNotFound(err):
		return nil, fmt.Errorf("repo/boxer: check name: %w", err)
	}

	if _, err := r.q.Exec(ctx, sqlInsertBoxer,
		params.Name, params.Weight, params.Height, params.Reach, params.Age); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, duplicate(params.Name, err)
		}
		return nil, fmt.Errorf("repo/boxer: insert: %w", err)
	}

	b, err := r.GetByName(ctx, params.Name)
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "boxer created",
		logging.FieldBoxerID, b.ID, logging.FieldBoxer, b.Name, "weight_class", b.WeightClass())
	return b, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────────────────────

// Delete removes a boxer by id.
func (r *boxerRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.Exec(ctx, sqlDeleteBoxer, id)
	if err != nil {
		return fmt.Errorf("repo/boxer: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo/boxer: delete: %w", err)
	}
	if n == 0 {
		return notFoundID(id, nil)
	}
	r.logger.InfoContext(ctx, "boxer deleted", logging.FieldBoxerID, id)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns a single boxer by primary key.
func (r *boxerRepo) GetByID(ctx context.Context, id int64) (*models.Boxer, error) {
	b, err := scanBoxer(r.q.QueryRow(ctx, sqlGetBoxerByID, id))
	if db.IsNotFound(err) {
		return nil, notFoundID(id, err)
	}
	return b, err
}

// GetByName looks a boxer up by its unique name.
func (r *boxerRepo) GetByName(ctx context.Context, name string) (*models.Boxer, error) {
	b, err := scanBoxer(r.q.QueryRow(ctx, sqlGetBoxerByName, name))
	if db.IsNotFound(err) {
		return nil, &models.Error{Kind: models.ErrNotFound, Msg: fmt.Sprintf("boxer %q not found", name), Cause: err}
	}
	return b, err
}

// List returns every boxer ordered by id.
func (r *boxerRepo) List(ctx context.Context) ([]*models.Boxer, error) {
	return r.queryBoxers(ctx, sqlListBoxers)
}

// GetLeaderboard ranks boxers with at least one fight by sortBy, descending.
// Ties keep creation order.
func (r *boxerRepo) GetLeaderboard(ctx context.Context, sortBy models.SortKey) ([]models.LeaderboardEntry, error) {
	var query string
	switch sortBy {
	case models.SortByWins:
		query = sqlLeaderboardByWins
	case models.SortByWinPct:
		query = sqlLeaderboardByWinPct
	default:
		return nil, models.Errorf(models.ErrValidation, "invalid sort_by parameter: %q", sortBy)
	}

	boxers, err := r.queryBoxers(ctx, query)
	if err != nil {
		return nil, err
	}
	board := make([]models.LeaderboardEntry, 0, len(boxers))
	for _, b := range boxers {
		board = append(board, models.NewLeaderboardEntry(*b))
	}
	return board, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStats
// ─────────────────────────────────────────────────────────────────────────────

// UpdateStats records one fight for a boxer: a win bumps fights and wins,
// a loss bumps fights only. Each call mutates state further.
func (r *boxerRepo) UpdateStats(ctx context.Context, id int64, outcome models.Outcome) error {
	var query string
	switch outcome {
	case models.Win:
		query = sqlRecordWin
	case models.Loss:
		query = sqlRecordLoss
	default:
		return models.Errorf(models.ErrValidation, "invalid result: %q, expected 'win' or 'loss'", outcome)
	}

	res, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("repo/boxer: update stats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo/boxer: update stats: %w", err)
	}
	if n == 0 {
		return notFoundID(id, nil)
	}
	r.logger.DebugContext(ctx, "boxer stats updated", logging.FieldBoxerID, id, "result", string(outcome))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

// scanBoxer is the single place that maps columns to fields.
func scanBoxer(row rowScanner) (*models.Boxer, error) {
	b := &models.Boxer{}
	err := row.Scan(&b.ID, &b.Name, &b.Weight, &b.Height, &b.Reach, &b.Age, &b.Fights, &b.Wins)
	if err != nil {
		return nil, fmt.Errorf("repo/boxer: %w", err)
	}
	return b, nil
}

func (r *boxerRepo) queryBoxers(ctx context.Context, query string) ([]*models.Boxer, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repo/boxer: query: %w", err)
	}
	defer rows.Close()

	boxers := make([]*models.Boxer, 0)
	for rows.Next() {
		b, err := scanBoxer(rows)
		if err != nil {
			return nil, err
		}
		boxers = append(boxers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo/boxer: rows: %w", err)
	}
	return boxers, nil
}

func notFoundID(id int64, cause error) error {
	return &models.Error{Kind: models.ErrNotFound, Msg: fmt.Sprintf("boxer with id %d not found", id), Cause: cause}
}

func duplicate(name string, cause error) error {
	return &models.Error{Kind: models.ErrDuplicate, Msg: fmt.Sprintf("boxer with name %q already exists", name), Cause: cause}
}

var _ BoxerRepository = (*boxerRepo)(nil)
