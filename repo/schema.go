package repo

import (
	"context"
	"fmt"

	"github.com/Skryldev/boxing-ring/db"
)

// Table definitions per driver; the migrations directory holds the same DDL
// for cmd/migrate.
var schemas = map[string]string{
	"sqlite3": `
		CREATE TABLE IF NOT EXISTS boxers (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			name   TEXT    NOT NULL UNIQUE,
			weight INTEGER NOT NULL,
			height INTEGER NOT NULL,
			reach  REAL    NOT NULL,
			age    INTEGER NOT NULL,
			fights INTEGER NOT NULL DEFAULT 0,
			wins   INTEGER NOT NULL DEFAULT 0
		)`,
	"postgres": `
		CREATE TABLE IF NOT EXISTS boxers (
			id     BIGSERIAL PRIMARY KEY,
			name   TEXT             NOT NULL UNIQUE,
			weight INTEGER          NOT NULL,
			height INTEGER          NOT NULL,
			reach  DOUBLE PRECISION NOT NULL,
			age    INTEGER          NOT NULL,
			fights INTEGER          NOT NULL DEFAULT 0,
			wins   INTEGER          NOT NULL DEFAULT 0
		)`,
	"mysql": `
		CREATE TABLE IF NOT EXISTS boxers (
			id     BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name   VARCHAR(255) NOT NULL UNIQUE,
			weight INT          NOT NULL,
			height INT          NOT NULL,
			reach  DOUBLE       NOT NULL,
			age    INT          NOT NULL,
			fights INT          NOT NULL DEFAULT 0,
			wins   INT          NOT NULL DEFAULT 0
		)`,
}

// EnsureSchema creates the boxers table for driver if it does not exist.
func EnsureSchema(ctx context.Context, q db.Querier, driver string) error {
	ddl, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("repo: no schema for driver %q", driver)
	}
	if _, err := q.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("repo: ensure schema: %w", err)
	}
	return nil
}
