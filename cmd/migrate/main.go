// Command migrate applies the versioned boxers schema with golang-migrate.
// The service can create the table itself (DB_AUTO_SCHEMA); this tool is for
// deployments that manage schema out of band.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/Skryldev/boxing-ring/config"
	"github.com/Skryldev/boxing-ring/db"
	"github.com/Skryldev/boxing-ring/logging"
)

func main() {
	dir := flag.String("dir", "./migrations", "root of the per-driver migration directories")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("%v", err)
	}
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	dbURL, err := databaseURL(cfg.DB)
	if err != nil {
		fatalf("%v", err)
	}
	source := "file://" + filepath.ToSlash(filepath.Join(*dir, cfg.DB.Driver))

	m, err := migrate.New(source, dbURL)
	if err != nil {
		fatalf("migration init failed: %v", err)
	}
	defer m.Close()

	m.Log = &migrateLogger{logger: logging.Component(logger, "migrate")}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatalf("up failed: %v", err)
		}
		slog.Info("migrations: up completed", "driver", cfg.DB.Driver)

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fatalf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fatalf("down failed: %v", err)
		}
		slog.Info("migrations: down completed", "steps", steps)

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fatalf("version failed: %v", err)
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			fatalf("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fatalf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			fatalf("force failed: %v", err)
		}
		slog.Info("migrations: forced", "version", v)

	default:
		usage()
		os.Exit(1)
	}
}

// databaseURL turns the service's database settings into the URL form
// golang-migrate expects, which prefixes the DSN with the driver scheme.
func databaseURL(c config.DBConfig) (string, error) {
	dsn := c.URL
	if dsn == "" {
		drv, err := db.LookupDriver(c.Driver)
		if err != nil {
			return "", err
		}
		if dsn, err = drv.DSN(c.Options()); err != nil {
			return "", err
		}
	}

	switch c.Driver {
	case "sqlite3":
		return "sqlite3://" + strings.TrimPrefix(dsn, "file:"), nil
	case "postgres":
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			return dsn, nil
		}
		return "", fmt.Errorf("postgres: DATABASE_URL must be a postgres:// URL for migrations")
	case "mysql":
		return "mysql://" + dsn, nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", c.Driver)
	}
}

type migrateLogger struct{ logger *slog.Logger }

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
func (l *migrateLogger) Verbose() bool { return l.logger.Enabled(context.Background(), slog.LevelDebug) }

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [-dir ./migrations] <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Rollback N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (bypass dirty state)

Environment:
  DB_DRIVER         sqlite3 (default), postgres or mysql
  DATABASE_URL      Full DSN; built from DB_HOST, DB_NAME, ... when empty`)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
