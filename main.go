// Command boxing-ring serves the boxer registry, the leaderboard and the
// fight ring over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Driver packages register themselves with database/sql.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Skryldev/boxing-ring/config"
	"github.com/Skryldev/boxing-ring/db"
	"github.com/Skryldev/boxing-ring/fight"
	"github.com/Skryldev/boxing-ring/logging"
	"github.com/Skryldev/boxing-ring/metrics"
	"github.com/Skryldev/boxing-ring/random"
	"github.com/Skryldev/boxing-ring/repo"
	"github.com/Skryldev/boxing-ring/ring"
	"github.com/Skryldev/boxing-ring/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("boxing-ring exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger = slog.New(logger.Handler().WithAttrs(logging.WithCommon(nil, cfg.ServiceName, cfg.Version)))
	slog.SetDefault(logger)

	collector := metrics.New(metrics.Config{Enabled: cfg.MetricsEnabled, ServiceName: cfg.ServiceName})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ─────────────────────────────────────────────────────────
	hooks := []db.Hook{
		db.NewLogHook(db.LogHookConfig{
			Logger:             logging.Component(logger, "db"),
			SlowQueryThreshold: cfg.DB.SlowQuery,
			LogArgs:            cfg.DB.LogArgs,
		}),
	}
	if collector != nil {
		hooks = append(hooks, db.NewMetricsHook(collector))
	}

	database, err := db.OpenWithDriver(cfg.DB.Driver, cfg.DB.Options(), db.Config{
		DSN:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: 5 * time.Minute,
		DefaultTimeout:  cfg.DB.QueryTimeout,
		Hooks:           hooks,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.DB.AutoSchema {
		if err := repo.EnsureSchema(ctx, database, database.DriverName()); err != nil {
			return err
		}
	}
	store := repo.NewBoxerStore(database, logger)

	// ── Fight engine and ring ────────────────────────────────────────────
	src, err := randomSource(cfg, logger)
	if err != nil {
		return err
	}
	engineOpts := []fight.Option{fight.WithLogger(logger)}
	if collector != nil {
		src = random.Observed(src, collector)
		engineOpts = append(engineOpts, fight.WithObserver(collector))
	}
	engine := fight.NewEngine(src, store, engineOpts...)

	srv := server.New(store, ring.New(engine, logger), server.Config{
		ServiceName: cfg.ServiceName,
		Logger:      logger,
		Metrics:     collector,
	})

	// ── Serve until signalled ────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.Addr()) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func randomSource(cfg config.Config, logger *slog.Logger) (random.Source, error) {
	switch cfg.RandomSource {
	case config.RandomHTTP:
		return random.NewHTTPSource(random.HTTPConfig{
			URL:     cfg.RandomURL,
			Timeout: cfg.RandomTimeout,
			Logger:  logger,
		}), nil
	case config.RandomLocal:
		logger.Warn("using local pseudo-random source")
		return random.Local{}, nil
	default:
		return nil, fmt.Errorf("unknown random source %q", cfg.RandomSource)
	}
}
