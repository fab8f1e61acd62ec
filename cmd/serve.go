// Package cmd provides the feedback-triage subcommands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/feedback-triage/config"
	"github.com/otherjamesbrown/feedback-triage/pkg/api"
	"github.com/otherjamesbrown/feedback-triage/pkg/logging"
	"github.com/otherjamesbrown/feedback-triage/pkg/memory"
	"github.com/otherjamesbrown/feedback-triage/pkg/observability"
	"github.com/otherjamesbrown/feedback-triage/pkg/session"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage"
	"github.com/otherjamesbrown/feedback-triage/pkg/triage/heuristic"
)

// NewServeCommand returns the serve subcommand: it wires the stores, the
// pipeline and the HTTP server, and runs until SIGINT/SIGTERM.
func NewServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the feedback triage HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	log := logging.NewLogger(&logging.Config{
		Level:       logging.Level(cfg.Logging.Level),
		ServiceName: "feedback-triage",
		Environment: cfg.Logging.Environment,
		JSONFormat:  cfg.Logging.JSON,
	})

	sessions, memlog, cleanup, err := buildStores(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	coord, err := triage.NewCoordinator(triage.CoordinatorConfig{
		Sessions:     sessions,
		Memory:       memlog,
		Stages:       heuristic.DefaultStages(),
		Logger:       log,
		Metrics:      observability.DefaultMetrics(),
		StageTimeout: cfg.Pipeline.StageTimeout,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Server.ListenAddr,
		Handler: api.NewRouter(api.Deps{
			Pipeline: coord,
			Sessions: sessions,
			Memory:   memlog,
			Logger:   log,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", logging.F("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		log.Info("shutting down", logging.F("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildStores selects the session store and memory log for the configured
// backend. The returned cleanup closes any held connections.
func buildStores(cfg *config.Config, log logging.Logger) (triage.SessionStore, triage.MemoryLog, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Storage.RedisAddr})
		log.Info("using redis storage", logging.F("addr", cfg.Storage.RedisAddr))
		cleanup := func() { _ = client.Close() }
		return session.NewRedisStore(client), memory.NewRedisLog(client), cleanup, nil

	case config.BackendPostgres:
		ctx := context.Background()
		pool, err := pgxpool.New(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		sessions := session.NewPostgresStore(pool)
		memlog := memory.NewPostgresLog(pool)
		if err := sessions.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		if err := memlog.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		log.Info("using postgres storage")
		return sessions, memlog, pool.Close, nil

	default:
		log.Info("using in-memory storage")
		return session.NewMemoryStore(), memory.NewMemoryLog(), func() {}, nil
	}
}
