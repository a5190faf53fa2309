// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Extension Audit: scheduled server
//
// Long-running entry point. It:
//  1. Loads configuration from config.yaml
//  2. Connects to Redis and PostgreSQL when configured
//  3. Runs the audit immediately and then every AUDIT_INTERVAL
//  4. Skips a run when another replica holds the Postgres run lock
//  5. Serves /health, /metrics and POST /run
//  6. Handles graceful shutdown on SIGTERM/SIGINT
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bcem/extaudit/internal/app"
	"github.com/bcem/extaudit/internal/config"
	"github.com/bcem/extaudit/internal/httpapi"
	"github.com/bcem/extaudit/internal/metrics"
	"github.com/bcem/extaudit/internal/runlock"
	"github.com/bcem/extaudit/internal/scheduler"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	slog.Info("starting extension audit server")

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"label", cfg.Label,
		"interval", cfg.AuditInterval,
		"suppress_duplicates_for", cfg.SuppressDuplicatesFor,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// --- Audit wiring (Redis optional) ---
	a, err := app.Build(ctx, cfg, app.Options{})
	if err != nil {
		slog.Error("failed to initialise audit", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var checks []httpapi.Check
	if a.Publisher != nil {
		checks = append(checks, httpapi.Check{Name: "redis", Pinger: a.Publisher})
	}

	// --- Connect to PostgreSQL (optional run lock) ---
	var lock *runlock.Lock
	if cfg.DatabaseURL != "" {
		pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to create Postgres pool", "error", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		lock = runlock.New(pgPool, runlock.DefaultName)
		if err := lock.Ping(ctx); err != nil {
			slog.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		checks = append(checks, httpapi.Check{Name: "postgres", Pinger: lock})
		slog.Info("connected to PostgreSQL")
	}

	// One audit at a time per process; the run lock covers other replicas.
	var running sync.Mutex
	job := func(ctx context.Context) error {
		if !running.TryLock() {
			slog.Info("audit already running, skipping")
			return nil
		}
		defer running.Unlock()

		run := func(ctx context.Context) error {
			_, err := a.Runner.Run(ctx)
			return err
		}
		if lock == nil {
			return run(ctx)
		}
		_, err := lock.TryRun(ctx, run)
		return err
	}

	// --- HTTP server ---
	handler := httpapi.NewHandler(httpapi.HandlerConfig{
		Checks: checks,
		Trigger: func() {
			if err := job(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("requested audit failed", "error", err)
			}
		},
	})
	serverDone, err := httpapi.Serve(ctx, cfg.Port, handler)
	if err != nil {
		slog.Error("failed to start http server", "error", err)
		os.Exit(1)
	}

	// --- Graceful Shutdown ---
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh

		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Blocks until shutdown.
	scheduler.New("extension-audit", cfg.AuditInterval, job).Run(ctx)

	<-serverDone
	slog.Info("extension audit server stopped")
}

func logLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
