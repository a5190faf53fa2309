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

// Extension Audit: one-shot command
//
// Audits every account under the manager that carries the configured label
// and emails a single report listing disapproved ad extensions. Intended
// for cron or manual runs.
//
// Usage:
//
//	go run ./cmd/audit/ [--label TB_Script] [--dry-run]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bcem/extaudit/internal/app"
	"github.com/bcem/extaudit/internal/config"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	labelFlag := flag.String("label", "", "Account label to audit (overrides config)")
	dryRunFlag := flag.Bool("dry-run", false, "Print the report to stdout instead of emailing it")
	flag.Parse()

	// --- Load Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *labelFlag != "" {
		cfg.Label = *labelFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := app.Build(ctx, cfg, app.Options{DryRun: *dryRunFlag, Stdout: os.Stdout})
	if err != nil {
		slog.Error("failed to initialise audit", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// --- Run Audit ---
	result, err := a.Runner.Run(ctx)
	if err != nil {
		slog.Error("audit failed", "error", err)
		a.Close()
		os.Exit(1)
	}

	// --- Summary ---
	for _, r := range result.Reports {
		slog.Info("account result",
			"customer_id", r.Account.CustomerID,
			"account", r.Account.Name,
			"findings", len(r.Findings),
		)
	}
	slog.Info("audit finished",
		"run_id", result.RunID,
		"accounts_scanned", result.AccountsScanned,
		"accounts_with_findings", len(result.Reports),
		"email_sent", result.EmailSent,
		"elapsed", result.Elapsed,
	)
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
