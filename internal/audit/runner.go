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

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bcem/extaudit/internal/metrics"
	"github.com/bcem/extaudit/internal/models"
)

// AccountSelector lists the accounts carrying a label. Implemented by ads.Client.
type AccountSelector interface {
	SelectAccounts(ctx context.Context, label string) ([]models.Account, error)
}

// Dispatcher delivers the report. It reports whether anything was sent.
type Dispatcher interface {
	Dispatch(ctx context.Context, reports []models.AccountFindings) (bool, error)
}

// EventPublisher forwards a run summary to downstream consumers.
type EventPublisher interface {
	PublishAuditEvent(ctx context.Context, event *models.AuditEvent) error
}

// Result summarises a completed audit run.
type Result struct {
	RunID           string
	Label           string
	AccountsScanned int
	Reports         []models.AccountFindings // accounts with findings, in processing order
	TotalFindings   int
	EmailSent       bool
	Elapsed         time.Duration
}

// Runner performs one audit: select, process, dispatch.
type Runner struct {
	label      string
	selector   AccountSelector
	processor  *Processor
	dispatcher Dispatcher
	publisher  EventPublisher
}

// RunnerConfig holds dependencies for the audit runner.
type RunnerConfig struct {
	Label      string
	Selector   AccountSelector
	Source     ExtensionSource
	Dispatcher Dispatcher
	Publisher  EventPublisher // optional
}

// NewRunner creates an audit runner.
func NewRunner(cfg RunnerConfig) *Runner {
	return &Runner{
		label:      cfg.Label,
		selector:   cfg.Selector,
		processor:  NewProcessor(cfg.Source),
		dispatcher: cfg.Dispatcher,
		publisher:  cfg.Publisher,
	}
}

// Run audits every labelled account in turn and dispatches one report if
// any account has findings. Any query or send failure aborts the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID: uuid.New().String(),
		Label: r.label,
	}

	res, err := r.run(ctx, result)
	result.Elapsed = time.Since(start)
	metrics.ObserveRun(err == nil, result.AccountsScanned, result.Reports, result.EmailSent, result.Elapsed)
	return res, err
}

func (r *Runner) run(ctx context.Context, result *Result) (*Result, error) {
	slog.Info("starting extension audit",
		"run_id", result.RunID,
		"label", r.label,
	)

	accounts, err := r.selector.SelectAccounts(ctx, r.label)
	if err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}

	for _, account := range accounts {
		record, err := r.processor.ProcessAccount(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("process account: %w", err)
		}
		result.AccountsScanned++

		if len(record.Findings) == 0 {
			continue
		}
		result.Reports = append(result.Reports, record)
		result.TotalFindings += len(record.Findings)
	}

	sent, err := r.dispatcher.Dispatch(ctx, result.Reports)
	if err != nil {
		return nil, fmt.Errorf("dispatch report: %w", err)
	}
	result.EmailSent = sent

	if r.publisher != nil && len(result.Reports) > 0 {
		if err := r.publisher.PublishAuditEvent(ctx, result.Event()); err != nil {
			slog.Warn("failed to publish audit event",
				"run_id", result.RunID,
				"error", err,
			)
		}
	}

	slog.Info("extension audit complete",
		"run_id", result.RunID,
		"label", r.label,
		"accounts_scanned", result.AccountsScanned,
		"accounts_with_findings", len(result.Reports),
		"findings", result.TotalFindings,
		"email_sent", result.EmailSent,
	)

	return result, nil
}

// Event converts the result into the findings-queue payload.
func (r *Result) Event() *models.AuditEvent {
	return &models.AuditEvent{
		RunID:              r.RunID,
		Label:              r.Label,
		GeneratedAt:        time.Now().UTC().Format(time.RFC3339),
		AccountsScanned:    r.AccountsScanned,
		AccountsWithIssues: len(r.Reports),
		TotalFindings:      r.TotalFindings,
		Accounts:           r.Reports,
	}
}
