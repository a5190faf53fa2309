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

package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bcem/extaudit/internal/models"
)

// MailSender delivers one plaintext message. Implemented by mailer.Sender.
type MailSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// Suppressor remembers report fingerprints. Implemented by dedup.Filter.
type Suppressor interface {
	IsNew(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

// Dispatcher sends at most one report email per call.
type Dispatcher struct {
	sender     MailSender
	recipients []string
	subject    string
	dedup      Suppressor
}

// DispatcherConfig holds dependencies for the dispatcher.
type DispatcherConfig struct {
	Sender     MailSender
	Recipients []string
	Subject    string
	Dedup      Suppressor // optional
}

// NewDispatcher creates a report dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		sender:     cfg.Sender,
		recipients: cfg.Recipients,
		subject:    cfg.Subject,
		dedup:      cfg.Dedup,
	}
}

// Dispatch emails the report for every record that has findings. Nothing
// is sent when no record qualifies, or when an identical report was sent
// within the suppression window.
func (d *Dispatcher) Dispatch(ctx context.Context, reports []models.AccountFindings) (bool, error) {
	included := models.WithFindings(reports)
	if len(included) == 0 {
		slog.Info("no disapproved extensions found, report not sent")
		return false, nil
	}

	body := Format(included)
	key := Fingerprint(body)

	if d.dedup != nil {
		isNew, err := d.dedup.IsNew(ctx, key)
		if err != nil {
			slog.Warn("report dedup check failed, sending anyway", "error", err)
		} else if !isNew {
			slog.Info("identical report already sent recently, skipping",
				"accounts", len(included),
				"fingerprint", key[:12],
			)
			return false, nil
		}
	}

	if err := d.sender.Send(ctx, d.recipients, d.subject, body); err != nil {
		if d.dedup != nil {
			if ferr := d.dedup.Forget(ctx, key); ferr != nil {
				slog.Warn("failed to clear report fingerprint", "error", ferr)
			}
		}
		return false, fmt.Errorf("send report email: %w", err)
	}

	slog.Info("report email sent",
		"recipients", len(d.recipients),
		"accounts", len(included),
	)
	return true, nil
}
