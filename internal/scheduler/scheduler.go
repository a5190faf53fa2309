// Copyright (c) 2026 John Earle
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://github.com/yourusername/bcem/blob/main/LICENSE
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scheduler runs the audit on a fixed interval until shutdown.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job is one scheduled unit of work. Errors are logged; the loop continues.
type Job func(ctx context.Context) error

// Scheduler invokes a job immediately and then once per interval.
type Scheduler struct {
	name     string
	interval time.Duration
	job      Job
}

// New creates a scheduler. Ticks that arrive while a job is still
// running are dropped rather than queued.
func New(name string, interval time.Duration, job Job) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		job:      job,
	}
}

// Run starts the loop. It blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("scheduler starting",
		"job", s.name,
		"interval", s.interval,
	)

	// Run once immediately
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping", "job", s.name)
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	if err := s.job(ctx); err != nil {
		slog.Error("scheduled job failed",
			"job", s.name,
			"elapsed", time.Since(start),
			"error", err,
		)
		return
	}
	slog.Debug("scheduled job finished",
		"job", s.name,
		"elapsed", time.Since(start),
	)
}
