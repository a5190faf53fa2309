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

// Package metrics exposes Prometheus collectors for audit runs.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bcem/extaudit/internal/models"
)

var (
	// completed runs labelled by outcome (success|error)
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extaudit_runs_total",
			Help: "Total audit runs",
		},
		[]string{"outcome"},
	)

	// accounts scanned by the most recent run
	AccountsScanned = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "extaudit_accounts_scanned",
			Help: "Accounts scanned in the last audit run",
		},
	)

	// disapproved extensions found, labelled by extension type
	FindingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extaudit_findings_total",
			Help: "Disapproved extensions found",
		},
		[]string{"type"},
	)

	ReportsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extaudit_reports_sent_total",
			Help: "Report emails sent",
		},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extaudit_run_duration_seconds",
			Help:    "Histogram of audit run durations",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "extaudit_last_success_timestamp_seconds",
			Help: "Unix time of the last successful audit run",
		},
	)
)

// Register adds all collectors to reg. Already-registered collectors are
// not an error.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		RunsTotal, AccountsScanned, FindingsTotal, ReportsSent, RunDuration, LastSuccess,
	} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRun records the outcome of one audit run.
func ObserveRun(ok bool, accounts int, reports []models.AccountFindings, sent bool, elapsed time.Duration) {
	RunDuration.Observe(elapsed.Seconds())
	if !ok {
		RunsTotal.WithLabelValues("error").Inc()
		return
	}

	RunsTotal.WithLabelValues("success").Inc()
	AccountsScanned.Set(float64(accounts))
	for _, r := range reports {
		for _, f := range r.Findings {
			FindingsTotal.WithLabelValues(string(f.Type)).Inc()
		}
	}
	if sent {
		ReportsSent.Inc()
	}
	LastSuccess.Set(float64(time.Now().Unix()))
}
