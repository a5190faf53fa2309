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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bcem/extaudit/internal/models"
)

// TestRegister_Idempotent verifies registering twice is not an error.
func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

// TestObserveRun_Success verifies counters for a successful run.
func TestObserveRun_Success(t *testing.T) {
	beforeRuns := testutil.ToFloat64(RunsTotal.WithLabelValues("success"))
	beforeSitelinks := testutil.ToFloat64(FindingsTotal.WithLabelValues("Sitelink"))
	beforeSent := testutil.ToFloat64(ReportsSent)

	reports := []models.AccountFindings{{
		Account: models.Account{CustomerID: "1"},
		Findings: []models.Finding{
			{Type: models.Sitelink}, {Type: models.Sitelink}, {Type: models.Call},
		},
	}}
	ObserveRun(true, 4, reports, true, 2*time.Second)

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("success")) - beforeRuns; got != 1 {
		t.Errorf("success runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(FindingsTotal.WithLabelValues("Sitelink")) - beforeSitelinks; got != 2 {
		t.Errorf("sitelink findings delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ReportsSent) - beforeSent; got != 1 {
		t.Errorf("reports sent delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(AccountsScanned); got != 4 {
		t.Errorf("accounts scanned = %v, want 4", got)
	}
}

// TestObserveRun_Error verifies a failed run only touches the error counter.
func TestObserveRun_Error(t *testing.T) {
	beforeErr := testutil.ToFloat64(RunsTotal.WithLabelValues("error"))
	beforeSent := testutil.ToFloat64(ReportsSent)

	ObserveRun(false, 0, nil, false, time.Second)

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues("error")) - beforeErr; got != 1 {
		t.Errorf("error runs delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ReportsSent) - beforeSent; got != 0 {
		t.Errorf("reports sent should not change, delta = %v", got)
	}
}
