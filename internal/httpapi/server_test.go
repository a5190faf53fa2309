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

package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

// TestServeHealth_Healthy verifies 200 when every dependency responds.
func TestServeHealth_Healthy(t *testing.T) {
	h := NewHandler(HandlerConfig{Checks: []Check{
		{Name: "redis", Pinger: fakePinger{}},
		{Name: "postgres", Pinger: fakePinger{}},
	}})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

// TestServeHealth_Unhealthy verifies the failing dependency is named.
func TestServeHealth_Unhealthy(t *testing.T) {
	h := NewHandler(HandlerConfig{Checks: []Check{
		{Name: "redis", Pinger: fakePinger{}},
		{Name: "postgres", Pinger: fakePinger{err: errors.New("refused")}},
	}})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "postgres unhealthy") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

// TestServeHealth_NoChecks verifies a server without dependencies is healthy.
func TestServeHealth_NoChecks(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(HandlerConfig{}).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// TestServeRun verifies POST triggers a run and other methods are rejected.
func TestServeRun(t *testing.T) {
	triggered := make(chan struct{}, 1)
	h := NewHandler(HandlerConfig{Trigger: func() { triggered <- struct{}{} }})

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/run", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST status = %d, want 202", rec.Code)
	}

	select {
	case <-triggered:
	case <-time.After(2 * time.Second):
		t.Fatal("trigger was not called")
	}
}

// TestServeRun_Disabled verifies /run is absent without a trigger.
func TestServeRun_Disabled(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(HandlerConfig{}).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestMetrics verifies the registry is exposed in text format.
func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "extaudit_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	srv := httptest.NewServer(NewHandler(HandlerConfig{Gatherer: reg}).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "extaudit_test_total 1") {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}
