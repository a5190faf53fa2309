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

// Package httpapi serves the operational endpoints of the audit server:
// health, Prometheus metrics, and an on-demand run trigger.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names a dependency for the health endpoint.
type Check struct {
	Name   string
	Pinger Pinger
}

// Handler serves the operational endpoints.
type Handler struct {
	checks  []Check
	trigger func()
	metrics http.Handler
}

// HandlerConfig holds dependencies for the handler.
type HandlerConfig struct {
	Checks []Check
	// Trigger starts an audit in the background. Nil disables POST /run.
	Trigger func()
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewHandler creates the operational handler.
func NewHandler(cfg HandlerConfig) *Handler {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		checks:  cfg.Checks,
		trigger: cfg.Trigger,
		metrics: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

// ServeHealth pings every configured dependency and fails on the first
// unhealthy one.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	for _, c := range h.checks {
		if err := c.Pinger.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", "dependency", c.Name, "error", err)
			http.Error(w, c.Name+" unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}

// ServeRun starts an audit outside the schedule.
//
// The run happens in the background; the response is 202 Accepted as soon
// as it has been handed off.
func (h *Handler) ServeRun(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slog.Info("audit run requested", "remote", r.RemoteAddr)
	go h.trigger()

	w.WriteHeader(http.StatusAccepted)
}

// Routes returns the handler's mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.ServeHealth)
	mux.Handle("/metrics", h.metrics)
	mux.HandleFunc("/run", h.ServeRun)
	return mux
}

// Serve starts the HTTP server on the given port.
// It binds the port immediately and signals readiness via the returned
// channel. The server shuts down when ctx is cancelled; done is closed
// once it has stopped.
func Serve(ctx context.Context, port int, handler *Handler) (done <-chan struct{}, err error) {
	server := &http.Server{
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind http port %d: %w", port, err)
	}

	stopped := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "error", err)
		}
	}()

	go func() {
		defer close(stopped)
		slog.Info("http server listening", "port", port)
		if err := server.Serve(ln); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	return stopped, nil
}
