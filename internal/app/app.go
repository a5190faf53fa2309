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

// Package app wires configuration into a ready-to-run audit. It is shared
// by the one-shot CLI and the scheduled server.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"github.com/bcem/extaudit/internal/ads"
	"github.com/bcem/extaudit/internal/audit"
	"github.com/bcem/extaudit/internal/config"
	"github.com/bcem/extaudit/internal/dedup"
	"github.com/bcem/extaudit/internal/mailer"
	"github.com/bcem/extaudit/internal/queue"
	"github.com/bcem/extaudit/internal/report"
)

const (
	googleTokenURL = "https://oauth2.googleapis.com/token"
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	adwordsScope   = "https://www.googleapis.com/auth/adwords"

	apiTimeout = 60 * time.Second
)

// Options adjust how the audit is wired.
type Options struct {
	// DryRun prints the report to Stdout instead of sending it. Duplicate
	// suppression and the findings queue are disabled.
	DryRun bool
	Stdout io.Writer
}

// App holds the wired audit and the connections it owns.
type App struct {
	Runner    *audit.Runner
	Redis     *redis.Client    // nil when REDIS_URL is unset
	Publisher *queue.Publisher // nil when REDIS_URL is unset
}

// Build connects to Redis (when configured) and wires the runner.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{}

	if cfg.RedisURL != "" && !opts.DryRun {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.Redis = redis.NewClient(opt)
		a.Publisher = queue.NewPublisher(a.Redis, cfg.FindingsQueue)
		if err := a.Publisher.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		slog.Info("connected to Redis")
	}

	client := ads.NewClient(NewAdsHTTPClient(ctx, cfg.Ads), ads.ClientConfig{
		BaseURL:         cfg.Ads.BaseURL,
		APIVersion:      cfg.Ads.APIVersion,
		DeveloperToken:  cfg.Ads.DeveloperToken,
		LoginCustomerID: cfg.Ads.LoginCustomerID,
	})

	dispatcherCfg := report.DispatcherConfig{
		Recipients: cfg.Recipients,
		Subject:    cfg.Subject,
	}
	if opts.DryRun {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		dispatcherCfg.Sender = mailer.NewWriterSender(out)
	} else {
		dispatcherCfg.Sender = mailer.NewSender(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		})
	}
	if a.Redis != nil && cfg.SuppressDuplicatesFor > 0 {
		dispatcherCfg.Dedup = dedup.NewFilter(a.Redis, cfg.SuppressDuplicatesFor)
	}

	runnerCfg := audit.RunnerConfig{
		Label:      cfg.Label,
		Selector:   client,
		Source:     client,
		Dispatcher: report.NewDispatcher(dispatcherCfg),
	}
	if a.Publisher != nil {
		runnerCfg.Publisher = a.Publisher
	}
	a.Runner = audit.NewRunner(runnerCfg)

	slog.Info("audit wired",
		"label", cfg.Label,
		"manager", cfg.Ads.LoginCustomerID,
		"recipients", strings.Join(cfg.Recipients, ","),
		"dry_run", opts.DryRun,
		"dedup", dispatcherCfg.Dedup != nil,
		"findings_queue", a.Publisher != nil,
	)

	return a, nil
}

// Close releases connections owned by the app.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

// NewAdsHTTPClient returns an HTTP client that authenticates with the
// stored refresh token and refreshes access tokens as they expire.
func NewAdsHTTPClient(ctx context.Context, cfg config.AdsConfig) *http.Client {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
		Scopes: []string{adwordsScope},
	}

	// Token refreshes use this client; API calls get the timeout below.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: apiTimeout})
	client := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	client.Timeout = apiTimeout
	return client
}
