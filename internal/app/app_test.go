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

package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/bcem/extaudit/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Ads: config.AdsConfig{
			BaseURL:         "http://127.0.0.1:1",
			APIVersion:      config.DefaultAdsVersion,
			DeveloperToken:  "dev",
			LoginCustomerID: "1234567890",
			ClientID:        "id",
			ClientSecret:    "secret",
			RefreshToken:    "refresh",
		},
		SMTP:          config.SMTPConfig{Host: "localhost", Port: "25", From: "noreply@example.com"},
		Label:         config.DefaultLabel,
		Recipients:    []string{"ops@example.com"},
		Subject:       config.DefaultSubject,
		FindingsQueue: config.DefaultFindingsList,
		AuditInterval: time.Hour,
	}
}

// TestBuild_NoRedis verifies Redis is optional.
func TestBuild_NoRedis(t *testing.T) {
	a, err := Build(context.Background(), testConfig(), Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer a.Close()

	if a.Runner == nil {
		t.Fatal("runner should be wired")
	}
	if a.Redis != nil || a.Publisher != nil {
		t.Error("redis should not be connected without REDIS_URL")
	}
}

// TestBuild_WithRedis verifies the queue and dedup are wired when configured.
func TestBuild_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.SuppressDuplicatesFor = time.Hour

	a, err := Build(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer a.Close()

	if a.Redis == nil || a.Publisher == nil {
		t.Fatal("redis and publisher should be wired")
	}
	if err := a.Publisher.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

// TestBuild_DryRunSkipsRedis verifies dry runs never touch Redis.
func TestBuild_DryRunSkipsRedis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"

	var out bytes.Buffer
	a, err := Build(context.Background(), cfg, Options{DryRun: true, Stdout: &out})
	if err != nil {
		t.Fatalf("dry run should not connect to redis: %v", err)
	}
	defer a.Close()
	if a.Redis != nil {
		t.Error("redis should be nil in dry-run mode")
	}
}

// TestBuild_BadRedisURL verifies an invalid URL is rejected.
func TestBuild_BadRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "not a url"

	if _, err := Build(context.Background(), cfg, Options{}); err == nil {
		t.Fatal("expected error")
	}
}

// TestNewAdsHTTPClient verifies the client carries a timeout.
func TestNewAdsHTTPClient(t *testing.T) {
	c := NewAdsHTTPClient(context.Background(), testConfig().Ads)
	if c.Timeout != apiTimeout {
		t.Errorf("timeout = %v, want %v", c.Timeout, apiTimeout)
	}
	if c.Transport == nil {
		t.Error("transport should be the oauth2 transport")
	}
}
