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

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLabel        = "TB_Script"
	DefaultSubject      = "Disapproved Ad Extensions Report"
	DefaultAdsBaseURL   = "https://googleads.googleapis.com"
	DefaultAdsVersion   = "v17"
	DefaultFindingsList = "extaudit:findings"
)

// AdsConfig holds credentials for the ads platform API.
type AdsConfig struct {
	BaseURL         string
	APIVersion      string
	DeveloperToken  string
	LoginCustomerID string // manager account that owns the label
	ClientID        string
	ClientSecret    string
	RefreshToken    string
}

// SMTPConfig holds the outbound mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
	FromName string
}

// Config holds all configuration for the audit service.
type Config struct {
	Ads  AdsConfig
	SMTP SMTPConfig

	// Audit
	Label      string
	Recipients []string
	Subject    string

	// SuppressDuplicatesFor skips re-sending an identical report body
	// within the window. Zero disables suppression.
	SuppressDuplicatesFor time.Duration

	// Redis (optional: dedup + findings queue)
	RedisURL      string
	FindingsQueue string

	// Postgres (optional: run lock for the scheduled server)
	DatabaseURL string

	// Server
	AuditInterval time.Duration
	Port          int
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Audit struct {
		Label    string `yaml:"label"`
		Interval string `yaml:"interval"`
	} `yaml:"audit"`
	Ads struct {
		BaseURL         string `yaml:"base_url"`
		APIVersion      string `yaml:"api_version"`
		DeveloperToken  string `yaml:"developer_token"`
		LoginCustomerID string `yaml:"login_customer_id"`
		ClientID        string `yaml:"client_id"`
		ClientSecret    string `yaml:"client_secret"`
		RefreshToken    string `yaml:"refresh_token"`
	} `yaml:"ads"`
	Report struct {
		Subject               string   `yaml:"subject"`
		Recipients            []string `yaml:"recipients"`
		SuppressDuplicatesFor string   `yaml:"suppress_duplicates_for"`
	} `yaml:"report"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		FromName string `yaml:"from_name"`
	} `yaml:"smtp"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			Findings string `yaml:"findings"`
		} `yaml:"queues"`
	} `yaml:"redis"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables for non-YAML settings. A .env file in the working
// directory is applied to the environment first, if present.
func Load() (*Config, error) {
	loadDotEnv(".env")

	configPath := envOrDefault("CONFIG_PATH", "/app/config/config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse builds a Config from raw YAML. ${VAR} references are expanded
// from the environment before decoding.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}

	suppress, err := parseDuration(raw.Report.SuppressDuplicatesFor, envOrDefaultDuration("SUPPRESS_DUPLICATES_FOR", 0))
	if err != nil {
		return nil, fmt.Errorf("parse report.suppress_duplicates_for: %w", err)
	}
	interval, err := parseDuration(raw.Audit.Interval, envOrDefaultDuration("AUDIT_INTERVAL", 24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("parse audit.interval: %w", err)
	}

	cfg := &Config{
		Ads: AdsConfig{
			BaseURL:         strings.TrimRight(firstNonEmpty(raw.Ads.BaseURL, envOrDefault("ADS_BASE_URL", DefaultAdsBaseURL)), "/"),
			APIVersion:      firstNonEmpty(raw.Ads.APIVersion, envOrDefault("ADS_API_VERSION", DefaultAdsVersion)),
			DeveloperToken:  firstNonEmpty(raw.Ads.DeveloperToken, os.Getenv("ADS_DEVELOPER_TOKEN")),
			LoginCustomerID: NormalizeCustomerID(firstNonEmpty(raw.Ads.LoginCustomerID, os.Getenv("ADS_LOGIN_CUSTOMER_ID"))),
			ClientID:        firstNonEmpty(raw.Ads.ClientID, os.Getenv("ADS_CLIENT_ID")),
			ClientSecret:    firstNonEmpty(raw.Ads.ClientSecret, os.Getenv("ADS_CLIENT_SECRET")),
			RefreshToken:    firstNonEmpty(raw.Ads.RefreshToken, os.Getenv("ADS_REFRESH_TOKEN")),
		},
		SMTP: SMTPConfig{
			Host:     firstNonEmpty(raw.SMTP.Host, os.Getenv("SMTP_HOST")),
			Port:     firstNonEmpty(raw.SMTP.Port, envOrDefault("SMTP_PORT", "587")),
			User:     firstNonEmpty(raw.SMTP.User, os.Getenv("SMTP_USER")),
			Password: firstNonEmpty(raw.SMTP.Password, os.Getenv("SMTP_PASSWORD")),
			From:     firstNonEmpty(raw.SMTP.From, envOrDefault("FROM_EMAIL", "noreply@example.com")),
			FromName: firstNonEmpty(raw.SMTP.FromName, os.Getenv("FROM_NAME")),
		},
		Label:                 firstNonEmpty(raw.Audit.Label, envOrDefault("AUDIT_LABEL", DefaultLabel)),
		Recipients:            cleanList(raw.Report.Recipients),
		Subject:               firstNonEmpty(raw.Report.Subject, envOrDefault("REPORT_SUBJECT", DefaultSubject)),
		SuppressDuplicatesFor: suppress,
		RedisURL:              firstNonEmpty(raw.Redis.URL, os.Getenv("REDIS_URL")),
		FindingsQueue:         firstNonEmpty(raw.Redis.Queues.Findings, envOrDefault("FINDINGS_QUEUE", DefaultFindingsList)),
		DatabaseURL:           firstNonEmpty(raw.Database.URL, os.Getenv("DATABASE_URL")),
		AuditInterval:         interval,
		Port:                  envOrDefaultInt("PORT", 8080),
	}

	if len(cfg.Recipients) == 0 {
		cfg.Recipients = cleanList(strings.Split(os.Getenv("REPORT_RECIPIENTS"), ","))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error
	required := []struct {
		name, value string
	}{
		{"ads.developer_token", c.Ads.DeveloperToken},
		{"ads.login_customer_id", c.Ads.LoginCustomerID},
		{"ads.client_id", c.Ads.ClientID},
		{"ads.client_secret", c.Ads.ClientSecret},
		{"ads.refresh_token", c.Ads.RefreshToken},
		{"smtp.host", c.SMTP.Host},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}
	if len(c.Recipients) == 0 {
		errs = append(errs, errors.New("report.recipients must list at least one address"))
	}
	if c.AuditInterval <= 0 {
		errs = append(errs, errors.New("audit.interval must be positive"))
	}
	return errors.Join(errs...)
}

// NormalizeCustomerID strips the dashes from a "123-456-7890" style ID.
func NormalizeCustomerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	// Load does not override variables already set in the process.
	if err := godotenv.Load(path); err != nil {
		slog.Warn("failed to load env file", "path", path, "error", err)
	}
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return time.ParseDuration(strings.TrimSpace(raw))
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
