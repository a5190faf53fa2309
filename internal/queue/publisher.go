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

// Package queue publishes audit events to a Redis list so downstream
// consumers can read findings without parsing the email.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bcem/extaudit/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType identifies audit events on the findings list.
const EventType = "extaudit.audit_completed"

// Envelope wraps one event on the list. Consumers BRPOP and decode it.
type Envelope struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	PublishedAt string             `json:"published_at"`
	Event       *models.AuditEvent `json:"event"`
}

// Publisher pushes audit events onto a Redis list.
type Publisher struct {
	rdb       *redis.Client
	queueName string
	now       func() time.Time
}

// NewPublisher creates a new Redis publisher targeting the specified list.
func NewPublisher(rdb *redis.Client, queueName string) *Publisher {
	return &Publisher{
		rdb:       rdb,
		queueName: queueName,
		now:       time.Now,
	}
}

// PublishAuditEvent wraps an audit event in an Envelope and LPUSHes it, so
// a BRPOP consumer reads events oldest first.
func (p *Publisher) PublishAuditEvent(ctx context.Context, event *models.AuditEvent) error {
	env := Envelope{
		ID:          uuid.New().String(),
		Type:        EventType,
		PublishedAt: p.now().UTC().Format(time.RFC3339),
		Event:       event,
	}

	msg, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	if err := p.rdb.LPush(ctx, p.queueName, msg).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}

	slog.Info("published audit event to queue",
		"id", env.ID,
		"run_id", event.RunID,
		"accounts_with_issues", event.AccountsWithIssues,
		"queue", p.queueName,
	)

	return nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
