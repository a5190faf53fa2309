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

// Package runlock serialises audit runs across replicas with a Postgres
// session-level advisory lock. No tables are created.
package runlock

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultName is the lock name used by the audit service.
const DefaultName = "extaudit:run"

// Lock is a named advisory lock.
type Lock struct {
	pool *pgxpool.Pool
	name string
	key  int64
}

// New creates a lock identified by name.
func New(pool *pgxpool.Pool, name string) *Lock {
	return &Lock{pool: pool, name: name, key: Key(name)}
}

// Key maps a lock name onto the 64-bit advisory lock space.
func Key(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}

// TryRun runs fn while holding the lock. If another session holds it, fn
// is not called and ran is false.
func (l *Lock) TryRun(ctx context.Context, fn func(context.Context) error) (ran bool, err error) {
	// Advisory locks belong to the session, so the same connection must
	// be used for lock and unlock.
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, l.key).Scan(&locked); err != nil {
		return false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !locked {
		slog.Info("run lock held by another instance, skipping", "lock", l.name)
		return false, nil
	}

	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, uerr := conn.Exec(unlockCtx, `SELECT pg_advisory_unlock($1)`, l.key); uerr != nil {
			slog.Warn("failed to release run lock", "lock", l.name, "error", uerr)
		}
	}()

	return true, fn(ctx)
}

// Ping checks the Postgres connection.
func (l *Lock) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return l.pool.Ping(ctx)
}
