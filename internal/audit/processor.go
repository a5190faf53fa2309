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

package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bcem/extaudit/internal/models"
)

// Processor runs every checker against one account.
type Processor struct {
	source   ExtensionSource
	checkers []Checker
}

// NewProcessor creates a processor using the standard Checkers table.
func NewProcessor(source ExtensionSource) *Processor {
	return &Processor{source: source, checkers: Checkers}
}

// ProcessAccount returns the findings record for an account. Findings are
// ordered by checker. The first checker error aborts the account.
func (p *Processor) ProcessAccount(ctx context.Context, account models.Account) (models.AccountFindings, error) {
	record := models.AccountFindings{Account: account}

	for _, c := range p.checkers {
		findings, err := c.Check(ctx, p.source, account)
		if err != nil {
			return record, fmt.Errorf("account %s: %w", account.CustomerID, err)
		}
		record.Add(findings...)
	}

	slog.Debug("account processed",
		"customer_id", account.CustomerID,
		"account", account.Name,
		"findings", len(record.Findings),
	)

	return record, nil
}
