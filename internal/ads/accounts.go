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

package ads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bcem/extaudit/internal/models"
)

// SelectAccounts returns the enabled client accounts under the manager
// whose applied labels include the named label. Canceled, suspended and
// closed accounts cannot be queried and are never returned.
//
// The label name is first resolved to its resource name on the manager
// account. An unknown label yields no accounts rather than an error.
func (c *Client) SelectAccounts(ctx context.Context, label string) ([]models.Account, error) {
	if c.loginCustomerID == "" {
		return nil, fmt.Errorf("select accounts: manager customer ID is not configured")
	}

	resources, err := c.resolveLabel(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("resolve label %q: %w", label, err)
	}
	if len(resources) == 0 {
		slog.Warn("label not found on manager account",
			"label", label,
			"manager_id", c.loginCustomerID,
		)
		return nil, nil
	}

	quoted := make([]string, len(resources))
	for i, r := range resources {
		quoted[i] = quote(r)
	}
	query := "SELECT customer_client.id, customer_client.descriptive_name, customer_client.manager, customer_client.status, customer_client.applied_labels " +
		"FROM customer_client WHERE customer_client.manager = FALSE AND customer_client.status = '" + models.StatusEnabled + "' " +
		"AND customer_client.applied_labels CONTAINS ANY (" + strings.Join(quoted, ", ") + ")"

	rows, err := c.search(ctx, c.loginCustomerID, query)
	if err != nil {
		return nil, fmt.Errorf("list client accounts: %w", err)
	}

	wanted := make(map[string]bool, len(resources))
	for _, r := range resources {
		wanted[r] = true
	}

	var accounts []models.Account
	for _, row := range rows {
		cc := row.CustomerClient
		if cc == nil || cc.Manager || cc.Status != models.StatusEnabled || !hasAnyLabel(cc.AppliedLabels, wanted) {
			continue
		}
		if acct, ok := parseAccount(row); ok {
			accounts = append(accounts, acct)
		}
	}

	slog.Info("account selection complete",
		"label", label,
		"accounts", len(accounts),
	)

	return accounts, nil
}

// resolveLabel returns the resource names of labels with the given name.
func (c *Client) resolveLabel(ctx context.Context, name string) ([]string, error) {
	query := "SELECT label.resource_name, label.name FROM label WHERE label.name = " + quote(name)

	rows, err := c.search(ctx, c.loginCustomerID, query)
	if err != nil {
		return nil, err
	}

	var resources []string
	for _, row := range rows {
		if row.Label != nil && row.Label.Name == name && row.Label.ResourceName != "" {
			resources = append(resources, row.Label.ResourceName)
		}
	}
	return resources, nil
}

func hasAnyLabel(applied []string, wanted map[string]bool) bool {
	for _, l := range applied {
		if wanted[l] {
			return true
		}
	}
	return false
}

// quote renders s as a single-quoted GAQL string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
