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

// Package audit checks labelled accounts for disapproved ad extensions and
// hands the collected findings to the report dispatcher.
package audit

import (
	"context"
	"fmt"

	"github.com/bcem/extaudit/internal/models"
)

// ExtensionSource lists the extensions of one type for an account.
// Implemented by ads.Client.
type ExtensionSource interface {
	ListExtensions(ctx context.Context, customerID string, t models.ExtensionType) ([]models.Extension, error)
}

// Checker finds disapproved extensions of a single type.
type Checker struct {
	Type models.ExtensionType
}

// Checkers is the fixed set of checks, in report order.
var Checkers = []Checker{
	{Type: models.Sitelink},
	{Type: models.Call},
	{Type: models.Callout},
	{Type: models.Location},
	{Type: models.Price},
	{Type: models.Image},
	{Type: models.Promotion},
}

// Check returns one finding per enabled, non-approved extension of the
// checker's type. The approval status is used verbatim as the reason.
func (c Checker) Check(ctx context.Context, src ExtensionSource, account models.Account) ([]models.Finding, error) {
	exts, err := src.ListExtensions(ctx, account.CustomerID, c.Type)
	if err != nil {
		return nil, fmt.Errorf("check %s extensions: %w", c.Type, err)
	}

	var findings []models.Finding
	for _, ext := range exts {
		if !ext.Disapproved() {
			continue
		}
		findings = append(findings, models.Finding{
			Type:              c.Type,
			Text:              ext.Text,
			DisapprovalReason: ext.ApprovalStatus,
		})
	}
	return findings, nil
}
