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

// Package models defines the data structures shared across the audit service.
package models

// ExtensionType is the report tag for one category of ad extension.
type ExtensionType string

const (
	Sitelink  ExtensionType = "Sitelink"
	Call      ExtensionType = "Call"
	Callout   ExtensionType = "Callout"
	Location  ExtensionType = "Location"
	Price     ExtensionType = "Price"
	Image     ExtensionType = "Image"
	Promotion ExtensionType = "Promotion"
)

// Platform status values used by the audit filter.
const (
	StatusEnabled  = "ENABLED"
	StatusApproved = "APPROVED"
)

// Account is a managed advertising account. Read-only to this service.
type Account struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
}

// Extension is one extension row as returned by the ads platform.
type Extension struct {
	Type           ExtensionType `json:"type"`
	Text           string        `json:"text"`
	Status         string        `json:"status"`
	ApprovalStatus string        `json:"approval_status"`
}

// Disapproved reports whether the extension is enabled and not approved.
// Any approval state other than APPROVED counts, including pending review.
func (e Extension) Disapproved() bool {
	return e.Status == StatusEnabled && e.ApprovalStatus != StatusApproved
}

// Finding records one disapproved extension.
type Finding struct {
	Type              ExtensionType `json:"type"`
	Text              string        `json:"text"`
	DisapprovalReason string        `json:"disapproval_reason"`
}

// AccountFindings aggregates the findings for a single account.
type AccountFindings struct {
	Account                  Account   `json:"account"`
	HasDisapprovedExtensions bool      `json:"has_disapproved_extensions"`
	Findings                 []Finding `json:"findings"`
}

// Add appends findings and keeps the has-findings flag in sync.
func (a *AccountFindings) Add(findings ...Finding) {
	if len(findings) == 0 {
		return
	}
	a.Findings = append(a.Findings, findings...)
	a.HasDisapprovedExtensions = true
}

// WithFindings returns the records that carry at least one finding,
// preserving their order.
func WithFindings(records []AccountFindings) []AccountFindings {
	out := make([]AccountFindings, 0, len(records))
	for _, r := range records {
		if len(r.Findings) > 0 {
			out = append(out, r)
		}
	}
	return out
}
