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

package models

// AuditEvent summarises one audit run for downstream consumers of the
// findings queue.
//
// Consumers decode this JSON directly; field names are part of the contract.
type AuditEvent struct {
	RunID              string            `json:"run_id"`
	Label              string            `json:"label"`
	GeneratedAt        string            `json:"generated_at"`
	AccountsScanned    int               `json:"accounts_scanned"`
	AccountsWithIssues int               `json:"accounts_with_issues"`
	TotalFindings      int               `json:"total_findings"`
	Accounts           []AccountFindings `json:"accounts"`
}
