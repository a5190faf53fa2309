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

// Package report renders audit findings as a plaintext email and sends it.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bcem/extaudit/internal/models"
)

// Title is the first line of every report body.
const Title = "Disapproved Ad Extensions Report"

const separator = "----------------------------------------"

// Format renders the report body. Accounts and findings appear in the
// order given.
func Format(reports []models.AccountFindings) string {
	var b strings.Builder
	b.WriteString(Title + "\n\n")

	for _, r := range reports {
		fmt.Fprintf(&b, "Account: %s (%s)\n", r.Account.Name, r.Account.CustomerID)
		b.WriteString(separator + "\n")

		for _, f := range r.Findings {
			fmt.Fprintf(&b, "Type: %s\n", f.Type)
			fmt.Fprintf(&b, "Text: %s\n", f.Text)
			fmt.Fprintf(&b, "Disapproval Reason: %s\n\n", f.DisapprovalReason)
		}

		b.WriteString("\n")
	}

	return b.String()
}

// Fingerprint identifies a report body for duplicate suppression.
func Fingerprint(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
