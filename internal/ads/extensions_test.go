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
	"net/http"
	"strings"
	"testing"

	"github.com/bcem/extaudit/internal/models"
)

func assetRowJSON(asset map[string]any, approval string) map[string]any {
	asset["policySummary"] = map[string]any{"approvalStatus": approval}
	return map[string]any{
		"customerAsset": map[string]any{"status": "ENABLED"},
		"asset":         asset,
	}
}

func assetSetRowJSON(asset map[string]any, approval string) map[string]any {
	asset["policySummary"] = map[string]any{"approvalStatus": approval}
	return map[string]any{
		"assetSetAsset": map[string]any{"status": "ENABLED"},
		"asset":         asset,
	}
}

// TestListExtensions_TextAccessors verifies each category reads its own
// display field and the approval status verbatim.
func TestListExtensions_TextAccessors(t *testing.T) {
	tests := []struct {
		typ       models.ExtensionType
		wantQuery string
		row       map[string]any
		wantText  string
	}{
		{models.Sitelink, "customer_asset.field_type = 'SITELINK'",
			assetRowJSON(map[string]any{"sitelinkAsset": map[string]any{"linkText": "Shop Now"}}, "DISAPPROVED"), "Shop Now"},
		{models.Call, "customer_asset.field_type = 'CALL'",
			assetRowJSON(map[string]any{"callAsset": map[string]any{"phoneNumber": "+1 555 0100"}}, "DISAPPROVED"), "+1 555 0100"},
		{models.Callout, "customer_asset.field_type = 'CALLOUT'",
			assetRowJSON(map[string]any{"calloutAsset": map[string]any{"calloutText": "Free Shipping"}}, "DISAPPROVED"), "Free Shipping"},
		{models.Location, "asset_set.type = 'LOCATION_SYNC'",
			assetSetRowJSON(map[string]any{"name": "1 Main St, Springfield"}, "DISAPPROVED"), "1 Main St, Springfield"},
		{models.Price, "customer_asset.field_type = 'PRICE'",
			assetRowJSON(map[string]any{"priceAsset": map[string]any{"priceOfferings": []map[string]any{{"header": "Basic"}, {"header": "Pro"}}}}, "DISAPPROVED"), "Basic"},
		{models.Image, "customer_asset.field_type = 'AD_IMAGE'",
			assetRowJSON(map[string]any{"name": "hero.png"}, "DISAPPROVED"), "hero.png"},
		{models.Promotion, "customer_asset.field_type = 'PROMOTION'",
			assetRowJSON(map[string]any{"promotionAsset": map[string]any{"promotionTarget": "Summer Sale"}}, "DISAPPROVED"), "Summer Sale"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			c, fake := newTestClient(t, func(call searchCall) (int, any) {
				return http.StatusOK, results(tt.row)
			})

			exts, err := c.ListExtensions(context.Background(), "123", tt.typ)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(exts) != 1 {
				t.Fatalf("expected 1 extension, got %d", len(exts))
			}
			got := exts[0]
			if got.Type != tt.typ || got.Text != tt.wantText {
				t.Errorf("got %+v, want type %s text %q", got, tt.typ, tt.wantText)
			}
			if got.ApprovalStatus != "DISAPPROVED" || got.Status != "ENABLED" {
				t.Errorf("statuses not carried through: %+v", got)
			}

			calls := fake.recorded()
			if calls[0].Path != "/v17/customers/123/googleAds:search" {
				t.Errorf("extensions must be queried on the target account, got %s", calls[0].Path)
			}
			if !strings.Contains(calls[0].Query, tt.wantQuery) {
				t.Errorf("query missing %q: %s", tt.wantQuery, calls[0].Query)
			}
		})
	}
}

// TestExtensionQuery_Filters verifies the enabled / non-approved conditions.
func TestExtensionQuery_Filters(t *testing.T) {
	q := categories[models.Sitelink].Query

	for _, want := range []string{
		"FROM customer_asset",
		"customer_asset.status = 'ENABLED'",
		"asset.policy_summary.approval_status != 'APPROVED'",
		"asset.sitelink_asset.link_text",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}
	if strings.Count(categories[models.Image].Query, "asset.name") != 1 {
		t.Error("asset.name should be selected once for name-backed categories")
	}
}

// TestExtensionQuery_FieldTypes verifies every customer_asset query uses a
// field type the API accepts, and that location assets are read through
// business-profile sync asset sets.
func TestExtensionQuery_FieldTypes(t *testing.T) {
	valid := map[string]bool{
		"SITELINK": true, "CALL": true, "CALLOUT": true,
		"PRICE": true, "AD_IMAGE": true, "PROMOTION": true,
	}
	const marker = "customer_asset.field_type = '"

	for typ, cat := range categories {
		i := strings.Index(cat.Query, marker)
		if i < 0 {
			continue
		}
		rest := cat.Query[i+len(marker):]
		fieldType := rest[:strings.Index(rest, "'")]
		if !valid[fieldType] {
			t.Errorf("%s: unsupported field type %q", typ, fieldType)
		}
	}

	loc := categories[models.Location].Query
	for _, want := range []string{
		"FROM asset_set_asset",
		"asset_set.type = 'LOCATION_SYNC'",
		"asset_set_asset.status = 'ENABLED'",
		"asset.policy_summary.approval_status != 'APPROVED'",
	} {
		if !strings.Contains(loc, want) {
			t.Errorf("location query %q missing %q", loc, want)
		}
	}
	if strings.Contains(loc, "customer_asset") {
		t.Errorf("location query must not use customer_asset: %s", loc)
	}
}

// TestLocationText_Fallbacks verifies location rows never render blank text
// when the asset carries any identifying field.
func TestLocationText_Fallbacks(t *testing.T) {
	tests := []struct {
		name  string
		asset map[string]any
		want  string
	}{
		{"name", map[string]any{"name": "Downtown"}, "Downtown"},
		{"store code", map[string]any{"locationAsset": map[string]any{
			"businessProfileLocations": []map[string]any{{"storeCode": "STORE-42", "labels": []string{"north"}}},
		}}, "STORE-42"},
		{"label", map[string]any{"locationAsset": map[string]any{
			"businessProfileLocations": []map[string]any{{"labels": []string{"", "north"}}},
		}}, "north"},
		{"place id", map[string]any{"locationAsset": map[string]any{"placeId": "ChIJ123"}}, "ChIJ123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(call searchCall) (int, any) {
				return http.StatusOK, results(assetSetRowJSON(tt.asset, "DISAPPROVED"))
			})

			exts, err := c.ListExtensions(context.Background(), "123", models.Location)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(exts) != 1 || exts[0].Text != tt.want {
				t.Fatalf("got %+v, want text %q", exts, tt.want)
			}
			if exts[0].Status != "ENABLED" {
				t.Errorf("asset set link status not carried through: %+v", exts[0])
			}
		})
	}
}

// TestCategories_Complete verifies every extension type has a category.
func TestCategories_Complete(t *testing.T) {
	for _, typ := range []models.ExtensionType{
		models.Sitelink, models.Call, models.Callout, models.Location,
		models.Price, models.Image, models.Promotion,
	} {
		cat, ok := categories[typ]
		if !ok {
			t.Errorf("no category for %s", typ)
			continue
		}
		if cat.Type != typ || cat.Query == "" || cat.text == nil {
			t.Errorf("incomplete category for %s: %+v", typ, cat)
		}
	}
}

// TestListExtensions_Empty verifies zero rows is not an error.
func TestListExtensions_Empty(t *testing.T) {
	c, _ := newTestClient(t, func(call searchCall) (int, any) {
		return http.StatusOK, map[string]any{}
	})

	exts, err := c.ListExtensions(context.Background(), "123", models.Call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exts) != 0 {
		t.Errorf("expected no extensions, got %d", len(exts))
	}
}

// TestListExtensions_UnknownType verifies an unmapped type is rejected.
func TestListExtensions_UnknownType(t *testing.T) {
	c, fake := newTestClient(t, func(call searchCall) (int, any) {
		return http.StatusOK, results()
	})

	if _, err := c.ListExtensions(context.Background(), "123", models.ExtensionType("Lead Form")); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if len(fake.recorded()) != 0 {
		t.Error("no request should be issued for an unknown type")
	}
}
