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
	"strings"

	"github.com/bcem/extaudit/internal/models"
)

// category describes how one extension type is queried and displayed.
type category struct {
	Type  models.ExtensionType
	Query string // GAQL returning enabled, non-approved rows of this type
	text  func(*assetRow) string
}

var categories = map[models.ExtensionType]category{
	models.Sitelink: {
		Type:  models.Sitelink,
		Query: customerAssetQuery("SITELINK", "asset.sitelink_asset.link_text"),
		text:  func(a *assetRow) string { return a.SitelinkAsset.LinkText },
	},
	models.Call: {
		Type:  models.Call,
		Query: customerAssetQuery("CALL", "asset.call_asset.phone_number"),
		text:  func(a *assetRow) string { return a.CallAsset.PhoneNumber },
	},
	models.Callout: {
		Type:  models.Callout,
		Query: customerAssetQuery("CALLOUT", "asset.callout_asset.callout_text"),
		text:  func(a *assetRow) string { return a.CalloutAsset.CalloutText },
	},
	models.Location: {
		Type:  models.Location,
		Query: locationQuery(),
		text:  locationText,
	},
	models.Price: {
		Type:  models.Price,
		Query: customerAssetQuery("PRICE", "asset.price_asset.price_offerings"),
		text: func(a *assetRow) string {
			if len(a.PriceAsset.PriceOfferings) == 0 {
				return ""
			}
			return a.PriceAsset.PriceOfferings[0].Header
		},
	},
	models.Image: {
		Type:  models.Image,
		Query: customerAssetQuery("AD_IMAGE", "asset.name"),
		text:  func(a *assetRow) string { return a.Name },
	},
	models.Promotion: {
		Type:  models.Promotion,
		Query: customerAssetQuery("PROMOTION", "asset.promotion_asset.promotion_target"),
		text:  func(a *assetRow) string { return a.PromotionAsset.PromotionTarget },
	},
}

// customerAssetQuery selects account-level asset links of one field type.
func customerAssetQuery(fieldType, textField string) string {
	fields := []string{
		"customer_asset.status",
		"customer_asset.field_type",
		"asset.resource_name",
		"asset.policy_summary.approval_status",
	}
	if textField != "asset.name" {
		fields = append(fields, "asset.name")
	}
	fields = append(fields, textField)

	return fmt.Sprintf(
		"SELECT %s FROM customer_asset WHERE customer_asset.field_type = '%s' AND customer_asset.status = '%s' AND asset.policy_summary.approval_status != '%s'",
		strings.Join(fields, ", "), fieldType, models.StatusEnabled, models.StatusApproved,
	)
}

// locationQuery selects location assets. They are not linked through
// customer_asset; they belong to business-profile sync asset sets.
func locationQuery() string {
	fields := []string{
		"asset_set_asset.status",
		"asset_set.type",
		"asset.resource_name",
		"asset.name",
		"asset.policy_summary.approval_status",
		"asset.location_asset.place_id",
		"asset.location_asset.business_profile_locations",
	}
	return fmt.Sprintf(
		"SELECT %s FROM asset_set_asset WHERE asset_set.type = 'LOCATION_SYNC' AND asset_set.status = '%s' AND asset_set_asset.status = '%s' AND asset.policy_summary.approval_status != '%s'",
		strings.Join(fields, ", "), models.StatusEnabled, models.StatusEnabled, models.StatusApproved,
	)
}

// locationText prefers the asset name, then the business profile store
// code or label, then the place ID.
func locationText(a *assetRow) string {
	if a.Name != "" {
		return a.Name
	}
	for _, loc := range a.LocationAsset.BusinessProfileLocations {
		if loc.StoreCode != "" {
			return loc.StoreCode
		}
		for _, label := range loc.Labels {
			if label != "" {
				return label
			}
		}
	}
	return a.LocationAsset.PlaceID
}

// ListExtensions returns the enabled, non-approved extensions of the given
// type for one customer. An empty result is not an error.
func (c *Client) ListExtensions(ctx context.Context, customerID string, t models.ExtensionType) ([]models.Extension, error) {
	cat, ok := categories[t]
	if !ok {
		return nil, fmt.Errorf("unknown extension type %q", t)
	}

	rows, err := c.search(ctx, customerID, cat.Query)
	if err != nil {
		return nil, fmt.Errorf("list %s extensions for %s: %w", t, customerID, err)
	}

	exts := make([]models.Extension, 0, len(rows))
	for _, row := range rows {
		if ext, ok := parseExtension(row, cat); ok {
			exts = append(exts, ext)
		}
	}
	return exts, nil
}
