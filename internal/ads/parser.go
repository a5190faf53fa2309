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
	"github.com/bcem/extaudit/internal/models"
)

// searchRow represents the relevant fields of one GAQL result row. Only the
// resources named in the query's SELECT clause are populated.
type searchRow struct {
	Label *struct {
		ResourceName string `json:"resourceName"`
		Name         string `json:"name"`
	} `json:"label"`

	CustomerClient *struct {
		ID              string   `json:"id"` // int64 is encoded as a JSON string
		DescriptiveName string   `json:"descriptiveName"`
		Manager         bool     `json:"manager"`
		Status          string   `json:"status"`
		AppliedLabels   []string `json:"appliedLabels"`
	} `json:"customerClient"`

	CustomerAsset *struct {
		Status    string `json:"status"`
		FieldType string `json:"fieldType"`
	} `json:"customerAsset"`

	AssetSetAsset *struct {
		Status string `json:"status"`
	} `json:"assetSetAsset"`

	Asset *assetRow `json:"asset"`
}

type assetRow struct {
	ResourceName  string `json:"resourceName"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	PolicySummary struct {
		ApprovalStatus string `json:"approvalStatus"`
	} `json:"policySummary"`
	SitelinkAsset struct {
		LinkText string `json:"linkText"`
	} `json:"sitelinkAsset"`
	CallAsset struct {
		PhoneNumber string `json:"phoneNumber"`
	} `json:"callAsset"`
	CalloutAsset struct {
		CalloutText string `json:"calloutText"`
	} `json:"calloutAsset"`
	PriceAsset struct {
		PriceOfferings []struct {
			Header string `json:"header"`
		} `json:"priceOfferings"`
	} `json:"priceAsset"`
	PromotionAsset struct {
		PromotionTarget string `json:"promotionTarget"`
	} `json:"promotionAsset"`
	LocationAsset struct {
		PlaceID                  string `json:"placeId"`
		BusinessProfileLocations []struct {
			Labels    []string `json:"labels"`
			StoreCode string   `json:"storeCode"`
		} `json:"businessProfileLocations"`
	} `json:"locationAsset"`
}

// parseAccount converts a customer_client row into an Account.
func parseAccount(row searchRow) (models.Account, bool) {
	if row.CustomerClient == nil || row.CustomerClient.ID == "" {
		return models.Account{}, false
	}
	return models.Account{
		CustomerID: row.CustomerClient.ID,
		Name:       row.CustomerClient.DescriptiveName,
	}, true
}

// parseExtension converts a customer_asset or asset_set_asset row into an
// Extension using the category's text accessor.
func parseExtension(row searchRow, cat category) (models.Extension, bool) {
	if row.Asset == nil {
		return models.Extension{}, false
	}
	ext := models.Extension{
		Type:           cat.Type,
		Text:           cat.text(row.Asset),
		ApprovalStatus: row.Asset.PolicySummary.ApprovalStatus,
	}
	switch {
	case row.CustomerAsset != nil:
		ext.Status = row.CustomerAsset.Status
	case row.AssetSetAsset != nil:
		ext.Status = row.AssetSetAsset.Status
	}
	return ext, true
}
