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

// Package ads provides a read-only client for the Google Ads REST API.
// All reads go through the GAQL search endpoint; the account being queried
// is always passed explicitly.
package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Client issues GAQL search requests on behalf of a manager account.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiVersion      string
	developerToken  string
	loginCustomerID string
}

// ClientConfig holds the settings for a Client.
type ClientConfig struct {
	BaseURL         string
	APIVersion      string
	DeveloperToken  string
	LoginCustomerID string
}

// NewClient creates an ads API client. The httpClient must already handle
// authentication (e.g. an oauth2 refresh-token client).
func NewClient(httpClient *http.Client, cfg ClientConfig) *Client {
	return &Client{
		httpClient:      httpClient,
		baseURL:         cfg.BaseURL,
		apiVersion:      cfg.APIVersion,
		developerToken:  cfg.DeveloperToken,
		loginCustomerID: cfg.LoginCustomerID,
	}
}

// APIError is a non-200 response from the ads API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ads API returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("ads API returned HTTP %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

// searchResponse represents one page of a googleAds:search response.
type searchResponse struct {
	Results       []searchRow `json:"results"`
	NextPageToken string      `json:"nextPageToken"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// search runs a GAQL query against one customer and returns every row,
// following nextPageToken until the result set is exhausted or a token
// repeats.
func (c *Client) search(ctx context.Context, customerID, query string) ([]searchRow, error) {
	url := fmt.Sprintf("%s/%s/customers/%s/googleAds:search", c.baseURL, c.apiVersion, customerID)

	var rows []searchRow
	pageToken := ""
	for page := 0; ; page++ {
		resp, err := c.searchPage(ctx, url, searchRequest{Query: query, PageToken: pageToken})
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}
		rows = append(rows, resp.Results...)

		slog.Debug("ads search page fetched",
			"customer_id", customerID,
			"page", page,
			"rows", len(resp.Results),
		)

		if resp.NextPageToken == "" {
			return rows, nil
		}
		if resp.NextPageToken == pageToken {
			slog.Warn("ads search returned a repeated page token, stopping",
				"customer_id", customerID,
				"page", page,
			)
			return rows, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (c *Client) searchPage(ctx context.Context, url string, body searchRequest) (*searchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", c.developerToken)
	if c.loginCustomerID != "" {
		req.Header.Set("login-customer-id", c.loginCustomerID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &page, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Status = parsed.Error.Status
		apiErr.Message = parsed.Error.Message
	} else {
		apiErr.Message = string(bytes.TrimSpace(body))
	}
	return apiErr
}
