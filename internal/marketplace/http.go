package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"lotsweep/internal/common"
	"lotsweep/internal/model"
)

// HTTPClient implements Client against the marketplace REST API.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	retryOpts  common.RetryOptions
}

// API response types.
type categoriesResponse struct {
	Categories []categoryJSON `json:"categories"`
}

type categoryJSON struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

type listingsResponse struct {
	Listings []listingJSON `json:"listings"`
}

type listingJSON struct {
	Title    string `json:"title"`
	ID       int64  `json:"id"`
	Disabled bool   `json:"disabled"`
}

// NewHTTPClient creates a marketplace client for the given base URL and
// access token.
func NewHTTPClient(baseURL, authToken string) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: marketplace base URL is required", common.ErrMissingConfig)
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%w: marketplace base URL must be http(s): %s", common.ErrInvalidConfig, baseURL)
	}

	return &HTTPClient{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
	}, nil
}

// GetCategories fetches the user's listing categories.
func (c *HTTPClient) GetCategories(ctx context.Context) ([]model.Category, error) {
	var parsed categoriesResponse
	if err := c.getJSON(ctx, "/api/categories", &parsed); err != nil {
		return nil, err
	}

	categories := make([]model.Category, 0, len(parsed.Categories))
	for _, cat := range parsed.Categories {
		categories = append(categories, model.Category{ID: cat.ID, Name: cat.Name})
	}

	slog.Debug("fetched categories", "count", len(categories))
	return categories, nil
}

// GetListings fetches the current listings for one category.
func (c *HTTPClient) GetListings(ctx context.Context, categoryID int64) ([]model.Listing, error) {
	var parsed listingsResponse
	path := fmt.Sprintf("/api/categories/%d/listings", categoryID)
	if err := c.getJSON(ctx, path, &parsed); err != nil {
		return nil, err
	}

	listings := make([]model.Listing, 0, len(parsed.Listings))
	for _, listing := range parsed.Listings {
		listings = append(listings, model.Listing{
			ID:       listing.ID,
			Title:    listing.Title,
			Disabled: listing.Disabled,
		})
	}

	slog.Debug("fetched listings", "category_id", categoryID, "count", len(listings))
	return listings, nil
}

// DeleteListing removes a single listing. Deletes are deliberately not
// retried: a retry after an ambiguous failure could double-count against the
// service's rate limits for no benefit.
func (c *HTTPClient) DeleteListing(ctx context.Context, listingID int64) error {
	url := fmt.Sprintf("%s/api/listings/%d", c.baseURL, listingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelete, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: listing %d: %d - %s", common.ErrDelete, listingID, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// getJSON performs an authenticated GET with bounded retries for transient
// transport failures. Non-2xx responses are not retried.
func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		c.authorize(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return &common.RetryableError{
				Err:       fmt.Errorf("marketplace API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body))),
				Retryable: false,
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &common.RetryableError{
				Err:       fmt.Errorf("failed to decode response: %v", err),
				Retryable: false,
			}
		}
		return nil
	}

	if err := common.WithRetry(ctx, operation, c.retryOpts); err != nil {
		return fmt.Errorf("%w: %v", common.ErrFetch, err)
	}
	return nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}
