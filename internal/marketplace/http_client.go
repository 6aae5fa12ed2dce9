package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/config"
	"github.com/stagepass/trust-safety/pkg/resilience"
)

// HTTPClient talks to the marketplace platform's internal JSON API. All
// calls go through a circuit breaker; a tripped breaker or transport failure
// surfaces as a dependency error that detection paths degrade on.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *resilience.Breaker
}

// Ensure the HTTP client satisfies the collaborator contract.
var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a marketplace client from configuration.
func NewHTTPClient(cfg *config.MarketplaceConfig) *HTTPClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: resilience.NewBreaker(
			resilience.BuildSettings("marketplace-api", 60, 30, 5, 1),
			resilience.GracefulDegradation("marketplace-api"),
		),
	}
}

// GetListing fetches a listing by id.
func (c *HTTPClient) GetListing(ctx context.Context, listingID uuid.UUID) (*Listing, error) {
	var listing Listing
	if err := c.getJSON(ctx, fmt.Sprintf("/listings/%s", listingID), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetUser fetches a user account by id.
func (c *HTTPClient) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	var user User
	if err := c.getJSON(ctx, fmt.Sprintf("/users/%s", userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CountListingsSince returns the number of listings a seller created after
// the given instant.
func (c *HTTPClient) CountListingsSince(ctx context.Context, sellerID uuid.UUID, since time.Time) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	path := fmt.Sprintf("/sellers/%s/listings/count?since=%s", sellerID, url.QueryEscape(since.Format(time.RFC3339)))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// ListSellerPrices returns the seller's historical asking prices for an
// event category.
func (c *HTTPClient) ListSellerPrices(ctx context.Context, sellerID uuid.UUID, eventCategory string) ([]float64, error) {
	var out struct {
		Prices []float64 `json:"prices"`
	}
	path := fmt.Sprintf("/sellers/%s/prices?category=%s", sellerID, url.QueryEscape(eventCategory))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Prices, nil
}

// ListActiveFingerprints returns image fingerprints of all active listings
// except the given one.
func (c *HTTPClient) ListActiveFingerprints(ctx context.Context, excludeListingID uuid.UUID) ([]Fingerprint, error) {
	var out struct {
		Fingerprints []Fingerprint `json:"fingerprints"`
	}
	path := fmt.Sprintf("/listings/fingerprints?exclude=%s", excludeListingID)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Fingerprints, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out interface{}) error {
	_, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, common.NewNotFoundError("marketplace entity not found", nil)
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("marketplace api returned status %d", resp.StatusCode)
		}

		return nil, json.NewDecoder(resp.Body).Decode(out)
	})

	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			return appErr
		}
		return common.NewDependencyError("marketplace lookup failed", err)
	}
	return nil
}
