// Package geocode resolves free-text locations to coordinates through an
// external geocoding service, fronted by an append-only persistent cache in
// the GeocodeCache sheet.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// Client is the external geocoder surface the cache depends on. Implemented
// by HTTPClient in production and by a hand-written mock in tests.
type Client interface {
	// Geocode resolves the address to a display name and coordinates.
	// Returns domain.ErrNotFound when the provider has no result; any other
	// error is a provider or transport failure.
	Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error)
}

// HTTPClient calls a Google-style geocoding endpoint:
// GET {baseURL}?address=...&key=... returning
// {"status": "...", "results": [{"formatted_address": ..., "geometry": {"location": {"lat": ..., "lng": ...}}}]}.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient constructs an HTTPClient for the given endpoint.
// httpClient may be nil, in which case a 10-second-timeout client is used.
func NewHTTPClient(baseURL, apiKey string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{baseURL: baseURL, apiKey: apiKey, client: httpClient}
}

var _ Client = (*HTTPClient)(nil)

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (c *HTTPClient) Geocode(ctx context.Context, address string) (domain.ResolvedLocation, error) {
	q := url.Values{}
	q.Set("address", address)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode.HTTPClient.Geocode: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode.HTTPClient.Geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode.HTTPClient.Geocode: provider returned %s", resp.Status)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode.HTTPClient.Geocode: decode: %w", err)
	}

	if body.Status != "OK" || len(body.Results) == 0 {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode.HTTPClient.Geocode: %q: %w", address, domain.ErrNotFound)
	}

	first := body.Results[0]
	return domain.ResolvedLocation{
		Name: first.FormattedAddress,
		Lat:  first.Geometry.Location.Lat,
		Lng:  first.Geometry.Location.Lng,
	}, nil
}
