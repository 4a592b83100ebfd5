package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"iisa-recruitment-backend/internal/domain"
)

const DefaultGoogleEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// Provider performs the uncached lookup. (nil, nil) means the provider
// answered but found nothing.
type Provider interface {
	Lookup(ctx context.Context, address string) (*domain.LatLng, error)
}

type GoogleProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewGoogleProvider(apiKey, endpoint string) *GoogleProvider {
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	return &GoogleProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type googleResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location domain.LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (p *GoogleProvider) Lookup(ctx context.Context, address string) (*domain.LatLng, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode decode: %w", err)
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return nil, nil
	}
	pos := body.Results[0].Geometry.Location
	return &pos, nil
}
