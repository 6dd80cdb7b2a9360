package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client queries the availability service for a consultant's open slots on one
// date. Results are used to populate the time-slot step and to validate the
// selected slot; the wizard never caches them across consultant or date
// changes.
type Client interface {
	FetchSlots(ctx context.Context, consultantID, date, timezone string) ([]string, error)
}

// HTTPClient implements Client against the availability service's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewHTTPClient creates an availability service client.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) FetchSlots(ctx context.Context, consultantID, date, timezone string) ([]string, error) {
	query := url.Values{}
	query.Set("consultantId", consultantID)
	query.Set("date", date)
	if timezone != "" {
		query.Set("timezone", timezone)
	}

	endpoint := fmt.Sprintf("%s/v1/availability?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build availability request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("availability request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("availability service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Slots []string `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode availability response: %w", err)
	}
	return payload.Slots, nil
}
