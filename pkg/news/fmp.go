package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const fmpBaseURL = "https://financialmodelingprep.com"

const fmpDateLayout = "2006-01-02"

type FMPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewFMPClient(apiKey, baseURL string) *FMPClient {
	if baseURL == "" {
		baseURL = fmpBaseURL
	}
	return &FMPClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Range returns press releases dated within [from, to], both inclusive at day
// granularity.
func (c *FMPClient) Range(ctx context.Context, from, to time.Time) ([]FMPPressRelease, error) {
	params := url.Values{}
	params.Set("from", from.UTC().Format(fmpDateLayout))
	params.Set("to", to.UTC().Format(fmpDateLayout))
	return c.get(ctx, params)
}

func (c *FMPClient) Latest(ctx context.Context, limit int) ([]FMPPressRelease, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	return c.get(ctx, params)
}

func (c *FMPClient) get(ctx context.Context, params url.Values) ([]FMPPressRelease, error) {
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v3/press-releases?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fmp request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fmp fetch: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("fmp", resp); err != nil {
		return nil, err
	}

	var raw []FMPPressRelease
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fmp decode: %w", err)
	}

	return raw, nil
}
