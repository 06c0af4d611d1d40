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

const polygonBaseURL = "https://api.polygon.io"

type PolygonClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewPolygonClient(apiKey, baseURL string) *PolygonClient {
	if baseURL == "" {
		baseURL = polygonBaseURL
	}
	return &PolygonClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PolygonQuery selects one page of reference news, newest first.
type PolygonQuery struct {
	Limit int
	// PublishedGTE is a lower bound on published_utc; zero means unbounded.
	PublishedGTE time.Time
	Cursor       string
}

type PolygonPage struct {
	Results []PolygonArticle
	// NextCursor is empty when the provider has no further page.
	NextCursor string
}

func (c *PolygonClient) Page(ctx context.Context, q PolygonQuery) (PolygonPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("order", "desc")
	params.Set("sort", "published_utc")
	params.Set("apiKey", c.apiKey)
	if !q.PublishedGTE.IsZero() {
		params.Set("published_utc.gte", q.PublishedGTE.UTC().Format(time.RFC3339))
	}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/reference/news?"+params.Encode(), nil)
	if err != nil {
		return PolygonPage{}, fmt.Errorf("polygon request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PolygonPage{}, fmt.Errorf("polygon fetch: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("polygon", resp); err != nil {
		return PolygonPage{}, err
	}

	var raw polygonResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return PolygonPage{}, fmt.Errorf("polygon decode: %w", err)
	}

	return PolygonPage{
		Results:    raw.Results,
		NextCursor: cursorFromNextURL(raw.NextURL),
	}, nil
}

// Latest returns the newest limit articles regardless of age.
func (c *PolygonClient) Latest(ctx context.Context, limit int) ([]PolygonArticle, error) {
	page, err := c.Page(ctx, PolygonQuery{Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func cursorFromNextURL(next string) string {
	if next == "" {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil {
		return ""
	}
	return u.Query().Get("cursor")
}

type polygonResponse struct {
	Results []PolygonArticle `json:"results"`
	NextURL string           `json:"next_url"`
}
