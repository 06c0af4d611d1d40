package news

import (
	"fmt"
	"io"
	"net/http"
)

// PolygonArticle is the subset of a Polygon reference-news result the archive
// depends on.
type PolygonArticle struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	ArticleURL   string           `json:"article_url"`
	ImageURL     string           `json:"image_url"`
	PublishedUTC string           `json:"published_utc"`
	Tickers      []string         `json:"tickers"`
	Publisher    PolygonPublisher `json:"publisher"`
}

type PolygonPublisher struct {
	Name string `json:"name"`
}

// FMPPressRelease is one entry of the FMP press-releases endpoint.
type FMPPressRelease struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	URL    string `json:"url"`
	Image  string `json:"image"`
	Site   string `json:"site"`
	Source string `json:"source"`
}

func checkStatus(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 150))
	return fmt.Errorf("%s: unexpected status %d: %s", provider, resp.StatusCode, snippet)
}
