// Package normalize maps raw provider payloads onto model.Item.
//
// The functions never fail: missing or malformed fields become nil or empty.
// fetchedAt stands in for a missing publish timestamp.
package normalize

import (
	"strings"
	"time"

	"github.com/SS-1985/archive-service/internal/model"
	"github.com/SS-1985/archive-service/pkg/news"
)

var fmpDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// FMP normalizes a press release. The body keeps the full text and the summary
// stays unset.
func FMP(raw news.FMPPressRelease, fetchedAt time.Time) model.Item {
	title := strings.TrimSpace(raw.Title)
	body := optional(raw.Text)
	url := optional(raw.URL)

	source := optional(raw.Site)
	if source == nil {
		source = optional(raw.Source)
	}

	symbols := []string{}
	if s := strings.ToUpper(strings.TrimSpace(raw.Symbol)); s != "" {
		symbols = append(symbols, s)
	}

	return model.Item{
		Origin:      model.OriginFMP,
		Type:        model.TypePressRelease,
		ExternalID:  ExternalID("", value(url), title, value(source)),
		Source:      source,
		Symbols:     symbols,
		PublishedAt: parseTime(raw.Date, fmpDateLayouts, fetchedAt),
		Title:       title,
		Body:        body,
		URL:         url,
		ImageURL:    optional(raw.Image),
		ContentHash: ContentHash(title, value(body), value(url)),
	}
}

// Polygon normalizes a news article. The provider only has a description, so it
// lands in Summary and Body stays unset.
func Polygon(raw news.PolygonArticle, fetchedAt time.Time) model.Item {
	title := strings.TrimSpace(raw.Title)
	summary := optional(raw.Description)
	url := optional(raw.ArticleURL)
	source := optional(raw.Publisher.Name)

	return model.Item{
		Origin:      model.OriginPolygon,
		Type:        model.TypeNews,
		ExternalID:  ExternalID(raw.ID, value(url), title, value(source)),
		Source:      source,
		Symbols:     Symbols(raw.Tickers),
		PublishedAt: parseTime(raw.PublishedUTC, []string{time.RFC3339Nano}, fetchedAt),
		Title:       title,
		Summary:     summary,
		URL:         url,
		ImageURL:    optional(raw.ImageURL),
		ContentHash: ContentHash(title, value(summary), value(url)),
	}
}

// Symbols upper-cases and deduplicates tickers, keeping first-seen order.
func Symbols(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		s := strings.ToUpper(strings.TrimSpace(t))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func parseTime(s string, layouts []string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s != "" {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return fallback.UTC()
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
