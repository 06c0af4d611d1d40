package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SS-1985/archive-service/internal/model"
	"github.com/gin-gonic/gin"
)

type ArchiveStore interface {
	Search(ctx context.Context, f model.Filter, cursor *model.Cursor, limit int) (model.Page, error)
	Stats(ctx context.Context) ([]model.OriginStats, error)
	Earliest(ctx context.Context) (*time.Time, error)
	Ping(ctx context.Context) error
}

type ArchiveHandler struct {
	repository ArchiveStore
}

func NewArchiveHandler(repository ArchiveStore) *ArchiveHandler {
	return &ArchiveHandler{repository: repository}
}

// GetArchive serves GET /archive.
func (h *ArchiveHandler) GetArchive(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit, err := getQueryLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cursor *model.Cursor
	if token := c.Query("cursor"); token != "" {
		decoded, err := model.DecodeCursor(token)
		if err != nil {
			slog.Warn("rejected cursor", "cursor", token, "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
			return
		}
		cursor = &decoded
	}

	page, err := h.repository.Search(c.Request.Context(), filter, cursor, limit)
	if err != nil {
		slog.Error("error searching archive", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]ItemResponse, 0, len(page.Items))
	for _, it := range page.Items {
		items = append(items, toItemResponse(it))
	}

	res := ArchiveResponse{Items: items}
	if page.NextCursor != nil {
		next := page.NextCursor.Encode()
		res.NextCursor = &next
	}

	c.JSON(http.StatusOK, res)
}

// GetStats serves GET /archive-stats.
func (h *ArchiveHandler) GetStats(c *gin.Context) {
	stats, err := h.repository.Stats(c.Request.Context())
	if err != nil {
		slog.Error("error fetching archive stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]StatsResponse, 0, len(stats))
	for _, s := range stats {
		res = append(res, StatsResponse{
			Origin:   string(s.Origin),
			Type:     string(s.Type),
			Total:    s.Total,
			Earliest: s.Earliest.UTC().Format(time.RFC3339),
			Latest:   s.Latest.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

// GetEarliest serves GET /archive-earliest.
func (h *ArchiveHandler) GetEarliest(c *gin.Context) {
	earliest, err := h.repository.Earliest(c.Request.Context())
	if err != nil {
		slog.Error("error fetching earliest item", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var res EarliestResponse
	if earliest != nil {
		s := earliest.UTC().Format(time.RFC3339)
		res.Earliest = &s
	}

	c.JSON(http.StatusOK, res)
}

func (h *ArchiveHandler) GetHealth(c *gin.Context) {
	if err := h.repository.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func toItemResponse(it model.Item) ItemResponse {
	symbols := it.Symbols
	if symbols == nil {
		symbols = []string{}
	}
	return ItemResponse{
		ID:          it.ID,
		Origin:      string(it.Origin),
		Type:        string(it.Type),
		ExternalID:  it.ExternalID,
		Source:      it.Source,
		Symbols:     symbols,
		PublishedAt: it.PublishedAt.UTC().Format(time.RFC3339),
		Title:       it.Title,
		Summary:     it.Summary,
		Body:        it.Body,
		URL:         it.URL,
		ImageURL:    it.ImageURL,
		Categories:  it.Categories,
		ContentHash: it.ContentHash,
	}
}

func parseFilter(c *gin.Context) (model.Filter, error) {
	var f model.Filter

	if v := strings.TrimSpace(c.Query("origin")); v != "" && v != model.FilterAll {
		origin, err := model.ParseOrigin(v)
		if err != nil {
			return f, err
		}
		f.Origin = origin
	}

	if v := strings.TrimSpace(c.Query("type")); v != "" && v != model.FilterAll {
		typ, err := model.ParseType(v)
		if err != nil {
			return f, err
		}
		f.Type = typ
	}

	from, err := parseBound(c.Query("from"), false)
	if err != nil {
		return f, fmt.Errorf("invalid from: %w", err)
	}
	to, err := parseBound(c.Query("to"), true)
	if err != nil {
		return f, fmt.Errorf("invalid to: %w", err)
	}
	if from != nil && to != nil && from.After(*to) {
		return f, fmt.Errorf("from must not be after to")
	}
	f.From, f.To = from, to

	if v := c.Query("hasImage"); v != "" {
		hasImage, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid hasImage %q", v)
		}
		f.HasImage = hasImage
	}

	f.Symbols = parseSymbols(c.Query("symbol"))
	f.Query = strings.TrimSpace(c.Query("q"))

	return f, nil
}

// parseBound accepts RFC 3339 or a plain date. A plain date used as an upper
// bound covers the whole day.
func parseBound(v string, upper bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		t = t.UTC()
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", v)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Microsecond)
	}
	return &t, nil
}

func parseSymbols(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}

	var symbols []string
	seen := map[string]bool{}
	for _, part := range strings.Split(v, ",") {
		s := strings.ToUpper(strings.TrimSpace(part))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	return symbols
}

func getQueryLimit(c *gin.Context) (int, error) {
	v := c.Query("limit")
	if v == "" {
		return model.DefaultPageLimit, nil
	}

	limit, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q", v)
	}

	if limit < 1 {
		return 1, nil
	}
	if limit > model.MaxPageLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", limit, "max", model.MaxPageLimit)
		return model.MaxPageLimit, nil
	}

	return limit, nil
}
