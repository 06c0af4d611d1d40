package repository

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SS-1985/archive-service/internal/model"
	"github.com/lib/pq"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var itemColumns = []string{
	"id", "origin", "type", "external_id", "source", "symbols", "published_at",
	"title", "summary", "body", "url", "image_url", "categories", "content_hash",
}

// buildSearch returns the page query. It selects limit+1 rows so the caller can
// tell whether another page exists.
func buildSearch(f model.Filter, cursor *model.Cursor, limit int) sq.SelectBuilder {
	q := psql.Select(itemColumns...).From("archive_items")

	if f.Origin != "" {
		q = q.Where(sq.Eq{"origin": string(f.Origin)})
	}
	if f.Type != "" {
		q = q.Where(sq.Eq{"type": string(f.Type)})
	}
	if f.From != nil {
		q = q.Where(sq.GtOrEq{"published_at": f.From.UTC()})
	}
	if f.To != nil {
		q = q.Where(sq.LtOrEq{"published_at": f.To.UTC()})
	}
	if f.HasImage {
		q = q.Where("image_url IS NOT NULL AND image_url <> ''")
	}
	if len(f.Symbols) > 0 {
		q = q.Where(sq.Expr("symbols && ?", pq.Array(f.Symbols)))
	}
	if f.Query != "" {
		q = q.Where(sq.Expr("search @@ plainto_tsquery('english', ?)", f.Query))
	}

	// Row-value comparison keeps ties on published_at ordered by id.
	if cursor != nil {
		q = q.Where(sq.Expr("(published_at, id) < (?, ?)", cursor.PublishedAt.UTC().Truncate(time.Microsecond), cursor.ID))
	}

	return q.OrderBy("published_at DESC", "id DESC").Limit(uint64(limit + 1))
}

func buildStats() sq.SelectBuilder {
	return psql.
		Select("origin", "type", "count(*)", "min(published_at)", "max(published_at)").
		From("archive_items").
		GroupBy("origin", "type").
		OrderBy("origin", "type")
}
