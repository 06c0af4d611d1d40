package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SS-1985/archive-service/internal/model"
	"github.com/lib/pq"
)

type ArchiveRepository struct {
	db *sql.DB
}

func NewArchiveRepository(db *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Insert stores item unless its (origin, type, external_id) already exists.
// It reports false without an error for an existing identity; the row is never
// updated. On insert item.ID is set.
func (r *ArchiveRepository) Insert(ctx context.Context, item *model.Item) (bool, error) {
	symbols := item.Symbols
	if symbols == nil {
		symbols = []string{}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO archive_items
			(origin, type, external_id, source, symbols, published_at, title, summary, body, url, image_url, categories, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (origin, type, external_id) DO NOTHING
		RETURNING id
	`, item.Origin, item.Type, item.ExternalID, item.Source, pq.Array(symbols), item.PublishedAt,
		item.Title, item.Summary, item.Body, item.URL, item.ImageURL, pq.Array(item.Categories), item.ContentHash).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("insert archive item: %w", err)
	}

	item.ID = id
	return true, nil
}

// Search returns one page ordered by (published_at DESC, id DESC).
func (r *ArchiveRepository) Search(ctx context.Context, f model.Filter, cursor *model.Cursor, limit int) (model.Page, error) {
	query, args, err := buildSearch(f, cursor, limit).ToSql()
	if err != nil {
		return model.Page{}, fmt.Errorf("build search: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return model.Page{}, fmt.Errorf("search archive: %w", err)
	}
	defer rows.Close()

	items := make([]model.Item, 0, limit+1)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return model.Page{}, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return model.Page{}, fmt.Errorf("search archive: %w", err)
	}

	return paginate(items, limit), nil
}

// paginate drops the look-ahead row and derives the next cursor from the last
// returned item.
func paginate(items []model.Item, limit int) model.Page {
	if len(items) <= limit {
		return model.Page{Items: items}
	}

	items = items[:limit]
	next := model.CursorFor(items[len(items)-1])
	return model.Page{Items: items, NextCursor: &next}
}

func (r *ArchiveRepository) Stats(ctx context.Context) ([]model.OriginStats, error) {
	query, args, err := buildStats().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive stats: %w", err)
	}
	defer rows.Close()

	stats := []model.OriginStats{}
	for rows.Next() {
		var s model.OriginStats
		if err := rows.Scan(&s.Origin, &s.Type, &s.Total, &s.Earliest, &s.Latest); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive stats: %w", err)
	}

	return stats, nil
}

// Earliest returns the oldest published_at, or nil for an empty archive.
func (r *ArchiveRepository) Earliest(ctx context.Context) (*time.Time, error) {
	var earliest sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT min(published_at) FROM archive_items`).Scan(&earliest)
	if err != nil {
		return nil, fmt.Errorf("archive earliest: %w", err)
	}

	if !earliest.Valid {
		return nil, nil
	}

	t := earliest.Time.UTC()
	return &t, nil
}

func (r *ArchiveRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanItem(rows *sql.Rows) (model.Item, error) {
	var item model.Item
	var source, summary, body, url, imageURL sql.NullString

	err := rows.Scan(
		&item.ID, &item.Origin, &item.Type, &item.ExternalID, &source,
		pq.Array(&item.Symbols), &item.PublishedAt, &item.Title, &summary, &body,
		&url, &imageURL, pq.Array(&item.Categories), &item.ContentHash,
	)
	if err != nil {
		return model.Item{}, fmt.Errorf("scan archive item: %w", err)
	}

	item.Source = nullable(source)
	item.Summary = nullable(summary)
	item.Body = nullable(body)
	item.URL = nullable(url)
	item.ImageURL = nullable(imageURL)
	item.PublishedAt = item.PublishedAt.UTC()

	return item, nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
