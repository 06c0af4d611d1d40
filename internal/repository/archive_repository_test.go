package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SS-1985/archive-service/internal/model"
	"github.com/go-playground/assert/v2"
)

var insertQuery = regexp.QuoteMeta("ON CONFLICT (origin, type, external_id) DO NOTHING")

func newMockRepository(t *testing.T) (*ArchiveRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewArchiveRepository(conn), mock
}

func testItem() *model.Item {
	url := "https://example.com/pr/1"
	return &model.Item{
		Origin:      model.OriginFMP,
		Type:        model.TypePressRelease,
		ExternalID:  url,
		PublishedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		Title:       "Release",
		URL:         &url,
		ContentHash: "abc",
	}
}

func TestInsertSetsID(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(insertQuery).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	item := testItem()
	inserted, err := repo.Insert(context.Background(), item)

	assert.Equal(t, nil, err)
	assert.Equal(t, true, inserted)
	assert.Equal(t, int64(7), item.ID)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestInsertConflictIsDuplicate(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(insertQuery).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	item := testItem()
	inserted, err := repo.Insert(context.Background(), item)

	assert.Equal(t, nil, err)
	assert.Equal(t, false, inserted)
	assert.Equal(t, int64(0), item.ID)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestInsertDriverError(t *testing.T) {
	repo, mock := newMockRepository(t)
	driverErr := errors.New("connection reset")
	mock.ExpectQuery(insertQuery).WillReturnError(driverErr)

	inserted, err := repo.Insert(context.Background(), testItem())

	assert.Equal(t, false, inserted)
	assert.Equal(t, true, errors.Is(err, driverErr))
	assert.Equal(t, false, errors.Is(err, sql.ErrNoRows))
}

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows(itemColumns)
}

func TestSearchScansRowsAndDropsLookAhead(t *testing.T) {
	repo, mock := newMockRepository(t)
	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := itemRows().
		AddRow(int64(2), "polygon", "news", "n-1", "Reuters", []byte("{AAPL,MSFT}"), newer,
			"Title", "Summary", nil, "https://example.com/n/1", nil, nil, "h2").
		AddRow(int64(1), "fmp", "press_release", "https://example.com/pr/1", nil, []byte("{}"), older,
			"Release", nil, "Body", "https://example.com/pr/1", "https://example.com/i.png", nil, "h1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM archive_items")).WillReturnRows(rows)

	page, err := repo.Search(context.Background(), model.Filter{}, nil, 1)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(page.Items))

	it := page.Items[0]
	assert.Equal(t, int64(2), it.ID)
	assert.Equal(t, model.OriginPolygon, it.Origin)
	assert.Equal(t, model.TypeNews, it.Type)
	assert.Equal(t, "Reuters", *it.Source)
	assert.Equal(t, []string{"AAPL", "MSFT"}, it.Symbols)
	assert.Equal(t, "Summary", *it.Summary)
	assert.Equal(t, true, it.Body == nil)
	assert.Equal(t, true, it.ImageURL == nil)
	assert.Equal(t, true, it.Categories == nil)

	assert.NotEqual(t, nil, page.NextCursor)
	assert.Equal(t, int64(2), page.NextCursor.ID)
	assert.Equal(t, true, page.NextCursor.PublishedAt.Equal(newer))
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestSearchLastPageHasNoCursor(t *testing.T) {
	repo, mock := newMockRepository(t)
	rows := itemRows().
		AddRow(int64(1), "fmp", "press_release", "x", nil, []byte("{}"), time.Now(),
			"Release", nil, nil, nil, nil, nil, "h1")
	mock.ExpectQuery(regexp.QuoteMeta("FROM archive_items")).WillReturnRows(rows)

	page, err := repo.Search(context.Background(), model.Filter{}, nil, 20)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(page.Items))
	assert.Equal(t, true, page.NextCursor == nil)
	assert.Equal(t, true, page.Items[0].Source == nil)
}

func TestSearchQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM archive_items")).WillReturnError(errors.New("DB down"))

	_, err := repo.Search(context.Background(), model.Filter{}, nil, 20)

	assert.NotEqual(t, nil, err)
}

func TestStatsScansGroups(t *testing.T) {
	repo, mock := newMockRepository(t)
	earliest := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	latest := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY origin, type")).WillReturnRows(
		sqlmock.NewRows([]string{"origin", "type", "count", "min", "max"}).
			AddRow("fmp", "press_release", int64(12), earliest, latest))

	stats, err := repo.Stats(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(stats))
	assert.Equal(t, model.OriginFMP, stats[0].Origin)
	assert.Equal(t, 12, stats[0].Total)
	assert.Equal(t, latest, stats[0].Latest)
}

func TestEarliestOnEmptyArchive(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT min(published_at) FROM archive_items")).
		WillReturnRows(sqlmock.NewRows([]string{"min"}).AddRow(nil))

	earliest, err := repo.Earliest(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, true, earliest == nil)
}
