package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/SS-1985/archive-service/internal/model"
	"github.com/SS-1985/archive-service/pkg/news"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type identity struct {
	origin     model.Origin
	typ        model.Type
	externalID string
}

// memStore mimics the unique (origin, type, external_id) constraint.
type memStore struct {
	mu     sync.Mutex
	rows   map[identity]model.Item
	nextID int64
	failOn map[string]bool
}

func newMemStore() *memStore {
	return &memStore{rows: map[identity]model.Item{}, failOn: map[string]bool{}}
}

func (s *memStore) Insert(ctx context.Context, item *model.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOn[item.ExternalID] {
		return false, errors.New("value too long for type character varying")
	}

	key := identity{item.Origin, item.Type, item.ExternalID}
	if _, ok := s.rows[key]; ok {
		return false, nil
	}

	s.nextID++
	item.ID = s.nextID
	s.rows[key] = *item
	return true, nil
}

func (s *memStore) items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Item, 0, len(s.rows))
	for _, it := range s.rows {
		out = append(out, it)
	}
	return out
}

func (s *memStore) get(origin model.Origin, externalID string) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.rows[identity{origin, model.TypeOf(origin), externalID}]
	return it, ok
}

type fakePublisher struct {
	mu  sync.Mutex
	ids []int64
	err error
}

func (p *fakePublisher) PublishInserted(ctx context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
	return p.err
}

type fakePolygon struct {
	mu       sync.Mutex
	pages    map[string]news.PolygonPage
	failures map[string]int
	latest   []news.PolygonArticle
	err      error
	queries  []news.PolygonQuery
}

func (f *fakePolygon) Page(ctx context.Context, q news.PolygonQuery) (news.PolygonPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, q)
	if f.failures[q.Cursor] > 0 {
		f.failures[q.Cursor]--
		return news.PolygonPage{}, errors.New("polygon: unexpected status 502")
	}
	return f.pages[q.Cursor], nil
}

func (f *fakePolygon) Latest(ctx context.Context, limit int) ([]news.PolygonArticle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, news.PolygonQuery{Limit: limit})
	return f.latest, f.err
}

type window struct{ from, to string }

type fakeFMP struct {
	mu       sync.Mutex
	releases []news.FMPPressRelease
	failFrom map[string]bool
	latest   []news.FMPPressRelease
	err      error
	windows  []window
	limits   []int
}

func (f *fakeFMP) Range(ctx context.Context, from, to time.Time) ([]news.FMPPressRelease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := window{from.Format("2006-01-02"), to.Format("2006-01-02")}
	f.windows = append(f.windows, w)
	if f.failFrom[w.from] {
		return nil, errors.New("fmp: unexpected status 500")
	}

	var out []news.FMPPressRelease
	for _, r := range f.releases {
		day := r.Date[:10]
		if day >= w.from && day <= w.to {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFMP) Latest(ctx context.Context, limit int) ([]news.FMPPressRelease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.limits = append(f.limits, limit)
	return f.latest, f.err
}

func polygonArticle(id, published string) news.PolygonArticle {
	return news.PolygonArticle{
		ID:           id,
		Title:        "Headline " + id,
		ArticleURL:   "https://example.com/" + id,
		PublishedUTC: published,
		Tickers:      []string{"acme"},
	}
}

func pressRelease(url, date string) news.FMPPressRelease {
	return news.FMPPressRelease{
		Symbol: "acme",
		Date:   date,
		Title:  "Release " + url,
		Text:   "Body of " + url,
		URL:    url,
	}
}
