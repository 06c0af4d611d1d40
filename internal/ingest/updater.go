package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SS-1985/archive-service/internal/model"
	"github.com/SS-1985/archive-service/internal/normalize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const DefaultUpdateLimit = 100

type UpdateReport struct {
	Polygon model.Tally
	FMP     model.Tally
}

// Updater archives the newest items of both providers. Overlap with earlier
// runs is expected and absorbed by the store.
type Updater struct {
	polygon PolygonSource
	fmp     FMPSource
	sink    *Sink
	limit   int
	now     func() time.Time
	logger  *slog.Logger
}

func NewUpdater(polygon PolygonSource, fmp FMPSource, sink *Sink, limit int, logger *slog.Logger) *Updater {
	if limit < 1 {
		limit = DefaultUpdateLimit
	}
	return &Updater{
		polygon: polygon,
		fmp:     fmp,
		sink:    sink,
		limit:   limit,
		now:     time.Now,
		logger:  logger,
	}
}

// Run polls both providers concurrently. A failing provider does not stop the
// other; the returned error is the first provider failure.
func (u *Updater) Run(ctx context.Context) (UpdateReport, error) {
	var report UpdateReport
	logger := u.logger.With("run_id", uuid.NewString())

	var g errgroup.Group

	g.Go(func() error {
		tally, err := u.pollPolygon(ctx, logger.With("source", "polygon"))
		report.Polygon = tally
		return err
	})

	g.Go(func() error {
		tally, err := u.pollFMP(ctx, logger.With("source", "fmp"))
		report.FMP = tally
		return err
	})

	err := g.Wait()
	logger.Info("update cycle done", "polygon_inserted", report.Polygon.Inserted, "fmp_inserted", report.FMP.Inserted)
	return report, err
}

func (u *Updater) pollPolygon(ctx context.Context, logger *slog.Logger) (model.Tally, error) {
	var tally model.Tally

	articles, err := u.polygon.Latest(ctx, u.limit)
	if err != nil {
		logger.Error("error fetching articles", "error", err)
		return tally, fmt.Errorf("polygon latest: %w", err)
	}

	tally.Fetched = len(articles)
	fetchedAt := u.now()
	for _, raw := range articles {
		item := normalize.Polygon(raw, fetchedAt)
		tally.Add(u.sink.Put(ctx, &item))
	}

	logTally(logger, "fetch complete", tally)
	return tally, nil
}

func (u *Updater) pollFMP(ctx context.Context, logger *slog.Logger) (model.Tally, error) {
	var tally model.Tally

	releases, err := u.fmp.Latest(ctx, u.limit)
	if err != nil {
		logger.Error("error fetching press releases", "error", err)
		return tally, fmt.Errorf("fmp latest: %w", err)
	}

	tally.Fetched = len(releases)
	fetchedAt := u.now()
	for _, raw := range releases {
		item := normalize.FMP(raw, fetchedAt)
		tally.Add(u.sink.Put(ctx, &item))
	}

	logTally(logger, "fetch complete", tally)
	return tally, nil
}
