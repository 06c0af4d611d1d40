package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SS-1985/archive-service/internal/model"
	"github.com/SS-1985/archive-service/internal/normalize"
	"github.com/SS-1985/archive-service/pkg/news"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// maxFetchFailures bounds consecutive failed page fetches before a cursor
	// walk gives up.
	maxFetchFailures = 3

	fmpWindowSpan = 2 // days covered by one window, in addition to its end day
	fmpWindowStep = 3
)

type BackfillOptions struct {
	// Since is the lower bound; nothing older is stored.
	Since    time.Time
	PageSize int
	// Pause is the minimum spacing between requests to a provider.
	Pause time.Duration
}

type BackfillReport struct {
	Polygon model.Tally
	FMP     model.Tally
}

type Backfiller struct {
	polygon  PolygonSource
	fmp      FMPSource
	sink     *Sink
	since    time.Time
	pageSize int
	pause    time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewBackfiller(polygon PolygonSource, fmp FMPSource, sink *Sink, opts BackfillOptions, logger *slog.Logger) *Backfiller {
	return &Backfiller{
		polygon:  polygon,
		fmp:      fmp,
		sink:     sink,
		since:    opts.Since.UTC(),
		pageSize: opts.PageSize,
		pause:    opts.Pause,
		now:      time.Now,
		logger:   logger,
	}
}

// Run backfills the selected provider, or both when only is empty. Providers
// run one after the other; a provider that gives up does not stop the next
// one. The returned error joins every provider failure, or is ctx's error
// when the run was interrupted.
func (b *Backfiller) Run(ctx context.Context, only string) (BackfillReport, error) {
	var report BackfillReport
	var errs []error
	logger := b.logger.With("run_id", uuid.NewString(), "since", b.since.Format(time.RFC3339))

	if only == "" || only == string(model.OriginPolygon) {
		tally, err := b.backfillPolygon(ctx, logger.With("source", "polygon"))
		report.Polygon = tally
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if only == "" || only == string(model.OriginFMP) {
		tally, err := b.backfillFMP(ctx, logger.With("source", "fmp"))
		report.FMP = tally
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	return report, errors.Join(errs...)
}

func (b *Backfiller) limiter() *rate.Limiter {
	if b.pause <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(b.pause), 1)
}

// backfillPolygon walks cursor pages newest first and stops at the first item
// older than since, an empty page, or a missing next cursor. Repeated fetch
// failures on one cursor, or a provider handing back the cursor it was given,
// end the walk with an error.
func (b *Backfiller) backfillPolygon(ctx context.Context, logger *slog.Logger) (model.Tally, error) {
	var tally model.Tally
	limiter := b.limiter()
	cursor := ""
	failures := 0
	var lastErr error

	for {
		if err := limiter.Wait(ctx); err != nil {
			return tally, err
		}

		page, err := b.polygon.Page(ctx, news.PolygonQuery{
			Limit:        b.pageSize,
			PublishedGTE: b.since,
			Cursor:       cursor,
		})
		if err != nil {
			if ctx.Err() != nil {
				return tally, ctx.Err()
			}
			failures++
			lastErr = err
			logger.Error("error fetching page", "cursor", cursor, "attempt", failures, "error", err)
			if failures >= maxFetchFailures {
				logTally(logger, "backfill abandoned", tally)
				return tally, fmt.Errorf("polygon backfill abandoned at cursor %q after %d failures: %w", cursor, failures, lastErr)
			}
			continue
		}
		failures = 0

		if len(page.Results) == 0 {
			logger.Info("no more results")
			break
		}

		var pageTally model.Tally
		pageTally.Fetched = len(page.Results)
		crossed := false
		fetchedAt := b.now()
		var last time.Time

		for i, raw := range page.Results {
			item := normalize.Polygon(raw, fetchedAt)
			if item.PublishedAt.Before(b.since) {
				crossed = true
				pageTally.Skipped = len(page.Results) - i
				break
			}
			last = item.PublishedAt
			pageTally.Add(b.sink.Put(ctx, &item))
		}

		tally.Merge(pageTally)
		logger.Info("page done", "fetched", pageTally.Fetched, "inserted", pageTally.Inserted,
			"duplicated", pageTally.Duplicate, "errors", pageTally.Failed, "total_inserted", tally.Inserted, "last", last)

		if crossed {
			logger.Info("crossed backfill boundary")
			break
		}

		if page.NextCursor == "" {
			logger.Info("no next cursor")
			break
		}
		if page.NextCursor == cursor {
			logTally(logger, "backfill abandoned", tally)
			return tally, fmt.Errorf("polygon backfill: provider repeated cursor %q", cursor)
		}
		cursor = page.NextCursor
	}

	logTally(logger, "backfill complete", tally)
	return tally, nil
}

// backfillFMP walks day windows [end-2d, end] from today back to since. A
// window that fails to fetch is skipped.
func (b *Backfiller) backfillFMP(ctx context.Context, logger *slog.Logger) (model.Tally, error) {
	var tally model.Tally
	limiter := b.limiter()
	sinceDay := truncateDay(b.since)
	windowEnd := truncateDay(b.now())
	windows := 0

	for {
		windowStart := windowEnd.AddDate(0, 0, -fmpWindowSpan)
		if windowStart.Before(sinceDay) {
			windowStart = sinceDay
		}

		if err := limiter.Wait(ctx); err != nil {
			return tally, err
		}

		from, to := windowStart.Format("2006-01-02"), windowEnd.Format("2006-01-02")
		releases, err := b.fmp.Range(ctx, windowStart, windowEnd)
		if err != nil {
			if ctx.Err() != nil {
				return tally, ctx.Err()
			}
			logger.Error("error fetching window; continuing", "from", from, "to", to, "error", err)
		} else {
			var windowTally model.Tally
			windowTally.Fetched = len(releases)
			fetchedAt := b.now()

			for _, raw := range releases {
				item := normalize.FMP(raw, fetchedAt)
				if item.PublishedAt.Before(b.since) {
					windowTally.Skipped++
					continue
				}
				windowTally.Add(b.sink.Put(ctx, &item))
			}

			tally.Merge(windowTally)
			logger.Info("window done", "from", from, "to", to, "fetched", windowTally.Fetched,
				"inserted", windowTally.Inserted, "duplicated", windowTally.Duplicate, "errors", windowTally.Failed,
				"total_inserted", tally.Inserted)
		}
		windows++

		if windowStart.Equal(sinceDay) {
			logger.Info("reached backfill boundary", "windows", windows)
			break
		}
		windowEnd = windowEnd.AddDate(0, 0, -fmpWindowStep)
	}

	logTally(logger, "backfill complete", tally)
	return tally, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func logTally(logger *slog.Logger, msg string, t model.Tally) {
	attrs := []any{"fetched", t.Fetched, "inserted", t.Inserted, "duplicated", t.Duplicate,
		"errors", t.Failed, "skipped", t.Skipped}
	if t.LastFailure != nil {
		attrs = append(attrs, "last_error", t.LastFailure)
	}
	logger.Info(msg, attrs...)
}
