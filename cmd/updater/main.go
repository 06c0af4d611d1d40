package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SS-1985/archive-service/db"
	"github.com/SS-1985/archive-service/internal/config"
	"github.com/SS-1985/archive-service/internal/ingest"
	"github.com/SS-1985/archive-service/internal/logging"
	"github.com/SS-1985/archive-service/internal/repository"
	"github.com/SS-1985/archive-service/pkg/news"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if err := cfg.RequireProviders(""); err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	var publisher ingest.Publisher
	var queue *db.Queue
	if cfg.RedisURL != "" {
		queue, err = db.OpenQueue(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer queue.Close()
		publisher = queue
	}

	sink := ingest.NewSink(repository.NewArchiveRepository(conn), publisher, logger)
	updater := ingest.NewUpdater(
		news.NewPolygonClient(cfg.Polygon.APIKey, cfg.Polygon.BaseURL),
		news.NewFMPClient(cfg.FMP.APIKey, cfg.FMP.BaseURL),
		sink,
		cfg.Updater.Limit,
		logger,
	)

	report, err := updater.Run(ctx)

	if queue != nil {
		if n, qerr := queue.Len(ctx); qerr == nil {
			slog.Info("ingested queue depth", "key", db.IngestedQueueKey, "length", n)
		}
	}

	slog.Info("update complete",
		"polygon_fetched", report.Polygon.Fetched,
		"polygon_inserted", report.Polygon.Inserted,
		"polygon_duplicate", report.Polygon.Duplicate,
		"polygon_failed", report.Polygon.Failed,
		"fmp_fetched", report.FMP.Fetched,
		"fmp_inserted", report.FMP.Inserted,
		"fmp_duplicate", report.FMP.Duplicate,
		"fmp_failed", report.FMP.Failed,
	)

	if err != nil {
		slog.Error("update failed", "error", err)
		// deferred closes are skipped by os.Exit
		conn.Close()
		if queue != nil {
			queue.Close()
		}
		os.Exit(1)
	}
}
