package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SS-1985/archive-service/db"
	"github.com/SS-1985/archive-service/internal/config"
	"github.com/SS-1985/archive-service/internal/ingest"
	"github.com/SS-1985/archive-service/internal/logging"
	"github.com/SS-1985/archive-service/internal/repository"
	"github.com/SS-1985/archive-service/pkg/news"
	"github.com/spf13/cobra"
)

var (
	flagOnly     string
	flagDays     int
	flagPageSize int
	flagPause    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Archive provider history back to a boundary",
	Long:  "Walk Polygon news and FMP press releases from now back to the backfill boundary and archive every item. Re-running is safe; known items are skipped.",
	Args:  cobra.NoArgs,
	RunE:  run,

	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagOnly, "only", "",
		"Restrict the run to one provider: polygon or fmp")
	rootCmd.Flags().IntVar(&flagDays, "days", 0,
		"Days of history to archive (overrides BACKFILL_DAYS)")
	rootCmd.Flags().IntVar(&flagPageSize, "page-size", 0,
		"Polygon page size (overrides PAGE_SIZE)")
	rootCmd.Flags().DurationVar(&flagPause, "pause", -1,
		"Minimum spacing between provider requests (overrides BACKFILL_PAUSE)")
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	only := cfg.Backfill.Only
	if err := cfg.RequireProviders(only); err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("error connecting to DB: %w", err)
	}
	defer conn.Close()

	var publisher ingest.Publisher
	if cfg.RedisURL != "" {
		queue, err := db.OpenQueue(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("error connecting to Redis: %w", err)
		}
		defer queue.Close()
		publisher = queue
	}

	since := cfg.Since(time.Now().UTC())
	backfiller := ingest.NewBackfiller(
		news.NewPolygonClient(cfg.Polygon.APIKey, cfg.Polygon.BaseURL),
		news.NewFMPClient(cfg.FMP.APIKey, cfg.FMP.BaseURL),
		ingest.NewSink(repository.NewArchiveRepository(conn), publisher, logger),
		ingest.BackfillOptions{
			Since:    since,
			PageSize: cfg.Backfill.PageSize,
			Pause:    cfg.Backfill.Pause,
		},
		logger,
	)

	slog.Info("backfill starting", "since", since.Format(time.RFC3339), "only", only, "page_size", cfg.Backfill.PageSize)

	report, err := backfiller.Run(ctx, only)
	slog.Info("backfill complete",
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
		slog.Error("backfill failed; re-run to resume", "error", err)
	}
	return err
}

// applyFlags lets explicitly set flags win over file and environment config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("only") {
		cfg.Backfill.Only = strings.ToLower(strings.TrimSpace(flagOnly))
		switch cfg.Backfill.Only {
		case "", "polygon", "fmp":
		default:
			return fmt.Errorf("unknown provider %q for --only", flagOnly)
		}
	}
	if flags.Changed("days") {
		if flagDays < 1 {
			return fmt.Errorf("--days must be positive, got %d", flagDays)
		}
		cfg.Backfill.Days = flagDays
	}
	if flags.Changed("page-size") {
		if flagPageSize < 1 || flagPageSize > 1000 {
			return fmt.Errorf("--page-size must be within [1, 1000], got %d", flagPageSize)
		}
		cfg.Backfill.PageSize = flagPageSize
	}
	if flags.Changed("pause") {
		if flagPause < 0 {
			return fmt.Errorf("--pause must not be negative")
		}
		cfg.Backfill.Pause = flagPause
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
