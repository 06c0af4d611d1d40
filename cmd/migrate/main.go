package main

import (
	"log"
	"log/slog"

	"github.com/SS-1985/archive-service/db"
	"github.com/SS-1985/archive-service/internal/config"
	"github.com/SS-1985/archive-service/internal/logging"
	"github.com/SS-1985/archive-service/migrations"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(logging.New(cfg.Log.Level, cfg.Log.Format))

	if err := cfg.RequireDatabase(); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	if err := migrations.Up(conn); err != nil {
		log.Fatalf("error applying migrations: %v", err)
	}

	slog.Info("migrations applied")
}
