package main

import (
	"log"
	"log/slog"

	"github.com/SS-1985/archive-service/db"
	"github.com/SS-1985/archive-service/internal/config"
	"github.com/SS-1985/archive-service/internal/handler"
	"github.com/SS-1985/archive-service/internal/logging"
	"github.com/SS-1985/archive-service/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
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

	archiveRepo := repository.NewArchiveRepository(conn)
	archiveHandler := handler.NewArchiveHandler(archiveRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.API.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.API.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/archive", archiveHandler.GetArchive)
	r.GET("/archive-stats", archiveHandler.GetStats)
	r.GET("/archive-earliest", archiveHandler.GetEarliest)
	r.GET("/health", archiveHandler.GetHealth)

	err = r.Run(":" + cfg.API.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
