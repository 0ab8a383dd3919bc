package main

import (
	"log"
	"log/slog"

	"codema-service/internal/config"
	"codema-service/internal/database"
)

func main() {
	cfg := config.Load()

	slog.Info("Starting database migration...")

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	slog.Info("Database connection established")

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	slog.Info("Database migration completed successfully!")
}
