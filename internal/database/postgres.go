package database

import (
	"fmt"
	"log/slog"
	"time"

	"codema-service/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresConnection opens the portal database with connection retries.
func NewPostgresConnection(dburi string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dburi), &gorm.Config{
			SkipDefaultTransaction: true,
		})
		if err == nil {
			break
		}
		slog.Warn("Failed to connect to database", "attempt", i+1, "maxRetries", maxRetries, "error", err)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Info("Connected to PostgreSQL")
	return db, nil
}

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Councilor{},
		&models.VotingSession{},
		&models.BallotOption{},
		&models.RosterEntry{},
		&models.Vote{},
		&models.TallyResult{},
		&models.Denuncia{},
		&models.DenunciaTally{},
		&models.Meeting{},
		&models.AgendaItem{},
		&models.Document{},
	}

	for _, model := range modelsToMigrate {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model: %w", err)
		}
	}
	return nil
}
