package main

// @title           CODEMA Council Service API
// @version         1.0
// @description     Voting sessions, denuncias and meeting management for a municipal environmental council
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codema-service/internal/audit"
	"codema-service/internal/config"
	"codema-service/internal/database"
	"codema-service/internal/document"
	"codema-service/internal/realtime"
	"codema-service/internal/router"
)

func main() {
	cfg := config.Load()

	slog.Info("Starting codema service")

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	hub := realtime.NewHub(redisClient.GetClient())
	go hub.Run()

	var auditor audit.Emitter = audit.NopEmitter{}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Brokers[0] != "" {
		kafkaEmitter := audit.NewKafkaEmitter(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		defer kafkaEmitter.Close()
		auditor = kafkaEmitter
	}

	store, err := document.NewMinioStore(cfg.Minio)
	if err != nil {
		slog.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	engine := router.New(router.Deps{
		Config:  cfg,
		DB:      db,
		Redis:   redisClient.GetClient(),
		Hub:     hub,
		Auditor: auditor,
		Store:   store,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
