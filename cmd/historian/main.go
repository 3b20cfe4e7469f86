// cmd/historian/main.go drains sealed rounds from the Redis archive queue
// and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/apdebate/internal/cache"
	"github.com/jason-s-yu/apdebate/internal/config"
	"github.com/jason-s-yu/apdebate/internal/database"
	"github.com/jason-s-yu/apdebate/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	logger := cfg.NewLogger()
	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL (or PG_HOST and friends) must be set")
	}
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, addr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	archive := cache.NewRoundArchive(rdb, cfg.ArchiveQueue)
	defer archive.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	history := database.NewRoundHistory(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	logger.WithFields(logrus.Fields{"queue": cfg.ArchiveQueue, "batch": cfg.HistorianBatchSize}).Info("historian started")
	historian.NewService(archive, history, logger, cfg.HistorianBatchSize, cfg.HistorianFlush).Run(ctx)
	logger.Info("historian shutdown complete")
}
