// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/apdebate/internal/auth"
	"github.com/jason-s-yu/apdebate/internal/cache"
	"github.com/jason-s-yu/apdebate/internal/config"
	"github.com/jason-s-yu/apdebate/internal/handlers"
	"github.com/jason-s-yu/apdebate/internal/matchmaking"
	"github.com/jason-s-yu/apdebate/internal/service"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	logger := cfg.NewLogger()

	if err := auth.Init(cfg.TokenExpiry); err != nil {
		logger.Fatalf("auth init: %v", err)
	}
	if cfg.OperatorKeyHash == "" {
		logger.Warn("OPERATOR_KEY_HASH is not set; no session can claim operator rights")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := handlers.NewHub(logger)
	opts := service.Options{
		Allocator:         matchmaking.NewSeededAllocator(cfg.RandomSeed),
		Notifier:          hub,
		Logger:            logger,
		AdjustmentTimeout: cfg.AdjustmentTimeout,
	}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		archive := cache.NewRoundArchive(rdb, cfg.ArchiveQueue)
		defer archive.Close()
		opts.Archiver = archive
		logger.WithField("queue", cfg.ArchiveQueue).Info("archiving sealed rounds to redis")
	} else {
		logger.Info("REDIS_ADDR is not set; sealed rounds will not be archived")
	}

	mm := service.NewMatchmaker(opts)
	defer mm.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(logger, mm, hub, handlers.RouterOptions{OperatorKeyHash: cfg.OperatorKeyHash, AllowedOrigins: cfg.AllowedOrigins}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
