package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"lokalrunner/config"
	"lokalrunner/pkg/api"
	"lokalrunner/pkg/jwtauth"
	"lokalrunner/pkg/logger"
	"lokalrunner/pkg/relay"
	"lokalrunner/service"
	"lokalrunner/storage/postgres"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize Shared Storage (Postgres)
	pgStore, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pgStore.Close()

	// 4. Optional Redis for cross-instance tracking fan-out
	var rdb *redis.Client
	if cfg.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		log.Info("Redis connected, tracking relay is multi-instance")
	}

	// 5. Location relay hub + services
	hub := relay.NewHub(ctx, log, rdb)
	services := service.New(pgStore, hub, log)
	jwtManager := jwtauth.New(cfg.JWTSecret, cfg.JWTTTLHours)

	// 6. HTTP / WebSocket server
	server := api.New(cfg, log, services, jwtManager)
	httpServer := &http.Server{
		Addr:    server.Addr(),
		Handler: server.Engine(),
	}

	go func() {
		log.Info("HTTP server is starting...", logger.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", logger.Error(err))
			cancel()
		}
	}()

	// 7. Graceful Shutdown listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error", logger.Error(err))
	}
}
