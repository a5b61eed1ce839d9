// Package main runs the Scrite studio greeting service and waits for an OS
// shutdown signal.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"scrite-studio/internal/config"
	"scrite-studio/internal/limiter"
	"scrite-studio/internal/server"
)

// Loads the environment config, connects to Redis only when rate limiting is
// configured, and serves on 0.0.0.0:8000 by default until SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped.")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{AccessLog: true}

	if cfg.RateLimitEnabled() {
		rdb, err := connectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("could not connect to Redis: %w", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("Error closing Redis: %v", err)
			}
		}()
		opts.Limiter = limiter.New(rdb, cfg.RateLimit, cfg.RateWindow)
		log.Printf("Rate limiting %d requests per %s via %s", cfg.RateLimit, cfg.RateWindow, cfg.RedisAddr)
	}

	return server.Run(ctx, cfg.Addr(), cfg.ShutdownTimeout, server.NewRouter(opts))
}

func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", addr, err)
	}
	log.Printf("Connected to Redis: %s", pong)
	return rdb, nil
}
