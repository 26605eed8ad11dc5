package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/ratelimit"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	metrics.Register()

	store, redisClient, err := initRateLimitStore(cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate, err := gateway.NewValidator()
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}

	client := gateway.NewClient(cfg.Gateway, logging.Component(logger, "core-client"))
	handler := gateway.NewHandler(client, validate, cfg.Booking, nil, logging.Component(logger, "http"))
	limiter := gateway.NewLimiter(store, cfg.Gateway.RateLimit.Requests, cfg.Gateway.RateLimit.Window, logging.Component(logger, "ratelimit"))
	server := gateway.NewServer(cfg.Gateway, gateway.NewRouter(handler, limiter), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()
	logger.Info().Int("port", cfg.Gateway.Port).Str("server_url", cfg.Gateway.ServerURL).Msg("ShareIt gateway started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("gateway stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("gateway shutdown")
	}

	logger.Info().Msg("ShareIt gateway stopped")
	return runErr
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App, "gateway")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logger, closer, nil
}

// initRateLimitStore prefers redis with an in-memory fallback and uses the
// memory store alone when redis is not configured or unreachable at start.
func initRateLimitStore(cfg *config.Config, logger *zerolog.Logger) (ratelimit.Store, *redis.Client, error) {
	memory, err := ratelimit.NewMemoryStore(cfg.Gateway.RateLimit.FallbackSize)
	if err != nil {
		return nil, nil, fmt.Errorf("init memory rate limit store: %w", err)
	}
	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, rate limiting per instance")
		return memory, nil, nil
	}

	client := ratelimit.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := ratelimit.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with memory rate limiting")
		_ = client.Close()
		return memory, nil, nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	store := ratelimit.NewFailoverStore(ratelimit.NewRedisStore(client), memory, logging.Component(logger, "ratelimit"))
	return store, client, nil
}
