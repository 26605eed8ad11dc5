package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/service"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	bus := events.NewEventBus()
	bus.SubscribeAll(func(event *events.Event) error {
		metrics.IncEvent(event.Type)
		return nil
	})
	events.SubscribeBookingAudit(bus, logging.Component(logger, "audit"))
	if conn := initNATS(cfg, bus, logger); conn != nil {
		defer (func() { _ = conn.Drain() })()
	}

	services := api.Services{
		Users:    service.NewUserService(db, logging.Component(logger, "users")),
		Items:    service.NewItemService(db, bus, service.SystemClock, logging.Component(logger, "items")),
		Requests: service.NewRequestService(db, bus, service.SystemClock, logging.Component(logger, "requests")),
		Bookings: service.NewBookingService(db, bus, service.SystemClock, cfg.Booking, logging.Component(logger, "bookings")),
	}

	if err := seedFromEnv(ctx, services, logger); err != nil {
		return err
	}

	backup := database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup"))
	go backup.Start(ctx)

	handler := api.NewHandler(services, db, logging.Component(logger, "http"))
	httpServer := api.NewHTTPServer(cfg.API, api.NewRouter(handler, cfg.API), logger)

	var grpcServer *api.GRPCServer
	if cfg.API.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.API.GRPC, db, logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	startMetrics(ctx, cfg, logger)

	return startServers(ctx, grpcServer, httpServer, cfg, logger)
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

	logger, closer, err := logging.New(cfg.Logging, cfg.App, "server")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logger, closer, nil
}

// initNATS forwards every bus event to NATS when a broker is configured.
// A broker that cannot be reached is logged and skipped.
func initNATS(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) *nats.Conn {
	if cfg.Events.NATSURL == "" {
		return nil
	}
	natsLogger := logging.Component(logger, "nats")
	conn, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.App.Name+"-server", natsLogger)
	if err != nil {
		logger.Warn().Err(err).Msg("nats connection failed, continuing without event forwarding")
		return nil
	}
	bus.SubscribeAll(events.NewNATSForwarder(conn, cfg.Events.SubjectPrefix, natsLogger).Handle)
	logger.Info().Str("url", cfg.Events.NATSURL).Str("prefix", cfg.Events.SubjectPrefix).Msg("nats connected")
	return conn
}

func seedFromEnv(ctx context.Context, services api.Services, logger *zerolog.Logger) error {
	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		return nil
	}
	seed, err := loadSeed(seedPath)
	if err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("load seed")
		return err
	}
	created, err := applySeed(ctx, seed, services.Users, services.Items, logger)
	if err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("apply seed")
		return err
	}
	logger.Info().Int("users_created", created).Str("seed_path", seedPath).Msg("seed applied")
	return nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	errCh := make(chan error, 2)

	if grpcServer != nil {
		go grpcServer.RunProbe(ctx, 15*time.Second)
		go func() {
			if err := grpcServer.Serve(); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Bool("grpc", grpcServer != nil).Msg("ShareIt server started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("ShareIt server stopped")
	return runErr
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
