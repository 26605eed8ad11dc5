package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
)

// HTTPServer serves the REST API of the core server.
type HTTPServer struct {
	server *http.Server
	log    *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, handler http.Handler, logger *zerolog.Logger) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		log: logger,
	}
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
