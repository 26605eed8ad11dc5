package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/httpx"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter mirrors the core server's REST surface.
func NewRouter(h *Handler, limiter *Limiter) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", h.UpdateUser).Methods(http.MethodPatch)
	api.HandleFunc("/users/{id:[0-9]+}", h.DeleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/items", h.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/items", h.ListOwnerItems).Methods(http.MethodGet)
	api.HandleFunc("/items/search", h.SearchItems).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", h.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id:[0-9]+}", h.UpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/items/{id:[0-9]+}", h.DeleteItem).Methods(http.MethodDelete)
	api.HandleFunc("/items/{id:[0-9]+}/comment", h.AddComment).Methods(http.MethodPost)

	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings", h.ListBookerBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/owner", h.ListOwnerBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/owner/export", h.ExportOwnerBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", h.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", h.ApproveBooking).Methods(http.MethodPatch)

	api.HandleFunc("/requests", h.CreateRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests", h.ListOwnRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/all", h.ListOtherRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id:[0-9]+}", h.GetRequest).Methods(http.MethodGet)
	api.Use(limiter.Middleware)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Use(httpx.RequestID)
	router.Use(httpx.Logging(h.logger, "gateway"))
	router.Use(httpx.Recover(h.logger))

	return router
}

type Server struct {
	server *http.Server
	log    *zerolog.Logger
}

func NewServer(cfg config.GatewayConfig, handler http.Handler, logger *zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.Timeout + 15*time.Second,
		},
		log: logger,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Gateway listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
