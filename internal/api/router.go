package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/config"
	"shareit/internal/httpx"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services bundles the domain services behind the REST API.
type Services struct {
	Users    *service.UserService
	Items    *service.ItemService
	Requests *service.RequestService
	Bookings *service.BookingService
}

type Handler struct {
	users    *service.UserService
	items    *service.ItemService
	requests *service.RequestService
	bookings *service.BookingService
	store    Pinger
	logger   *zerolog.Logger
}

func NewHandler(svc Services, store Pinger, logger *zerolog.Logger) *Handler {
	return &Handler{
		users:    svc.Users,
		items:    svc.Items,
		requests: svc.Requests,
		bookings: svc.Bookings,
		store:    store,
		logger:   logger,
	}
}

// NewRouter wires every REST route of the core server.
func NewRouter(h *Handler, cfg config.APIConfig) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/readyz", h.Readyz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	router.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
	router.HandleFunc("/users/{id:[0-9]+}", h.UpdateUser).Methods(http.MethodPatch)
	router.HandleFunc("/users/{id:[0-9]+}", h.DeleteUser).Methods(http.MethodDelete)

	router.HandleFunc("/items", h.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/items", h.ListOwnerItems).Methods(http.MethodGet)
	router.HandleFunc("/items/search", h.SearchItems).Methods(http.MethodGet)
	router.HandleFunc("/items/{id:[0-9]+}", h.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/items/{id:[0-9]+}", h.UpdateItem).Methods(http.MethodPatch)
	router.HandleFunc("/items/{id:[0-9]+}", h.DeleteItem).Methods(http.MethodDelete)
	router.HandleFunc("/items/{id:[0-9]+}/comment", h.AddComment).Methods(http.MethodPost)

	router.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	router.HandleFunc("/bookings", h.ListBookerBookings).Methods(http.MethodGet)
	router.HandleFunc("/bookings/owner", h.ListOwnerBookings).Methods(http.MethodGet)
	router.HandleFunc("/bookings/owner/export", h.ExportOwnerBookings).Methods(http.MethodGet)
	router.HandleFunc("/bookings/{id:[0-9]+}", h.GetBooking).Methods(http.MethodGet)
	router.HandleFunc("/bookings/{id:[0-9]+}", h.ApproveBooking).Methods(http.MethodPatch)

	router.HandleFunc("/requests", h.CreateRequest).Methods(http.MethodPost)
	router.HandleFunc("/requests", h.ListOwnRequests).Methods(http.MethodGet)
	router.HandleFunc("/requests/all", h.ListOtherRequests).Methods(http.MethodGet)
	router.HandleFunc("/requests/{id:[0-9]+}", h.GetRequest).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Use(httpx.RequestID)
	router.Use(httpx.Logging(h.logger, "server"))
	router.Use(httpx.Recover(h.logger))
	router.Use(newRateLimiter(cfg.RateLimit).Middleware)

	return router
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.PingContext(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("readiness check failed")
		httpx.WriteError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// callerID reads X-Sharer-User-Id and writes a 400 when it is missing or malformed.
func (h *Handler) callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, present, err := httpx.UserID(r)
	if !present {
		httpx.WriteError(w, http.StatusBadRequest, "header "+models.UserIDHeader+" is required")
		return 0, false
	}
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "header "+models.UserIDHeader+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request) int64 {
	// the route pattern guarantees digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
