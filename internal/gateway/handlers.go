package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/httpx"
	"shareit/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Forwarder sends a call to the core server.
type Forwarder interface {
	Do(ctx context.Context, call Call) (*Response, error)
}

// Handler validates requests and relays them to the core server.
type Handler struct {
	core     Forwarder
	validate *Validator
	policy   config.BookingConfig
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewHandler(core Forwarder, validate *Validator, policy config.BookingConfig, now func() time.Time, logger *zerolog.Logger) *Handler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{core: core, validate: validate, policy: policy, now: now, logger: logger}
}

// relayed response headers
var passHeaders = []string{"Content-Type", "Content-Disposition"}

func (h *Handler) relay(w http.ResponseWriter, r *http.Request, call Call) {
	resp, err := h.core.Do(r.Context(), call)
	if err != nil {
		h.logger.Error().Err(err).Str("method", call.Method).Str("path", call.Path).Msg("core server unavailable")
		httpx.WriteError(w, http.StatusBadGateway, "core server unavailable")
		return
	}
	for _, name := range passHeaders {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func (h *Handler) writeValidation(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, err.Error())
}

// decodeValid decodes the body into dst and runs the validate tags.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeValidation(w, err)
		return false
	}
	return true
}

// userHeader returns the caller id as sent, after checking it is a positive integer.
func (h *Handler) userHeader(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, present, err := httpx.UserID(r)
	if !present {
		httpx.WriteError(w, http.StatusBadRequest, "header "+models.UserIDHeader+" is required")
		return "", false
	}
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "header "+models.UserIDHeader+" must be a positive integer")
		return "", false
	}
	return strconv.FormatInt(id, 10), true
}

// page validates from >= 0 and size > 0, applying the defaults 0 and 10.
func page(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	q := r.URL.Query()
	from, size := 0, models.DefaultPageSize
	var err error
	if raw := q.Get("from"); raw != "" {
		if from, err = strconv.Atoi(raw); err != nil || from < 0 {
			httpx.WriteError(w, http.StatusBadRequest, "from must be a non-negative integer")
			return nil, false
		}
	}
	if raw := q.Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil || size <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "size must be a positive integer")
			return nil, false
		}
	}
	return url.Values{"from": {strconv.Itoa(from)}, "size": {strconv.Itoa(size)}}, true
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// users

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !h.decodeValid(w, r, &in) {
		return
	}
	h.relay(w, r, Call{Method: http.MethodPost, Path: "/users", Body: in})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/users"})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/users/" + pathID(r)})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if !h.decodeValid(w, r, &patch) {
		return
	}
	h.relay(w, r, Call{Method: http.MethodPatch, Path: "/users/" + pathID(r), Body: patch})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	h.relay(w, r, Call{Method: http.MethodDelete, Path: "/users/" + pathID(r)})
}

// items

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	var in models.ItemInput
	if !h.decodeValid(w, r, &in) {
		return
	}
	h.relay(w, r, Call{Method: http.MethodPost, Path: "/items", UserID: user, Body: in})
}

func (h *Handler) ListOwnerItems(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	// the core returns the whole list; paging is only checked here
	if _, ok := page(w, r); !ok {
		return
	}
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/items", UserID: user})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/items/" + pathID(r), UserID: user})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	var patch models.ItemPatch
	if !h.decodeValid(w, r, &patch) {
		return
	}
	h.relay(w, r, Call{Method: http.MethodPatch, Path: "/items/" + pathID(r), UserID: user, Body: patch})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	h.relay(w, r, Call{Method: http.MethodDelete, Path: "/items/" + pathID(r), UserID: user})
}

// SearchItems answers a blank text with an empty list without calling the core server.
func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	if _, ok := page(w, r); !ok {
		return
	}
	text := r.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		h.logger.Debug().Str("user_id", user).Msg("Blank search text, returning empty list")
		httpx.WriteJSON(w, http.StatusOK, []models.ItemView{})
		return
	}
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/items/search", Query: url.Values{"text": {text}}, UserID: user})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	var in models.CommentInput
	if !h.decodeValid(w, r, &in) {
		return
	}
	h.relay(w, r, Call{Method: http.MethodPost, Path: "/items/" + pathID(r) + "/comment", UserID: user, Body: in})
}

// bookings

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	var in models.BookingInput
	if !h.decodeValid(w, r, &in) {
		return
	}
	if !in.Start.Before(in.End.Time) {
		httpx.WriteError(w, http.StatusBadRequest, "booking start must be before its end")
		return
	}
	if h.policy.RequireFutureStart {
		now := h.now()
		if in.Start.Before(now) {
			httpx.WriteError(w, http.StatusBadRequest, "booking start must not be in the past")
			return
		}
		if !in.End.After(now) {
			httpx.WriteError(w, http.StatusBadRequest, "booking end must be in the future")
			return
		}
	}
	h.relay(w, r, Call{Method: http.MethodPost, Path: "/bookings", UserID: user, Body: in})
}

func (h *Handler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}
	h.relay(w, r, Call{
		Method: http.MethodPatch,
		Path:   "/bookings/" + pathID(r),
		Query:  url.Values{"approved": {strconv.FormatBool(approved)}},
		UserID: user,
	})
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/bookings/" + pathID(r), UserID: user})
}

func (h *Handler) ListBookerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, "/bookings")
}

func (h *Handler) ListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, "/bookings/owner")
}

func (h *Handler) ExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, "/bookings/owner/export")
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request, path string) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("state")
	state, err := models.ParseBookingState(raw)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.relay(w, r, Call{
		Method: http.MethodGet,
		Path:   path,
		Query:  url.Values{"state": {string(state)}},
		UserID: user,
	})
}

// requests

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	var in models.RequestInput
	if !h.decodeValid(w, r, &in) {
		return
	}
	h.relay(w, r, Call{Method: http.MethodPost, Path: "/requests", UserID: user, Body: in})
}

func (h *Handler) ListOwnRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/requests", UserID: user})
}

func (h *Handler) ListOtherRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	query, ok := page(w, r)
	if !ok {
		return
	}
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/requests/all", Query: query, UserID: user})
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userHeader(w, r)
	if !ok {
		return
	}
	h.relay(w, r, Call{Method: http.MethodGet, Path: "/requests/" + pathID(r), UserID: user})
}
