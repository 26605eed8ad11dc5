package api

import (
	"net/http"
	"strconv"

	"shareit/internal/httpx"
	"shareit/internal/models"
)

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var in models.BookingInput
	if !decodeJSON(w, r, &in) {
		return
	}
	view, err := h.bookings.CreateBooking(r.Context(), userID, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}
	view, err := h.bookings.ApproveBooking(r.Context(), userID, pathID(r), approved)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	view, err := h.bookings.GetBooking(r.Context(), userID, pathID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) ListBookerBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	views, err := h.bookings.ListByBooker(r.Context(), userID, r.URL.Query().Get("state"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) ListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	views, err := h.bookings.ListByOwner(r.Context(), userID, r.URL.Query().Get("state"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) ExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	bookings, err := h.bookings.OwnerBookings(r.Context(), userID, r.URL.Query().Get("state"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookings_`+strconv.FormatInt(userID, 10)+`.xlsx"`)
	if err := writeBookingsXLSX(w, bookings); err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to write bookings export")
		return
	}
	h.logger.Info().Int64("user_id", userID).Int("rows", len(bookings)).Msg("Bookings exported")
}
