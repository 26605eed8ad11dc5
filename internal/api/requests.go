package api

import (
	"net/http"

	"shareit/internal/httpx"
	"shareit/internal/models"
)

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var in models.RequestInput
	if !decodeJSON(w, r, &in) {
		return
	}
	view, err := h.requests.CreateRequest(r.Context(), userID, in.Description)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) ListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	views, err := h.requests.ListOwnRequests(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) ListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "from must be an integer")
		return
	}
	size, err := queryInt(r, "size", models.DefaultPageSize)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "size must be an integer")
		return
	}

	views, err := h.requests.ListOtherRequests(r.Context(), userID, from, size)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	view, err := h.requests.GetRequest(r.Context(), userID, pathID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}
