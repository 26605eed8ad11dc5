package api

import (
	"net/http"

	"shareit/internal/httpx"
	"shareit/internal/models"
)

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.users.CreateUser(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ToUserView(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ToUserViews(users))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), pathID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ToUserView(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	user, err := h.users.UpdateUser(r.Context(), pathID(r), patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ToUserView(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), pathID(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
