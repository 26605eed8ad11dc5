package api

import (
	"net/http"

	"shareit/internal/httpx"
	"shareit/internal/models"
)

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var in models.ItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	item, err := h.items.AddItem(r.Context(), userID, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ToItemView(item))
}

func (h *Handler) ListOwnerItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	views, err := h.items.ListOwnerItems(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	view, err := h.items.GetItem(r.Context(), userID, pathID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var patch models.ItemPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	item, err := h.items.UpdateItem(r.Context(), userID, pathID(r), patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ToItemView(item))
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	if err := h.items.DeleteItem(r.Context(), userID, pathID(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) SearchItems(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.callerID(w, r); !ok {
		return
	}
	items, err := h.items.Search(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ToItemViews(items))
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}
	var in models.CommentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	comment, err := h.items.AddComment(r.Context(), userID, pathID(r), in.Text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, models.ToCommentView(comment))
}
