package api

import (
	"net/http"

	"shareit/internal/httpx"
	"shareit/internal/service"
)

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindConflict:
		return http.StatusConflict
	case service.KindInvalidArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError maps a service failure to its status. Internal errors are
// logged with their cause and answered with a generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if kind == service.KindInternal {
		h.logger.Error().
			Err(err).
			Str("request_id", httpx.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		httpx.WriteError(w, status, "internal server error")
		return
	}
	httpx.WriteError(w, status, err.Error())
}
