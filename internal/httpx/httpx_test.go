package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"shareit/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(models.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(models.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(models.RequestIDHeader))
}

func TestUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok, err := UserID(req)
	assert.False(t, ok)
	assert.NoError(t, err)

	req.Header.Set(models.UserIDHeader, "42")
	id, ok, err := UserID(req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	req.Header.Set(models.UserIDHeader, "forty-two")
	_, ok, err = UserID(req)
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestRecover(t *testing.T) {
	logger := zerolog.Nop()
	router := mux.NewRouter()
	router.Use(Recover(&logger))
	router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestLoggingRecordsStatus(t *testing.T) {
	logger := zerolog.Nop()
	router := mux.NewRouter()
	router.Use(Logging(&logger, "test"))
	router.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusTeapot, "short and stout")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
