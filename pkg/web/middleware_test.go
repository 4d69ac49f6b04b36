package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RequestIDInjector_PropagatesChiRequestID(t *testing.T) {
	// given
	handler := RequestIDInjector(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		id, ok := GetRequestID(r.Context())
		require.True(t, ok, "request id should be present in the context")
		assert.Equal(t, middleware.GetReqID(r.Context()), id, "injector should carry chi's request id")
	}))

	// when: chi's RequestID runs upstream of the injector
	rec := httptest.NewRecorder()
	middleware.RequestID(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_RequestIDInjector_GeneratesWhenMissing(t *testing.T) {
	// given
	var seen string
	handler := RequestIDInjector(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = GetRequestID(r.Context())
	}))

	// when: no upstream request id middleware
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.NotEmpty(t, seen, "injector should generate a request id when none exists")
}

func Test_StructuredLogger_LogsRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := RequestIDInjector(StructuredLogger(logger)(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})))

	// when
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// then
	assert.Equal(t, http.StatusNoContent, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "request_id=")
	assert.NotContains(t, out, "request_id= ", "request id attribute should not be empty")
	assert.Contains(t, out, "path=/ping")
}

func Test_Recoverer_LogsRequestIDAndReturns500(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := RequestIDInjector(Recoverer(logger)(http.HandlerFunc(
		func(_ http.ResponseWriter, _ *http.Request) {
			panic("boom")
		})))

	// when
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "panic=boom")
	assert.Contains(t, out, "request_id=")
}
