package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCorrelationIDGenerated(t *testing.T) {
	srv, cleanup := newTestServer(t, http.StatusOK, `[]`)
	defer cleanup()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("Expected X-Correlation-ID header to be set")
	}
}

func TestCorrelationIDPropagatedFromRequest(t *testing.T) {
	srv, cleanup := newTestServer(t, http.StatusOK, `[]`)
	defer cleanup()

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "req-123" {
		t.Errorf("Expected correlation ID req-123, got %q", got)
	}
}

func TestCORSPreflightHandled(t *testing.T) {
	srv, cleanup := newTestServer(t, http.StatusOK, `[]`)
	defer cleanup()

	req := httptest.NewRequest("OPTIONS", "/lookup_icd_code", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers on preflight response")
	}
}

func TestResponseWriterCapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)
	rw.Write([]byte("short and stout"))

	if rw.statusCode != http.StatusTeapot {
		t.Errorf("Expected captured status 418, got %d", rw.statusCode)
	}
	if rw.bytesWritten != len("short and stout") {
		t.Errorf("Expected %d bytes recorded, got %d", len("short and stout"), rw.bytesWritten)
	}
}
