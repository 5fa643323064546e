package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/taximeter/internal/middleware"
)

const dashboardOrigin = "http://localhost:5173"

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSHandler_SimpleRequests(t *testing.T) {
	tests := []struct {
		name      string
		origin    string
		wantAllow string
	}{
		{"allowed origin", dashboardOrigin, dashboardOrigin},
		{"foreign origin", "http://evil.example.com", ""},
		{"no origin header", "", ""},
	}
	h := middleware.NewCORSHandler([]string{dashboardOrigin})(okHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/receipts", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			// The response itself always goes through; the browser enforces CORS.
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSHandler_ExposesRequestID(t *testing.T) {
	h := middleware.NewCORSHandler([]string{dashboardOrigin})(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/trip", nil)
	req.Header.Set("Origin", dashboardOrigin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "X-Request-Id", rec.Header().Get("Access-Control-Expose-Headers"))
}

// A state change is a PUT with a JSON body, so browsers preflight it.
func TestCORSHandler_PreflightStateChange(t *testing.T) {
	h := middleware.NewCORSHandler([]string{dashboardOrigin})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/trip/state", nil)
	req.Header.Set("Origin", dashboardOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	// Browsers send the requested header names lowercased.
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, dashboardOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPut, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSHandler_PreflightDeleteRejected(t *testing.T) {
	h := middleware.NewCORSHandler([]string{dashboardOrigin})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/trip", nil)
	req.Header.Set("Origin", dashboardOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}
