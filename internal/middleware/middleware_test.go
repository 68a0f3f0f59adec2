// internal/middleware/middleware_test.go
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDGeneratesID(t *testing.T) {
	var capturedCtx context.Context
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedCtx = r.Context()
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/forecast", nil)
	rec := httptest.NewRecorder()

	RequestID(inner).ServeHTTP(rec, req)

	// Verify request ID was generated and added to context
	requestID := GetRequestID(capturedCtx)
	if requestID == "" {
		t.Error("Expected request ID to be generated, got empty string")
	}

	// Verify it looks like a UUID (36 chars with dashes)
	if len(requestID) != 36 {
		t.Errorf("Expected UUID format (36 chars), got %d chars: %s", len(requestID), requestID)
	}

	// Verify it was echoed on the response
	if rec.Header().Get(RequestIDHeader) != requestID {
		t.Errorf("Expected response header %s=%s, got %s",
			RequestIDHeader, requestID, rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestIDPreservesExistingID(t *testing.T) {
	existingID := "test-request-id-12345"

	var capturedCtx context.Context
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedCtx = r.Context()
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/forecast", nil)
	req.Header.Set(RequestIDHeader, existingID)
	rec := httptest.NewRecorder()

	RequestID(inner).ServeHTTP(rec, req)

	requestID := GetRequestID(capturedCtx)
	if requestID != existingID {
		t.Errorf("Expected request ID %s, got %s", existingID, requestID)
	}
	if rec.Header().Get(RequestIDHeader) != existingID {
		t.Errorf("Expected response header to echo %s, got %s",
			existingID, rec.Header().Get(RequestIDHeader))
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	ctx := context.Background()
	requestID := GetRequestID(ctx)
	if requestID != "" {
		t.Errorf("Expected empty request ID from empty context, got %s", requestID)
	}
}

func TestMetricsPassesThroughStatus(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/forecast", nil)
	rec := httptest.NewRecorder()

	Metrics(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}

func TestMetricsDefaultsToOK(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("implicit 200"))
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	Metrics(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}
