package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", nil, domain.Anonymous)

	if err := NewHealthHandler(nil).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		deps       map[string]PingFunc
		wantStatus int
		wantBody   string
	}{
		{name: "all healthy", deps: map[string]PingFunc{"mongodb": ok, "redis": ok}, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "redis down", deps: map[string]PingFunc{"mongodb": ok, "redis": down}, wantStatus: http.StatusServiceUnavailable, wantBody: "degraded"},
		{name: "no dependencies", deps: nil, wantStatus: http.StatusOK, wantBody: "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/health/ready", nil, domain.Anonymous)

			if err := NewHealthHandler(tt.deps).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Fatalf("expected status %q, got %q", tt.wantBody, resp.Status)
			}
			if len(resp.Dependencies) != len(tt.deps) {
				t.Fatalf("expected %d dependencies, got %+v", len(tt.deps), resp.Dependencies)
			}
		})
	}
}
