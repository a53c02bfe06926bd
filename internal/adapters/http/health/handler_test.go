package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphealth "3tcapital/ms_numeracion_core/internal/application/health"
	corehealth "3tcapital/ms_numeracion_core/internal/core/health"
)

func TestNewHandler(t *testing.T) {
	service := &apphealth.Service{}
	handler := NewHandler(service)

	if handler == nil {
		t.Fatal("expected handler to be created, got nil")
	}

	if handler.service != service {
		t.Error("expected handler to have the provided service")
	}
}

func TestHandler_Status(t *testing.T) {
	meta := apphealth.Metadata{
		Service:     "test-service",
		Version:     "1.0.0",
		Environment: "test",
	}

	service := apphealth.NewService(meta)
	handler := NewHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.Status(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status code %d, got %d", http.StatusOK, w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var status corehealth.Status
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if status.Service != meta.Service {
		t.Errorf("expected service %q, got %q", meta.Service, status.Service)
	}

	if status.Version != meta.Version {
		t.Errorf("expected version %q, got %q", meta.Version, status.Version)
	}

	if status.Environment != meta.Environment {
		t.Errorf("expected environment %q, got %q", meta.Environment, status.Environment)
	}

	if status.Status != "UP" {
		t.Errorf("expected status 'UP', got %q", status.Status)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandler_Status_Dependencies(t *testing.T) {
	tests := []struct {
		name           string
		ping           error
		expectedStatus int
		expectedState  string
		expectedDB     string
	}{
		{name: "database reachable", ping: nil, expectedStatus: http.StatusOK, expectedState: "UP", expectedDB: "UP"},
		{name: "database down", ping: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedState: "DEGRADED", expectedDB: "DOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := apphealth.NewService(apphealth.Metadata{Service: "ms_numeracion_core"}).
				WithDependency("database", pingerFunc(func(ctx context.Context) error { return tt.ping }))
			handler := NewHandler(service)

			w := httptest.NewRecorder()
			handler.Status(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status code %d, got %d", tt.expectedStatus, w.Code)
			}

			var status corehealth.Status
			if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if status.Status != tt.expectedState {
				t.Errorf("expected status %q, got %q", tt.expectedState, status.Status)
			}
			if status.Dependencies["database"] != tt.expectedDB {
				t.Errorf("expected database %q, got %q", tt.expectedDB, status.Dependencies["database"])
			}
		})
	}
}
