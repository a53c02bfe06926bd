package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"3tcapital/ms_numeracion_core/internal/infrastructure/config"
	"3tcapital/ms_numeracion_core/internal/infrastructure/http/middleware"
	"3tcapital/ms_numeracion_core/internal/testutil"
)

// stubSerialHandler answers every route with its own name so tests can check
// the routing table.
type stubSerialHandler struct{}

func reply(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(name))
	}
}

func (stubSerialHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	reply("list")(w, r)
}
func (stubSerialHandler) CreateSetting(w http.ResponseWriter, r *http.Request) {
	reply("create")(w, r)
}
func (stubSerialHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	reply("get")(w, r)
}
func (stubSerialHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	reply("update")(w, r)
}
func (stubSerialHandler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	reply("delete")(w, r)
}
func (stubSerialHandler) PreviewDraft(w http.ResponseWriter, r *http.Request) {
	reply("preview-draft")(w, r)
}
func (stubSerialHandler) PreviewSetting(w http.ResponseWriter, r *http.Request) {
	reply("preview-setting")(w, r)
}
func (stubSerialHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	reply("issues")(w, r)
}
func (stubSerialHandler) IssueNext(w http.ResponseWriter, r *http.Request) {
	reply("issue")(w, r)
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		HTTP: config.HTTPSettings{
			Port: 8080,
		},
		Auth: config.AuthSettings{
			Enabled: false,
		},
	}
}

func noopHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
}

func TestNew_NilLogger(t *testing.T) {
	_, err := New(Options{
		Config:        testConfig(),
		Logger:        nil,
		HealthHandler: noopHealth(),
	})

	if err == nil {
		t.Fatal("expected error for nil logger")
	}

	if err.Error() != "logger is required" {
		t.Errorf("expected error 'logger is required', got %q", err.Error())
	}
}

func TestNew_NilHealthHandler(t *testing.T) {
	_, err := New(Options{
		Config:        testConfig(),
		Logger:        testutil.NewTestLogger(),
		HealthHandler: nil,
	})

	if err == nil {
		t.Fatal("expected error for nil health handler")
	}

	if err.Error() != "health handler is required" {
		t.Errorf("expected error 'health handler is required', got %q", err.Error())
	}
}

func TestNew_ValidOptions(t *testing.T) {
	cfg := config.AppConfig{
		HTTP: config.HTTPSettings{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			RequestTimeout:  8 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
	}

	server, err := New(Options{
		Config:        cfg,
		Logger:        testutil.NewTestLogger(),
		HealthHandler: noopHealth(),
		SerialHandler: stubSerialHandler{},
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if server.httpServer == nil {
		t.Fatal("expected httpServer to be initialized")
	}

	if server.httpServer.Addr != ":8080" {
		t.Errorf("expected address ':8080', got %q", server.httpServer.Addr)
	}

	if server.httpServer.WriteTimeout != 10*time.Second {
		t.Errorf("expected write timeout 10s, got %v", server.httpServer.WriteTimeout)
	}

	if server.shutdownTimeout != 30*time.Second {
		t.Errorf("expected shutdown timeout 30s, got %v", server.shutdownTimeout)
	}
}

func TestNew_SerialRoutes(t *testing.T) {
	server, err := New(Options{
		Config:        testConfig(),
		Logger:        testutil.NewTestLogger(),
		HealthHandler: noopHealth(),
		SerialHandler: stubSerialHandler{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		method   string
		path     string
		expected string
	}{
		{http.MethodGet, "/api/serial-settings", "list"},
		{http.MethodPost, "/api/serial-settings", "create"},
		{http.MethodPost, "/api/serial-settings/preview", "preview-draft"},
		{http.MethodGet, "/api/serial-settings/abc", "get"},
		{http.MethodPatch, "/api/serial-settings/abc", "update"},
		{http.MethodDelete, "/api/serial-settings/abc", "delete"},
		{http.MethodGet, "/api/serial-settings/abc/preview", "preview-setting"},
		{http.MethodGet, "/api/serial-settings/abc/issues", "issues"},
		{http.MethodPost, "/api/serial-numbers/issue", "issue"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			if w.Body.String() != tt.expected {
				t.Errorf("expected handler %q, got %q", tt.expected, w.Body.String())
			}
		})
	}
}

func TestNew_MethodNotAllowed(t *testing.T) {
	server, err := New(Options{
		Config:        testConfig(),
		Logger:        testutil.NewTestLogger(),
		HealthHandler: noopHealth(),
		SerialHandler: stubSerialHandler{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/serial-settings/abc", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", w.Code)
	}

	body := testutil.ReadErrorResponse(t, w)
	if body["message"] != "Método no permitido" {
		t.Errorf("expected message 'Método no permitido', got %v", body["message"])
	}
}

func TestNew_WithoutSerialHandler(t *testing.T) {
	server, err := New(Options{
		Config:        testConfig(),
		Logger:        testutil.NewTestLogger(),
		HealthHandler: noopHealth(),
		SerialHandler: nil,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, path := range []string{"/api/serial-settings", "/api/serial-numbers/issue"} {
		w := httptest.NewRecorder()
		server.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status 503, got %d", path, w.Code)
		}
	}
}

func TestServer_Close(t *testing.T) {
	server, err := New(Options{
		Config:        testConfig(),
		Logger:        testutil.NewTestLogger(),
		HealthHandler: noopHealth(),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should not panic
	server.Close()
}

func TestServer_Run_ContextCancel(t *testing.T) {
	cfg := config.AppConfig{
		HTTP: config.HTTPSettings{
			Port:            0, // Use random port
			ShutdownTimeout: 1 * time.Second,
		},
	}

	server, err := New(Options{
		Config:        cfg,
		Logger:        testutil.NewTestLogger(),
		HealthHandler: noopHealth(),
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel context immediately
	cancel()

	// Run should return without error when context is cancelled
	err = server.Run(ctx)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	healthHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	server, err := New(Options{
		Config:        testConfig(),
		Logger:        testutil.NewTestLogger(),
		HealthHandler: healthHandler,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.httpServer.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "healthy" {
		t.Errorf("expected body 'healthy', got %q", w.Body.String())
	}

	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected correlation id header to be set")
	}
}

func TestNew_AdminScopeGuardsWrites(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.AdminScope = "serial:admin"

	server, err := New(Options{
		Config:        cfg,
		Logger:        testutil.NewTestLogger(),
		HealthHandler: noopHealth(),
		SerialHandler: stubSerialHandler{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tokenCtx := context.WithValue(context.Background(), middleware.ContextKeyToken{}, &jwt.Token{
		Claims: jwt.MapClaims{"sub": "frontdesk-7", "scope": "serial:issue"},
		Valid:  true,
	})

	tests := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{http.MethodPost, "/api/serial-settings", http.StatusForbidden},
		{http.MethodPatch, "/api/serial-settings/abc", http.StatusForbidden},
		{http.MethodDelete, "/api/serial-settings/abc", http.StatusForbidden},
		{http.MethodGet, "/api/serial-settings/abc", http.StatusOK},
		{http.MethodPost, "/api/serial-settings/preview", http.StatusOK},
		{http.MethodPost, "/api/serial-numbers/issue", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil).WithContext(tokenCtx)
			w := httptest.NewRecorder()
			server.httpServer.Handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
