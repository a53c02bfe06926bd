package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"3tcapital/ms_numeracion_core/internal/testutil"
)

func withClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, ContextKeyToken{}, &jwt.Token{Claims: claims, Valid: true})
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "no token",
			ctx:      context.Background(),
			expected: "",
		},
		{
			name:     "token with subject",
			ctx:      withClaims(context.Background(), jwt.MapClaims{"sub": "frontdesk-7"}),
			expected: "frontdesk-7",
		},
		{
			name:     "token without subject",
			ctx:      withClaims(context.Background(), jwt.MapClaims{}),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subject(tt.ctx); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestScopes(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected []string
	}{
		{name: "no token", ctx: context.Background(), expected: nil},
		{
			name:     "space delimited scope",
			ctx:      withClaims(context.Background(), jwt.MapClaims{"scope": "openid serial:admin"}),
			expected: []string{"openid", "serial:admin"},
		},
		{
			name:     "scp list",
			ctx:      withClaims(context.Background(), jwt.MapClaims{"scp": []any{"serial:issue", 7, "serial:admin"}}),
			expected: []string{"serial:issue", "serial:admin"},
		},
		{
			name:     "both forms",
			ctx:      withClaims(context.Background(), jwt.MapClaims{"scope": "openid", "scp": "serial:admin"}),
			expected: []string{"openid", "serial:admin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Scopes(tt.ctx); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRequireScope(t *testing.T) {
	tests := []struct {
		name           string
		scope          string
		ctx            context.Context
		expectedStatus int
	}{
		{name: "scope not configured", scope: "", ctx: withClaims(context.Background(), jwt.MapClaims{}), expectedStatus: http.StatusOK},
		{name: "unauthenticated request", scope: "serial:admin", ctx: context.Background(), expectedStatus: http.StatusOK},
		{name: "scope granted", scope: "serial:admin", ctx: withClaims(context.Background(), jwt.MapClaims{"scope": "serial:admin"}), expectedStatus: http.StatusOK},
		{name: "scope missing", scope: "serial:admin", ctx: withClaims(context.Background(), jwt.MapClaims{"scope": "serial:issue"}), expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireScope(tt.scope, testutil.NewTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/serial-settings", nil).WithContext(tt.ctx)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
