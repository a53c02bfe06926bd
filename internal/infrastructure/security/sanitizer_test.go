package security

import (
	"net/http"
	"testing"
)

func TestSanitizeHeaders(t *testing.T) {
	tests := []struct {
		name     string
		headers  http.Header
		expected map[string]string
	}{
		{
			name: "sensitive headers are redacted",
			headers: http.Header{
				"Authorization":    []string{"Bearer eyJhbGciOiJSUzI1NiJ9.payload.signature"},
				"Cookie":           []string{"session=abc123"},
				"Content-Type":     []string{"application/json"},
				"X-Api-Key":        []string{"my-api-key"},
				"X-Correlation-Id": []string{"req-42"},
			},
			expected: map[string]string{
				"Authorization":    "[REDACTED]",
				"Cookie":           "[REDACTED]",
				"Content-Type":     "application/json",
				"X-Api-Key":        "[REDACTED]",
				"X-Correlation-Id": "req-42",
			},
		},
		{
			name: "multiple values are joined",
			headers: http.Header{
				"Accept": []string{"application/json", "text/html"},
			},
			expected: map[string]string{
				"Accept": "application/json, text/html",
			},
		},
		{
			name:     "empty headers",
			headers:  http.Header{},
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeHeaders(tt.headers)

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d headers, got %d", len(tt.expected), len(result))
			}
			for key, expectedValue := range tt.expected {
				if result[key] != expectedValue {
					t.Errorf("expected %s=%s, got %s", key, expectedValue, result[key])
				}
			}
		})
	}
}
