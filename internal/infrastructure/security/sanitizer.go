package security

import (
	"net/http"
	"strings"
)

// Header names whose values never reach the logs.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
}

const redactedValue = "[REDACTED]"

// SanitizeHeaders flattens headers for logging, redacting credentials.
// Multiple values are joined with a comma.
func SanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string, len(headers))

	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			sanitized[key] = redactedValue
			continue
		}
		sanitized[key] = strings.Join(values, ", ")
	}

	return sanitized
}
