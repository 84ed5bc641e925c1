package pike13

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the remote API. Body is kept verbatim so
// it can be relayed to the caller.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, truncate(string(e.Body), 512))
}

// Details returns the remote body decoded as JSON, or as a string when it is
// not valid JSON.
func (e *APIError) Details() any {
	var v any
	if err := json.Unmarshal(e.Body, &v); err == nil {
		return v
	}
	return string(e.Body)
}

// Unauthorized reports whether the remote rejected the bearer token.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
