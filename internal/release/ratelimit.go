package release

import (
	"net/http"
	"strings"
)

// RateLimitInspector reports whether response headers signal that the
// caller's request quota is exhausted. Implementations must be pure.
type RateLimitInspector func(header http.Header) bool

// IsRateLimited is the default RateLimitInspector. It recognizes GitHub's
// primary limit (X-RateLimit-Remaining: 0) and secondary limits, which are
// announced with a Retry-After header.
func IsRateLimited(header http.Header) bool {
	if header == nil {
		return false
	}
	if strings.TrimSpace(header.Get("X-RateLimit-Remaining")) == "0" {
		return true
	}
	return strings.TrimSpace(header.Get("Retry-After")) != ""
}
