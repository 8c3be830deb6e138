package release

import (
	"net/http"
	"testing"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   bool
	}{
		{name: "nil_header", header: nil, want: false},
		{name: "no_rate_headers", header: http.Header{"Content-Type": {"application/json"}}, want: false},
		{name: "remaining_quota", header: http.Header{"X-Ratelimit-Remaining": {"59"}}, want: false},
		{name: "exhausted", header: http.Header{"X-Ratelimit-Remaining": {"0"}}, want: true},
		{name: "exhausted_with_spaces", header: http.Header{"X-Ratelimit-Remaining": {" 0 "}}, want: true},
		{name: "retry_after", header: http.Header{"Retry-After": {"30"}}, want: true},
		{name: "empty_retry_after", header: http.Header{"Retry-After": {""}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimited(tt.header); got != tt.want {
				t.Errorf("IsRateLimited() = %v, want %v", got, tt.want)
			}
		})
	}
}
