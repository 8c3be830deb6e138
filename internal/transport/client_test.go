package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})

	if c.UserAgent() != DefaultUserAgent {
		t.Errorf("UserAgent() = %q, want %q", c.UserAgent(), DefaultUserAgent)
	}
	if c.HasToken() {
		t.Error("HasToken() = true, want false")
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.http.Timeout, DefaultTimeout)
	}
}

func TestClientGet_Headers(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantUA   string
		wantAuth string
	}{
		{
			name:     "no_token",
			cfg:      Config{UserAgent: "build-tool/2.0"},
			wantUA:   "build-tool/2.0",
			wantAuth: "",
		},
		{
			name:     "with_token",
			cfg:      Config{Token: "ghp_secret"},
			wantUA:   DefaultUserAgent,
			wantAuth: "Bearer ghp_secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("User-Agent"); got != tt.wantUA {
					t.Errorf("User-Agent = %q, want %q", got, tt.wantUA)
				}
				if got := r.Header.Get("Authorization"); got != tt.wantAuth {
					t.Errorf("Authorization = %q, want %q", got, tt.wantAuth)
				}
				if got := r.Header.Get("Accept"); got != "application/json" {
					t.Errorf("Accept = %q, want application/json", got)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			c := New(tt.cfg)
			resp, err := c.Get(context.Background(), server.URL, http.Header{"Accept": {"application/json"}})
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusNoContent {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
			}
		})
	}
}

func TestClientGet_TooManyRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	c := New(Config{Timeout: 5 * time.Second})
	_, err := c.Get(context.Background(), server.URL+"/", nil)
	if err == nil {
		t.Fatal("expected redirect error but got none")
	}
}

func TestClientGet_InvalidURL(t *testing.T) {
	c := New(Config{})
	if _, err := c.Get(context.Background(), "://bad", nil); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestClient_ConcurrentUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.URL.Path)
	}))
	defer server.Close()

	c := New(Config{Token: "t"})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Get(context.Background(), fmt.Sprintf("%s/%d", server.URL, i), nil)
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Get() error = %v", err)
	}
}
