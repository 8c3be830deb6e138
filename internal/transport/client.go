// Package transport provides the HTTP client shared by the release resolver
// and the asset downloader.
//
// A Client is configured once and never mutated afterwards, so a single
// instance can be shared by every goroutine in the process.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default per-request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "relfetch/1.0"
	// MaxRedirects caps the redirect chain followed for a single request
	MaxRedirects = 10
)

// Config holds the construction-time settings of a Client.
type Config struct {
	// UserAgent identifies the caller (default: DefaultUserAgent)
	UserAgent string
	// Token is an optional pre-obtained API token sent as a Bearer credential
	Token string
	// Timeout bounds each request including the body read (default: DefaultTimeout)
	Timeout time.Duration
	// HTTPClient replaces the underlying client (tests only)
	HTTPClient *http.Client
}

// Client issues GET requests with a fixed identification header and an
// optional authorization header.
type Client struct {
	http      *http.Client
	userAgent string
	token     string
}

// New creates a client from cfg. Zero-valued fields take their defaults.
func New(cfg Config) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}

	return &Client{
		http:      httpClient,
		userAgent: userAgent,
		token:     cfg.Token,
	}
}

// UserAgent returns the identification string sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// HasToken reports whether requests carry an Authorization header.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// NewRequest builds a GET request carrying the client's headers.
func (c *Client) NewRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		// net/http drops this header when a redirect leaves the original host
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}

// Do executes req with the shared underlying client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// Get is NewRequest followed by Do. Extra headers are applied on top of the
// client's own.
func (c *Client) Get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	req, err := c.NewRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return c.Do(req)
}
