package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/transport"
)

// acceptHeader requests the versioned GitHub REST media type
const acceptHeader = "application/vnd.github+json"

// ResolverConfig holds optional collaborators of a Resolver.
type ResolverConfig struct {
	// Endpoint builds the metadata URL (default: LatestReleaseURL)
	Endpoint EndpointFunc
	// RateLimited inspects response headers (default: IsRateLimited)
	RateLimited RateLimitInspector
	// FallbackURL is returned when rate limited (default: DefaultFallbackURL)
	FallbackURL string
	// Logger receives observations (default: no-op)
	Logger logging.Logger
}

// Resolver looks up asset download URLs in a repository's latest release.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	client      *transport.Client
	endpoint    EndpointFunc
	rateLimited RateLimitInspector
	fallbackURL string
	logger      logging.Logger
}

// NewResolver creates a resolver that issues requests through client.
func NewResolver(client *transport.Client, cfg ResolverConfig) *Resolver {
	r := &Resolver{
		client:      client,
		endpoint:    cfg.Endpoint,
		rateLimited: cfg.RateLimited,
		fallbackURL: cfg.FallbackURL,
		logger:      logging.OrNop(cfg.Logger),
	}
	if r.endpoint == nil {
		r.endpoint = LatestReleaseURL
	}
	if r.rateLimited == nil {
		r.rateLimited = IsRateLimited
	}
	if r.fallbackURL == "" {
		r.fallbackURL = DefaultFallbackURL
	}
	return r
}

// FallbackURL returns the URL substituted when the API is rate limited.
func (r *Resolver) FallbackURL() string {
	return r.fallbackURL
}

// LatestAssetURL returns the download URL of assetName in the latest release
// of owner/repo, the fallback URL when rate limited, or "" on any failure.
func (r *Resolver) LatestAssetURL(ctx context.Context, owner, repo, assetName string) string {
	return r.Resolve(ctx, Query{Owner: owner, Repo: repo, AssetName: assetName}).Sentinel()
}

// Resolve looks up q.AssetName in the latest release of q.Owner/q.Repo.
func (r *Resolver) Resolve(ctx context.Context, q Query) Resolution {
	meta, res := r.Latest(ctx, q.Owner, q.Repo)
	if meta == nil {
		return res
	}

	asset, ok := meta.Find(q.AssetName)
	if !ok {
		r.logger.Error("asset not found",
			"error", ErrNoAsset,
			"query", q.String(),
			"tag", meta.TagName)
		return Resolution{
			Status:     StatusNotFound,
			StatusCode: res.StatusCode,
			Reason:     res.Reason,
			Err:        fmt.Errorf("%w: %s", ErrNoAsset, q.AssetName),
		}
	}

	r.logger.Debug("resolved asset", "query", q.String(), "tag", meta.TagName, "url", asset.BrowserDownloadURL)
	return Resolution{
		Status:     StatusFound,
		URL:        asset.BrowserDownloadURL,
		StatusCode: res.StatusCode,
		Reason:     res.Reason,
	}
}

// Latest fetches and decodes the latest-release metadata of owner/repo.
// Metadata is nil unless the request succeeded; in that case the returned
// Resolution has StatusFound and an empty URL. Rate limiting, transport
// errors, non-2xx statuses and malformed payloads are all contained in the
// Resolution.
func (r *Resolver) Latest(ctx context.Context, owner, repo string) (*Metadata, Resolution) {
	endpoint := r.endpoint(owner, repo)

	resp, err := r.client.Get(ctx, endpoint, http.Header{"Accept": {acceptHeader}})
	if err != nil {
		r.logger.Error("fetch release metadata failed", "error", err, "url", endpoint)
		return nil, Resolution{
			Status: StatusRequestFailed,
			Err:    fmt.Errorf("fetch release metadata: %w", err),
		}
	}
	defer resp.Body.Close()

	reason := reasonPhrase(resp)

	// Checked before the status code: GitHub answers 403 or 429 when limited
	if r.rateLimited(resp.Header) {
		r.logger.Warn("release API rate limited, using fallback URL",
			"url", endpoint,
			"status", resp.StatusCode,
			"reset", resp.Header.Get("X-RateLimit-Reset"),
			"fallback", r.fallbackURL)
		return nil, Resolution{
			Status:     StatusRateLimited,
			URL:        r.fallbackURL,
			StatusCode: resp.StatusCode,
			Reason:     reason,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, reason)
		r.logger.Error("fetch release metadata failed",
			"error", err,
			"url", endpoint,
			"status", resp.StatusCode,
			"reason", reason)
		return nil, Resolution{
			Status:     StatusRequestFailed,
			StatusCode: resp.StatusCode,
			Reason:     reason,
			Err:        err,
		}
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		r.logger.Error("decode release metadata failed", "error", err, "url", endpoint)
		return nil, Resolution{
			Status:     StatusRequestFailed,
			StatusCode: resp.StatusCode,
			Reason:     reason,
			Err:        fmt.Errorf("decode release JSON: %w", err),
		}
	}

	return &meta, Resolution{
		Status:     StatusFound,
		StatusCode: resp.StatusCode,
		Reason:     reason,
	}
}

// reasonPhrase extracts the reason phrase from resp.Status ("404 Not Found"),
// falling back to the standard text for the code.
func reasonPhrase(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
