package release

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultAPIBaseURL is the GitHub REST API root
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultWebBaseURL is the GitHub web root used for release download links
	DefaultWebBaseURL = "https://github.com"
	// DefaultFallbackURL is returned when the API reports rate limiting and no
	// fallback was configured. It points at relfetch's own latest build.
	DefaultFallbackURL = "https://github.com/ZebulonRouseFrantzich/relfetch/releases/latest/download/relfetch-linux-amd64.tar.gz"
)

// EndpointFunc builds the latest-release metadata URL for owner/repo.
// Implementations must be pure.
type EndpointFunc func(owner, repo string) string

// LatestReleaseURL returns the GitHub latest-release endpoint for owner/repo.
func LatestReleaseURL(owner, repo string) string {
	return EndpointForBase(DefaultAPIBaseURL)(owner, repo)
}

// EndpointForBase returns an EndpointFunc rooted at baseURL
// (e.g. a GitHub Enterprise API root or a test server).
func EndpointForBase(baseURL string) EndpointFunc {
	base := strings.TrimRight(baseURL, "/")
	return func(owner, repo string) string {
		return fmt.Sprintf("%s/repos/%s/%s/releases/latest", base, url.PathEscape(owner), url.PathEscape(repo))
	}
}

// LatestDownloadURL returns the web URL that redirects to assetName in the
// latest release. It does not count against the API quota, which makes it a
// natural per-source fallback.
// Pattern: https://github.com/{owner}/{repo}/releases/latest/download/{asset}
func LatestDownloadURL(owner, repo, assetName string) string {
	return fmt.Sprintf("%s/%s/%s/releases/latest/download/%s",
		DefaultWebBaseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(assetName))
}
