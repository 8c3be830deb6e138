package release

import (
	"errors"
	"fmt"
)

// ErrNoAsset is wrapped by Resolution.Err when the release has no matching asset.
var ErrNoAsset = errors.New("asset not found in latest release")

// Query identifies one asset of a repository's latest release.
type Query struct {
	Owner     string
	Repo      string
	AssetName string
}

// String returns "owner/repo:asset".
func (q Query) String() string {
	return fmt.Sprintf("%s/%s:%s", q.Owner, q.Repo, q.AssetName)
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size,omitempty"`
	ContentType        string `json:"content_type,omitempty"`
}

// Metadata models the fields of the latest-release payload relfetch uses.
// Asset order is preserved as returned by the API.
type Metadata struct {
	TagName string  `json:"tag_name"`
	Name    string  `json:"name"`
	Assets  []Asset `json:"assets"`
}

// Find returns the first asset whose name equals name exactly and whose
// download URL is non-empty.
func (m *Metadata) Find(name string) (Asset, bool) {
	if m == nil {
		return Asset{}, false
	}
	for _, a := range m.Assets {
		if a.Name == name {
			if a.BrowserDownloadURL == "" {
				return Asset{}, false
			}
			return a, true
		}
	}
	return Asset{}, false
}

// Status classifies the outcome of a resolution.
type Status int

const (
	// StatusRequestFailed indicates a transport error, a non-2xx status or an undecodable payload
	StatusRequestFailed Status = iota
	// StatusFound indicates the asset was found and URL is set
	StatusFound
	// StatusNotFound indicates the release has no asset with the requested name
	StatusNotFound
	// StatusRateLimited indicates the API refused the request for quota reasons; URL holds the fallback
	StatusRateLimited
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusFound:
		return "Found"
	case StatusNotFound:
		return "NotFound"
	case StatusRequestFailed:
		return "RequestFailed"
	case StatusRateLimited:
		return "RateLimited"
	default:
		return "Unknown"
	}
}

// Resolution is the result of resolving a Query.
type Resolution struct {
	Status Status
	// URL is the asset URL (StatusFound) or the fallback URL (StatusRateLimited)
	URL string
	// StatusCode and Reason describe the HTTP response, when one was received
	StatusCode int
	Reason     string
	// Err holds the underlying cause for StatusRequestFailed and StatusNotFound
	Err error
}

// OK reports whether URL can be downloaded, either directly or as a fallback.
func (r Resolution) OK() bool {
	return (r.Status == StatusFound || r.Status == StatusRateLimited) && r.URL != ""
}

// Sentinel collapses the resolution to a single string: the URL when found,
// the fallback when rate limited, and "" otherwise.
func (r Resolution) Sentinel() string {
	switch r.Status {
	case StatusFound, StatusRateLimited:
		return r.URL
	default:
		return ""
	}
}
