package binary

import (
	"errors"
	"fmt"
	"time"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/release"
)

var (
	// ErrChecksumMismatch is returned when a file's SHA256 differs from the checksum file
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrSignatureInvalid is returned when a detached signature does not verify
	ErrSignatureInvalid = errors.New("signature verification failed")
)

// DownloadResult describes a completed download
type DownloadResult struct {
	URL  string
	Path string
	// Bytes is the number of bytes written to Path
	Bytes int64
	// CreatedDir is true when the output directory did not exist beforehand
	CreatedDir bool
	Duration   time.Duration
}

// VerificationMethod indicates how a download was verified
type VerificationMethod int

const (
	// VerificationNone indicates the source declared no verification material
	VerificationNone VerificationMethod = iota
	// VerificationGPG indicates OpenPGP detached signature verification was used
	VerificationGPG
	// VerificationSHA256 indicates SHA256 checksum verification was used
	VerificationSHA256
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// VerificationResult contains the outcome of a verification attempt
type VerificationResult struct {
	Method  VerificationMethod
	Success bool
	Error   error
}

// VerifyError reports a failed verification of a downloaded file
type VerifyError struct {
	Method VerificationMethod
	Path   string
	Err    error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s verification of %s: %v", e.Method, e.Path, e.Err)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// FetchOptions describes one asset to fetch from a repository's latest release
type FetchOptions struct {
	Owner string
	Repo  string
	// Asset is the asset name; {os}, {arch} and friends are expanded first
	Asset string
	// OutputDir receives the downloaded file
	OutputDir string
	// Filename overrides the on-disk name (default: the expanded asset name)
	Filename string
	// Signature names a detached OpenPGP signature asset (optional)
	Signature string
	// Checksums names a sha256sum-format asset covering Asset (optional)
	Checksums string
	// Extract names a binary to pull out of a .tar.gz or .zip asset (optional)
	Extract string
	// FallbackURL is fetched instead when the release API is rate limited
	// (default: the releases/latest/download web URL of Asset)
	FallbackURL string
	// SkipInstalled skips the fetch when the Extract binary is already
	// installed in OutputDir
	SkipInstalled bool
}

// FetchResult describes a completed fetch
type FetchResult struct {
	Asset string
	// Tag is the release tag, empty when the fallback URL was used
	Tag    string
	URL    string
	Path   string
	Status release.Status
	// Extracted is the path of the extracted binary, if any
	Extracted string
	Verified  VerificationMethod
	// Skipped is true when SkipInstalled found the final file already present
	Skipped   bool
	Bytes     int64
	FetchTime time.Duration
}

// UsedFallback reports whether the asset came from the rate-limit fallback URL
func (r *FetchResult) UsedFallback() bool {
	return r.Status == release.StatusRateLimited
}
