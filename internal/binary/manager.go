package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/release"
)

// FallbackFunc builds the download URL used for an asset when the release
// API is rate limited and the source names no fallback of its own.
type FallbackFunc func(owner, repo, assetName string) string

// Manager orchestrates resolve, download, verification and extraction of
// release assets
type Manager struct {
	resolver     *release.Resolver
	downloader   *Downloader
	verifier     *Verifier
	extractor    *Extractor
	platformInfo *platform.Info
	fallback     FallbackFunc
	logger       logging.Logger
}

// Config holds configuration for the manager
type Config struct {
	// Resolver looks up the latest release (required)
	Resolver *release.Resolver
	// Downloader fetches assets (required)
	Downloader *Downloader
	// PlatformInfo expands asset name templates; may be nil when no source
	// uses placeholders
	PlatformInfo *platform.Info
	// KeyringPath holds the public keys trusted for signature verification
	KeyringPath string
	// Fallback builds per-asset fallback URLs (default: release.LatestDownloadURL)
	Fallback FallbackFunc
	Logger   logging.Logger
}

// NewManager creates a new manager
func NewManager(config Config) (*Manager, error) {
	if config.Resolver == nil {
		return nil, fmt.Errorf("Resolver is required")
	}
	if config.Downloader == nil {
		return nil, fmt.Errorf("Downloader is required")
	}

	fallback := config.Fallback
	if fallback == nil {
		fallback = release.LatestDownloadURL
	}

	return &Manager{
		resolver:     config.Resolver,
		downloader:   config.Downloader,
		verifier:     NewVerifier(config.KeyringPath),
		extractor:    NewExtractor(),
		platformInfo: config.PlatformInfo,
		fallback:     fallback,
		logger:       logging.OrNop(config.Logger),
	}, nil
}

// fetchPlan holds the expanded names and resolved URLs of one fetch
type fetchPlan struct {
	asset        string
	filename     string
	signature    string
	checksums    string
	assetURL     string
	signatureURL string
	checksumsURL string
	tag          string
	status       release.Status
}

// Fetch resolves opts.Asset in the latest release of opts.Owner/opts.Repo,
// downloads it into opts.OutputDir, verifies it against any declared
// signature or checksum companions and extracts opts.Extract from it.
// A downloaded asset that fails verification is removed.
func (m *Manager) Fetch(ctx context.Context, opts FetchOptions) (*FetchResult, error) {
	startTime := time.Now()

	plan, err := m.expand(opts)
	if err != nil {
		return nil, err
	}

	if opts.SkipInstalled {
		skipped, err := m.installed(opts, plan)
		if err != nil {
			return nil, err
		}
		if skipped != nil {
			skipped.FetchTime = time.Since(startTime)
			return skipped, nil
		}
	}

	if err := m.resolve(ctx, opts, plan); err != nil {
		return nil, err
	}

	downloaded, err := m.downloader.Download(ctx, plan.assetURL, opts.OutputDir, plan.filename)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", plan.asset, err)
	}

	method, err := m.verify(ctx, plan, downloaded.Path)
	if err != nil {
		if rmErr := os.Remove(downloaded.Path); rmErr != nil && !os.IsNotExist(rmErr) {
			m.logger.Warn("failed to remove unverified asset", "path", downloaded.Path, "error", rmErr)
		}
		return nil, err
	}

	result := &FetchResult{
		Asset:    plan.asset,
		Tag:      plan.tag,
		URL:      plan.assetURL,
		Path:     downloaded.Path,
		Status:   plan.status,
		Verified: method,
		Bytes:    downloaded.Bytes,
	}

	if opts.Extract != "" {
		extracted, err := m.extract(downloaded.Path, opts.OutputDir, opts.Extract)
		if err != nil {
			return nil, err
		}
		result.Extracted = extracted
	}

	result.FetchTime = time.Since(startTime)
	m.logger.Info("fetched asset",
		"repo", opts.Owner+"/"+opts.Repo,
		"asset", result.Asset,
		"tag", result.Tag,
		"path", result.Path,
		"verified", result.Verified.String(),
		"fallback", result.UsedFallback())
	return result, nil
}

// FetchAll fetches each source in order, stopping at the first failure.
// Results of the sources fetched before the failure are returned with it.
func (m *Manager) FetchAll(ctx context.Context, sources []FetchOptions) ([]*FetchResult, error) {
	results := make([]*FetchResult, 0, len(sources))
	for _, opts := range sources {
		result, err := m.Fetch(ctx, opts)
		if err != nil {
			return results, fmt.Errorf("fetch %s/%s: %w", opts.Owner, opts.Repo, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// expand checks opts and expands every name template against the platform
func (m *Manager) expand(opts FetchOptions) (*fetchPlan, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}
	if opts.Asset == "" {
		return nil, fmt.Errorf("asset is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	p := &fetchPlan{}
	var err error
	if p.asset, err = ExpandAssetName(opts.Asset, m.platformInfo); err != nil {
		return nil, err
	}
	if p.signature, err = ExpandAssetName(opts.Signature, m.platformInfo); err != nil {
		return nil, err
	}
	if p.checksums, err = ExpandAssetName(opts.Checksums, m.platformInfo); err != nil {
		return nil, err
	}
	p.filename = p.asset
	if opts.Filename != "" {
		if p.filename, err = ExpandAssetName(opts.Filename, m.platformInfo); err != nil {
			return nil, err
		}
	}

	if err := validateFilename(p.filename); err != nil {
		return nil, err
	}
	if opts.Extract != "" {
		if err := validateFilename(opts.Extract); err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
	}

	if p.signature != "" && !m.verifier.HasKeyring() {
		return nil, fmt.Errorf("signature %s declared but no keyring is configured", p.signature)
	}

	return p, nil
}

// installed returns a skipped result when the fetch's final file is already
// in place: the extracted binary (executable) or the downloaded asset
// (non-empty regular file). It returns nil when the fetch must proceed.
func (m *Manager) installed(opts FetchOptions, p *fetchPlan) (*FetchResult, error) {
	if opts.Extract != "" {
		destPath := filepath.Join(opts.OutputDir, opts.Extract)
		ok, err := IsInstalled(destPath)
		if err != nil {
			return nil, fmt.Errorf("check if installed: %w", err)
		}
		if !ok {
			return nil, nil
		}
		m.logger.Debug("binary already installed", "path", destPath)
		return &FetchResult{Asset: p.asset, Extracted: destPath, Skipped: true}, nil
	}

	destPath := filepath.Join(opts.OutputDir, p.filename)
	if !fileExists(destPath) {
		return nil, nil
	}
	m.logger.Debug("asset already present", "path", destPath)
	return &FetchResult{Asset: p.asset, Path: destPath, Skipped: true}, nil
}

// resolve fills in every URL the fetch needs from a single latest-release
// lookup
func (m *Manager) resolve(ctx context.Context, opts FetchOptions, p *fetchPlan) error {
	var err error
	meta, res := m.resolver.Latest(ctx, opts.Owner, opts.Repo)
	p.status = res.Status

	switch res.Status {
	case release.StatusFound:
		p.tag = meta.TagName
		if p.assetURL, err = assetURL(meta, p.asset); err != nil {
			return err
		}
		if p.signatureURL, err = assetURL(meta, p.signature); err != nil {
			return err
		}
		if p.checksumsURL, err = assetURL(meta, p.checksums); err != nil {
			return err
		}

	case release.StatusRateLimited:
		p.assetURL = opts.FallbackURL
		if p.assetURL == "" {
			p.assetURL = m.fallback(opts.Owner, opts.Repo, p.asset)
		}
		if p.signature != "" {
			p.signatureURL = m.fallback(opts.Owner, opts.Repo, p.signature)
		}
		if p.checksums != "" {
			p.checksumsURL = m.fallback(opts.Owner, opts.Repo, p.checksums)
		}
		m.logger.Warn("rate limited, fetching via fallback URL",
			"repo", opts.Owner+"/"+opts.Repo,
			"asset", p.asset,
			"url", p.assetURL)

	default:
		return fmt.Errorf("resolve latest release of %s/%s: %w", opts.Owner, opts.Repo, res.Err)
	}

	return nil
}

// assetURL finds name in meta; an empty name yields an empty URL
func assetURL(meta *release.Metadata, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	asset, ok := meta.Find(name)
	if !ok {
		return "", fmt.Errorf("%w: %s (release %s)", release.ErrNoAsset, name, meta.TagName)
	}
	return asset.BrowserDownloadURL, nil
}

// verify downloads the declared companions into a scratch directory and
// checks assetPath against them. GPG is reported when both are declared.
func (m *Manager) verify(ctx context.Context, plan *fetchPlan, assetPath string) (VerificationMethod, error) {
	if plan.signatureURL == "" && plan.checksumsURL == "" {
		return VerificationNone, nil
	}

	scratchDir, err := os.MkdirTemp("", "relfetch-verify-*")
	if err != nil {
		return VerificationNone, fmt.Errorf("create verification dir: %w", err)
	}
	defer os.RemoveAll(scratchDir)

	method := VerificationNone

	if plan.checksumsURL != "" {
		sums, err := m.downloader.Download(ctx, plan.checksumsURL, scratchDir, filepath.Base(plan.checksums))
		if err != nil {
			return VerificationNone, fmt.Errorf("download checksums: %w", err)
		}
		res, err := m.verifier.VerifyChecksum(assetPath, sums.Path, plan.asset)
		if err != nil {
			return VerificationNone, err
		}
		method = res.Method
	}

	if plan.signatureURL != "" {
		sig, err := m.downloader.Download(ctx, plan.signatureURL, scratchDir, filepath.Base(plan.signature))
		if err != nil {
			return VerificationNone, fmt.Errorf("download signature: %w", err)
		}
		res, err := m.verifier.VerifySignature(assetPath, sig.Path)
		if err != nil {
			return VerificationNone, err
		}
		method = res.Method
	}

	m.logger.Debug("verified asset", "path", assetPath, "method", method.String())
	return method, nil
}

// extract pulls binaryName out of archivePath into outputDir
func (m *Manager) extract(archivePath, outputDir, binaryName string) (string, error) {
	if !IsArchive(archivePath) {
		return "", fmt.Errorf("cannot extract %s: %s is not a supported archive", binaryName, filepath.Base(archivePath))
	}

	destPath := filepath.Join(outputDir, binaryName)
	if err := m.extractor.ExtractBinary(archivePath, destPath, binaryName); err != nil {
		return "", fmt.Errorf("extract binary: %w", err)
	}

	// Ensure it's executable (should already be set by extractor)
	if err := SetExecutable(destPath); err != nil {
		return "", err
	}

	m.logger.Debug("extracted binary", "archive", archivePath, "dest", destPath)
	return destPath, nil
}

// IsInstalled checks if path is a regular, executable file
func IsInstalled(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat binary: %w", err)
	}

	if !info.Mode().IsRegular() {
		return false, nil
	}

	return info.Mode().Perm()&0111 != 0, nil
}
