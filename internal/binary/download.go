package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/transport"
)

// Downloader streams remote files to disk
type Downloader struct {
	client *transport.Client
	logger logging.Logger
}

// NewDownloader creates a new downloader sharing client with the resolver
func NewDownloader(client *transport.Client, logger logging.Logger) *Downloader {
	return &Downloader{
		client: client,
		logger: logging.OrNop(logger),
	}
}

// DownloadFile downloads url to outputDir/filename and reports success.
// Failures are logged; use Download to inspect the cause.
func (d *Downloader) DownloadFile(ctx context.Context, url, outputDir, filename string) bool {
	_, err := d.Download(ctx, url, outputDir, filename)
	return err == nil
}

// Download downloads url to outputDir/filename, creating outputDir (and any
// missing ancestors) first. The body is streamed into a temporary file in
// outputDir which is renamed into place only after the copy completes, so a
// failed download never leaves a truncated file at the destination.
func (d *Downloader) Download(ctx context.Context, url, outputDir, filename string) (*DownloadResult, error) {
	result, err := d.download(ctx, url, outputDir, filename)
	if err != nil {
		d.logger.Error("download failed",
			"error", err,
			"url", url,
			"dest", filepath.Join(outputDir, filename))
		return nil, err
	}

	d.logger.Info("downloaded file",
		"url", url,
		"dest", result.Path,
		"bytes", result.Bytes,
		"duration", result.Duration)
	return result, nil
}

func (d *Downloader) download(ctx context.Context, url, outputDir, filename string) (*DownloadResult, error) {
	startTime := time.Now()

	if err := validateFilename(filename); err != nil {
		return nil, err
	}

	createdDir, err := ensureDir(outputDir)
	if err != nil {
		return nil, err
	}
	if createdDir {
		d.logger.Info("created output directory", "dir", outputDir)
	}

	destPath := filepath.Join(outputDir, filename)

	// Unique per call so concurrent downloads into one directory never collide
	tmpPath := filepath.Join(outputDir, fmt.Sprintf(".%s.%s.tmp", filename, uuid.NewString()))
	tmpFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	// Track whether we need to clean up the temp file
	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	resp, err := d.client.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return nil, fmt.Errorf("sync temp file: %w", err)
	}

	// Close temp file before rename
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return nil, fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return &DownloadResult{
		URL:        url,
		Path:       destPath,
		Bytes:      written,
		CreatedDir: createdDir,
		Duration:   time.Since(startTime),
	}, nil
}

// ensureDir creates dir with its ancestors when missing and reports whether
// it had to.
func ensureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("output path %s is not a directory", dir)
		}
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat output dir: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("create output dir: %w", err)
	}
	return true, nil
}

// validateFilename rejects names that would escape the output directory
func validateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename is empty")
	}
	if filename == "." || filename == ".." || filepath.Base(filename) != filename {
		return fmt.Errorf("invalid filename %q: must be a single path element", filename)
	}
	return nil
}

// fileExists checks if a file exists and is not empty
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
