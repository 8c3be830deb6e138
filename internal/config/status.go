package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/binary"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
)

// SourceStatus represents the on-disk state of a configured source.
type SourceStatus int

const (
	// StatusPresent indicates the asset (or its extracted binary) exists.
	StatusPresent SourceStatus = iota

	// StatusMissing indicates nothing has been fetched yet.
	StatusMissing

	// StatusPartial indicates the archive was downloaded but the binary
	// named by extract is missing or not executable.
	StatusPartial
)

// String returns the string representation of a SourceStatus.
func (s SourceStatus) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusMissing:
		return "missing"
	case StatusPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Symbol returns the visual symbol for a SourceStatus.
func (s SourceStatus) Symbol() string {
	switch s {
	case StatusPresent:
		return "✓"
	case StatusMissing:
		return "✗"
	default:
		return "?"
	}
}

// SourceWithStatus pairs a source with its detected status and the path
// that was checked.
type SourceWithStatus struct {
	Source Source
	Status SourceStatus
	Path   string
}

// DetectStatus reports the status of each source for the given platform.
// Names are expanded the same way a fetch would expand them.
func DetectStatus(ctx context.Context, sources []Source, info *platform.Info) ([]SourceWithStatus, error) {
	results := make([]SourceWithStatus, 0, len(sources))

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := detectSourceStatus(src, info)
		if err != nil {
			return nil, fmt.Errorf("status of %s: %w", src.DisplayName(), err)
		}
		results = append(results, result)
	}

	return results, nil
}

func detectSourceStatus(src Source, info *platform.Info) (SourceWithStatus, error) {
	result := SourceWithStatus{Source: src, Status: StatusMissing}

	outputDir, err := ExpandPath(src.Output)
	if err != nil {
		return result, err
	}

	filename := src.Filename
	if filename == "" {
		filename = src.Asset
	}
	filename, err = binary.ExpandAssetName(filename, info)
	if err != nil {
		return result, err
	}
	assetPath := filepath.Join(outputDir, filename)
	result.Path = assetPath

	_, statErr := os.Stat(assetPath)
	assetExists := statErr == nil

	if src.Extract == "" {
		if assetExists {
			result.Status = StatusPresent
		}
		return result, nil
	}

	binaryPath := filepath.Join(outputDir, src.Extract)
	installed, err := binary.IsInstalled(binaryPath)
	if err != nil {
		return result, err
	}

	switch {
	case installed:
		result.Status = StatusPresent
		result.Path = binaryPath
	case assetExists:
		result.Status = StatusPartial
	}
	return result, nil
}
