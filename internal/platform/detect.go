package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect uses runtime.GOOS and runtime.GOARCH for OS and architecture, and
// gopsutil for Linux distribution details.
//
// If gopsutil cannot identify the distribution, the distro fields stay
// empty and detection still succeeds. A cancelled context is an error.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      runtime.GOOS,
		ArchRaw: runtime.GOARCH,
	}

	arch, err := normalizeArch(runtime.GOARCH)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}
	info.Arch = arch

	if runtime.GOOS == "linux" {
		platform, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}

		platform = normalizePlatform(platform)
		if platform != "" {
			info.Platform = platform
			info.Family = mapFamily(family)
			info.Version = normalizePlatform(version)
		}
	}

	return info, nil
}

// Parse builds Info for an explicit "os/arch" target such as
// "linux/arm64" or "macos/x86_64". Distribution fields are left empty.
func Parse(target string) (*Info, error) {
	osName, archName, ok := strings.Cut(target, "/")
	if !ok || osName == "" || archName == "" {
		return nil, fmt.Errorf("invalid platform %q: expected os/arch", target)
	}

	normalizedOS, err := normalizeOS(osName)
	if err != nil {
		return nil, err
	}
	arch, err := normalizeArch(archName)
	if err != nil {
		return nil, err
	}

	return &Info{
		OS:      normalizedOS,
		Arch:    arch,
		ArchRaw: strings.TrimSpace(archName),
	}, nil
}

// StaticDetector returns a fixed Info, for an explicit target platform.
type StaticDetector struct {
	Info *Info
}

// Detect returns a copy of the configured Info.
func (d StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if d.Info == nil {
		return nil, fmt.Errorf("no platform configured")
	}
	info := *d.Info
	return &info, nil
}
