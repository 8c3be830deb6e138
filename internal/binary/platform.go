package binary

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
)

// placeholderPattern matches {name} placeholders in asset name templates
var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// ExpandAssetName substitutes platform placeholders in an asset name template.
//
// Supported placeholders:
//
//	{os}        GOOS ("linux", "darwin", "windows")
//	{arch}      normalized architecture ("amd64", "arm64")
//	{arch_raw}  GOARCH as detected
//	{arch_gnu}  GNU triplet style ("x86_64", "aarch64")
//	{ext}       ".exe" on Windows, empty elsewhere
//
// A template without placeholders is returned unchanged and needs no
// platform info.
func ExpandAssetName(pattern string, info *platform.Info) (string, error) {
	if !placeholderPattern.MatchString(pattern) {
		return pattern, nil
	}
	if info == nil {
		return "", fmt.Errorf("platform info is required to expand %q", pattern)
	}

	var expandErr error
	expanded := placeholderPattern.ReplaceAllStringFunc(pattern, func(match string) string {
		name := strings.Trim(match, "{}")
		value, err := placeholderValue(name, info)
		if err != nil && expandErr == nil {
			expandErr = err
		}
		return value
	})
	if expandErr != nil {
		return "", fmt.Errorf("expand asset name %q: %w", pattern, expandErr)
	}
	return expanded, nil
}

func placeholderValue(name string, info *platform.Info) (string, error) {
	switch name {
	case "os":
		return info.OS, nil
	case "arch":
		return info.Arch, nil
	case "arch_raw":
		if info.ArchRaw == "" {
			return info.Arch, nil
		}
		return info.ArchRaw, nil
	case "arch_gnu":
		return mapGNUArch(info.Arch)
	case "ext":
		if info.IsWindows() {
			return ".exe", nil
		}
		return "", nil
	default:
		return "", fmt.Errorf("unknown placeholder {%s}", name)
	}
}

// mapGNUArch maps normalized architecture names to GNU triplet names
func mapGNUArch(arch string) (string, error) {
	switch arch {
	case "amd64":
		return "x86_64", nil
	case "arm64":
		return "aarch64", nil
	case "386":
		return "i686", nil
	case "arm":
		return "arm", nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", arch)
	}
}
