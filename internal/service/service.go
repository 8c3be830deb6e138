// Package service implements relfetch's commands on top of the config and
// binary packages. Collaborators are injected so each command can be tested
// without network or platform access.
package service

import (
	"context"
	"time"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/binary"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
)

const (
	// ConfigDirPermissions sets the permission mode for config directories.
	ConfigDirPermissions = 0o755
	// ConfigFilePermissions sets the permission mode for config files.
	ConfigFilePermissions = 0o644
)

// ConfigLoader loads a config file.
type ConfigLoader interface {
	ParseFile(ctx context.Context, path string) (*config.Config, error)
}

// ConfigGenerator renders a config as Lua.
type ConfigGenerator interface {
	Generate(cfg *config.Config) (string, error)
}

// Fetcher fetches release assets. *binary.Manager implements it.
type Fetcher interface {
	Fetch(ctx context.Context, opts binary.FetchOptions) (*binary.FetchResult, error)
	FetchAll(ctx context.Context, sources []binary.FetchOptions) ([]*binary.FetchResult, error)
}

// FetcherFactory builds a Fetcher for a loaded config, which carries the
// API root, token and keyring the fetcher needs.
type FetcherFactory func(cfg *config.Config) (Fetcher, error)

// Clock provides time operations. This interface enables deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock implements Clock with a fixed time for testing.
type TestClock struct {
	FixedTime time.Time
}

// Now returns the fixed time.
func (t TestClock) Now() time.Time {
	return t.FixedTime
}
