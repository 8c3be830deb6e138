package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoConfig is returned by Locate when no config file exists.
var ErrNoConfig = errors.New("no config file found")

// SearchPaths returns the locations Locate tries, in order:
// ./relfetch.lua, then $XDG_CONFIG_HOME/relfetch/relfetch.lua (or
// ~/.config/relfetch/relfetch.lua).
func SearchPaths() []string {
	paths := []string{DefaultConfigFile}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, "relfetch", DefaultConfigFile))
	}
	return paths
}

// Locate resolves the config file to load. An explicit path wins, then
// $RELFETCH_CONFIG, then the first existing entry of SearchPaths. Explicit
// paths must exist.
func Locate(explicit string) (string, error) {
	for _, candidate := range []string{explicit, os.Getenv(ConfigPathEnv)} {
		if candidate == "" {
			continue
		}
		path, err := ExpandPath(candidate)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}

	for _, path := range SearchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w (searched %v)", ErrNoConfig, SearchPaths())
}
