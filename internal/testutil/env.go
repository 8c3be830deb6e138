// Package testutil provides utilities for testing relfetch in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env holds the isolated directories created by SetupTestEnv.
type Env struct {
	Root      string
	Home      string
	ConfigDir string
	WorkDir   string
}

// SetupTestEnv isolates a test from the user's environment. It points HOME
// and XDG_CONFIG_HOME at fresh temp directories, unsets every variable that
// can supply a config path or an API token, and changes into an empty
// working directory.
//
// The cleanup function is automatically handled by t.TempDir(), t.Setenv
// and t.Chdir, so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	root := t.TempDir()
	env := &Env{
		Root:      root,
		Home:      filepath.Join(root, "home"),
		ConfigDir: filepath.Join(root, "config"),
		WorkDir:   filepath.Join(root, "work"),
	}

	for _, dir := range []string{env.Home, env.ConfigDir, env.WorkDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("XDG_CONFIG_HOME", env.ConfigDir)
	// Unset rather than empty: an empty variable still shadows later
	// entries of a flag's env var list
	for _, name := range []string{"RELFETCH_CONFIG", "RELFETCH_TOKEN", "GITHUB_TOKEN"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Chdir(env.WorkDir)

	return env
}

// WriteFile writes content to path relative to the env's working directory,
// creating parent directories.
func (e *Env) WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(e.WorkDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
