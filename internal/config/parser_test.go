package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
)

// mockDetector is a test implementation of platform.Detector.
type mockDetector struct {
	info *platform.Info
	err  error
}

func (m *mockDetector) Detect(ctx context.Context) (*platform.Info, error) {
	return m.info, m.err
}

func linuxDetector() *mockDetector {
	return &mockDetector{info: &platform.Info{OS: "linux", Arch: "amd64", ArchRaw: "x86_64"}}
}

// recordingLogger captures messages by level.
type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingLogger) record(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, level+": "+msg)
}

func (r *recordingLogger) Debug(msg string, _ ...interface{}) { r.record("debug", msg) }
func (r *recordingLogger) Info(msg string, _ ...interface{})  { r.record("info", msg) }
func (r *recordingLogger) Warn(msg string, _ ...interface{})  { r.record("warn", msg) }
func (r *recordingLogger) Error(msg string, _ ...interface{}) { r.record("error", msg) }

func (r *recordingLogger) count(level, msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e == level+": "+msg {
			n++
		}
	}
	return n
}

func TestParser_ParseString_Minimal(t *testing.T) {
	luaCode := `
		relfetch = {
			sources = {
				{ owner = "acme", repo = "tool", asset = "bootstrapper.exe", output = "./bin" },
			},
		}
	`

	cfg, err := NewParser(nil).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if len(cfg.Sources) != 1 {
		t.Fatalf("Sources length = %d, want 1", len(cfg.Sources))
	}
	src := cfg.Sources[0]
	if src.Owner != "acme" || src.Repo != "tool" || src.Asset != "bootstrapper.exe" || src.Output != "./bin" {
		t.Errorf("Sources[0] = %+v", src)
	}
	if src.DisplayName() != "acme/tool" {
		t.Errorf("DisplayName() = %q, want acme/tool", src.DisplayName())
	}
}

func TestParser_ParseString_Full(t *testing.T) {
	luaCode := `
		relfetch = {
			api_base_url = "https://github.example.com/api/v3",
			user_agent   = "relfetch-test",
			token_env    = "ACME_TOKEN",
			keyring      = "~/.config/relfetch/keys.asc",
			sources = {
				{
					name         = "tool",
					owner        = "acme",
					repo         = "tool",
					asset        = "tool-{os}-{arch}.tar.gz",
					output       = "~/.local/bin",
					filename     = "tool.tar.gz",
					signature    = "tool-{os}-{arch}.tar.gz.asc",
					checksums    = "checksums.txt",
					extract      = "tool",
					fallback_url = "https://mirror.example.com/tool.tar.gz",
					skip_installed = true,
				},
			},
		}
	`

	cfg, err := NewParser(linuxDetector()).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if cfg.APIBaseURL != "https://github.example.com/api/v3" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.UserAgent != "relfetch-test" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.TokenEnv != "ACME_TOKEN" {
		t.Errorf("TokenEnv = %q", cfg.TokenEnv)
	}
	if cfg.Keyring != "~/.config/relfetch/keys.asc" {
		t.Errorf("Keyring = %q", cfg.Keyring)
	}

	want := Source{
		Name:          "tool",
		Owner:         "acme",
		Repo:          "tool",
		Asset:         "tool-{os}-{arch}.tar.gz",
		Output:        "~/.local/bin",
		Filename:      "tool.tar.gz",
		Signature:     "tool-{os}-{arch}.tar.gz.asc",
		Checksums:     "checksums.txt",
		Extract:       "tool",
		FallbackURL:   "https://mirror.example.com/tool.tar.gz",
		SkipInstalled: true,
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != want {
		t.Errorf("Sources = %+v, want [%+v]", cfg.Sources, want)
	}
}

func TestParser_ParseString_PlatformConditionals(t *testing.T) {
	luaCode := `
		relfetch = {
			sources = {
				{
					owner  = "acme",
					repo   = "tool",
					asset  = "tool-" .. platform.os .. "-" .. platform.arch .. platform.exe_suffix,
					output = "./bin",
				},
				platform.when(platform.is_macos, {
					owner = "acme", repo = "mac-only", asset = "mac.zip", output = "./bin",
				}),
				platform.when(platform.is_linux, {
					owner = "acme", repo = "linux-only", asset = "linux.tar.gz", output = "./bin",
				}),
				{
					owner  = "acme",
					repo   = "selected",
					asset  = platform.select({ ["linux/amd64"] = "sel-x64", linux = "sel-linux", default = "sel" }),
					output = "./bin",
				},
			},
		}
	`

	cfg, err := NewParser(linuxDetector()).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	got := make(map[string]string)
	for _, src := range cfg.Sources {
		got[src.Repo] = src.Asset
	}
	want := map[string]string{
		"tool":       "tool-linux-amd64",
		"linux-only": "linux.tar.gz",
		"selected":   "sel-x64",
	}
	if len(got) != len(want) {
		t.Fatalf("sources = %v, want %v", got, want)
	}
	for repo, asset := range want {
		if got[repo] != asset {
			t.Errorf("asset for %s = %q, want %q", repo, got[repo], asset)
		}
	}
}

func TestParser_ParseString_NoSources(t *testing.T) {
	cfg, err := NewParser(nil).ParseString(context.Background(), `relfetch = {}`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", cfg.Sources)
	}
}

func TestParser_ParseString_Errors(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantParse  bool   // expect *ParseError
		wantField  string // expect *ValidationError for this field
		wantSubstr string
	}{
		{
			name:       "missing_table",
			code:       `other = {}`,
			wantParse:  true,
			wantSubstr: "missing or invalid 'relfetch' table",
		},
		{
			name:       "table_wrong_type",
			code:       `relfetch = "yes"`,
			wantParse:  true,
			wantSubstr: "expected table, got string",
		},
		{
			name:       "syntax_error",
			code:       `relfetch = {`,
			wantParse:  true,
			wantSubstr: "Lua error",
		},
		{
			name:       "sources_wrong_type",
			code:       `relfetch = { sources = "acme/tool" }`,
			wantParse:  true,
			wantSubstr: "invalid 'sources'",
		},
		{
			name:       "source_not_table",
			code:       `relfetch = { sources = { "acme/tool" } }`,
			wantParse:  true,
			wantSubstr: "sources[1]: expected table, got string",
		},
		{
			name:       "number_not_coerced",
			code:       `relfetch = { sources = { { owner = "acme", repo = 42, asset = "a", output = "o" } } }`,
			wantParse:  true,
			wantSubstr: "sources[1].repo: expected string, got number",
		},
		{
			name:       "skip_installed_not_bool",
			code:       `relfetch = { sources = { { owner = "acme", repo = "tool", asset = "a", output = "o", skip_installed = "yes" } } }`,
			wantParse:  true,
			wantSubstr: "expected boolean",
		},
		{
			name:       "top_level_field_wrong_type",
			code:       `relfetch = { token_env = 1 }`,
			wantParse:  true,
			wantSubstr: "token_env: expected string",
		},
		{
			name:      "missing_owner",
			code:      `relfetch = { sources = { { repo = "tool", asset = "a", output = "o" } } }`,
			wantField: "sources[0].owner",
		},
		{
			name:      "missing_output",
			code:      `relfetch = { sources = { { owner = "acme", repo = "tool", asset = "a" } } }`,
			wantField: "sources[0].output",
		},
		{
			name:      "invalid_api_url",
			code:      `relfetch = { api_base_url = "not a url" }`,
			wantField: "api_base_url",
		},
		{
			name:      "invalid_fallback_url",
			code:      `relfetch = { sources = { { owner = "acme", repo = "tool", asset = "a", output = "o", fallback_url = "mirror" } } }`,
			wantField: "sources[0].fallback_url",
		},
		{
			name:      "invalid_owner",
			code:      `relfetch = { sources = { { owner = "acme/evil", repo = "tool", asset = "a", output = "o" } } }`,
			wantField: "sources[0].owner",
		},
		{
			name:      "output_traversal",
			code:      `relfetch = { sources = { { owner = "acme", repo = "tool", asset = "a", output = "bin/../../etc" } } }`,
			wantField: "sources[0].output",
		},
		{
			name:      "asset_with_separator",
			code:      `relfetch = { sources = { { owner = "acme", repo = "tool", asset = "../a", output = "o" } } }`,
			wantField: "sources[0].asset",
		},
		{
			name: "duplicate_source",
			code: `relfetch = { sources = {
				{ owner = "acme", repo = "tool", asset = "a", output = "o" },
				{ owner = "acme", repo = "tool", asset = "b", output = "o" },
			} }`,
			wantField:  "sources[1].name",
			wantSubstr: "duplicate source",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.code)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if tt.wantParse {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("error = %T %v, want *ParseError", err, err)
				}
			}
			if tt.wantField != "" {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("error = %T %v, want *ValidationError", err, err)
				}
				if valErr.Field != tt.wantField {
					t.Errorf("Field = %q, want %q (%v)", valErr.Field, tt.wantField, err)
				}
			}
			if tt.wantSubstr != "" && !strings.Contains(err.Error(), tt.wantSubstr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSubstr)
			}
		})
	}
}

func TestParser_ParseString_PlatformReadOnly(t *testing.T) {
	_, err := NewParser(linuxDetector()).ParseString(context.Background(), `
		platform.os = "windows"
		relfetch = {}
	`)
	if err == nil {
		t.Fatal("expected error modifying platform table")
	}
	if !strings.Contains(err.Error(), "read-only") {
		t.Errorf("error = %v, want read-only", err)
	}
}

func TestParser_ParseString_DetectorError(t *testing.T) {
	detector := &mockDetector{err: errors.New("boom")}
	_, err := NewParser(detector).ParseString(context.Background(), `relfetch = {}`)
	if err == nil || !strings.Contains(err.Error(), "platform detection failed") {
		t.Errorf("error = %v, want platform detection failure", err)
	}
}

func TestParser_ParseString_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(nil).ParseString(ctx, `
		local n = 0
		while true do n = n + 1 end
	`)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relfetch.lua")
	content := `
		relfetch = {
			sources = {
				{ owner = "acme", repo = "tool", asset = "bootstrapper.exe", output = "./bin" },
			},
		}
	`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := &recordingLogger{}
	cfg, err := NewParser(nil).WithLogger(logger).ParseFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(cfg.Sources) != 1 {
		t.Errorf("Sources length = %d, want 1", len(cfg.Sources))
	}
	if logger.count("warn", "possible secret in config") != 0 {
		t.Error("unexpected secret warning for clean config")
	}
	if logger.count("debug", "loaded config") != 1 {
		t.Error("expected debug log for loaded config")
	}
}

func TestParser_ParseFile_SecretWarning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relfetch.lua")
	content := "-- ghp_" + strings.Repeat("a", 36) + "\n" + `relfetch = {}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := &recordingLogger{}
	if _, err := NewParser(nil).WithLogger(logger).ParseFile(context.Background(), path); err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if logger.count("warn", "possible secret in config") != 1 {
		t.Errorf("entries = %v, want one secret warning", logger.entries)
	}
}

func TestParser_ParseFile_TooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relfetch.lua")
	content := "relfetch = {}\n-- " + strings.Repeat("x", MaxConfigSize)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewParser(nil).ParseFile(context.Background(), path)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Message != "config file too large" {
		t.Errorf("error = %v, want config file too large", err)
	}
}

func TestParser_ParseFile_Missing(t *testing.T) {
	_, err := NewParser(nil).ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.lua"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestFormatError(t *testing.T) {
	parseErr := &ParseError{
		Message: "Lua error",
		Detail:  "<string>:1: unexpected symbol\nstack traceback:\n\t[G]: ?",
	}

	short := FormatError(parseErr, false)
	if strings.Contains(short, "stack traceback") {
		t.Errorf("non-verbose output contains traceback: %q", short)
	}
	if !strings.HasPrefix(short, "Lua error: <string>:1: unexpected symbol") {
		t.Errorf("non-verbose output = %q", short)
	}

	verbose := FormatError(parseErr, true)
	if !strings.Contains(verbose, "Details:") || !strings.Contains(verbose, "stack traceback") {
		t.Errorf("verbose output = %q", verbose)
	}

	plain := errors.New("plain failure")
	if got := FormatError(plain, false); got != "plain failure" {
		t.Errorf("FormatError(plain) = %q", got)
	}
}
