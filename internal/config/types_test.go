package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validSource() Source {
	return Source{Owner: "acme", Repo: "tool", Asset: "bootstrapper.exe", Output: "./bin"}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty", mutate: func(c *Config) { c.Sources = nil }},
		{name: "dotted_repo", mutate: func(c *Config) { c.Sources[0].Repo = "tool.go" }},
		{name: "home_output", mutate: func(c *Config) { c.Sources[0].Output = "~/bin" }},
		{name: "absolute_output", mutate: func(c *Config) { c.Sources[0].Output = "/opt/acme/bin" }},
		{name: "placeholder_asset", mutate: func(c *Config) { c.Sources[0].Asset = "tool-{os}-{arch}.tar.gz" }},
		{
			name: "distinct_names_same_repo",
			mutate: func(c *Config) {
				second := validSource()
				second.Name = "tool-docs"
				c.Sources = append(c.Sources, second)
			},
		},
		{name: "repo_required", mutate: func(c *Config) { c.Sources[0].Repo = "" }, wantField: "sources[0].repo"},
		{name: "asset_required", mutate: func(c *Config) { c.Sources[0].Asset = "" }, wantField: "sources[0].asset"},
		{name: "owner_leading_dash", mutate: func(c *Config) { c.Sources[0].Owner = "-acme" }, wantField: "sources[0].owner"},
		{name: "repo_with_space", mutate: func(c *Config) { c.Sources[0].Repo = "my tool" }, wantField: "sources[0].repo"},
		{name: "output_blank", mutate: func(c *Config) { c.Sources[0].Output = "   " }, wantField: "sources[0].output"},
		{name: "output_backslash_traversal", mutate: func(c *Config) { c.Sources[0].Output = `bin\..\..` }, wantField: "sources[0].output"},
		{name: "filename_dotdot", mutate: func(c *Config) { c.Sources[0].Filename = ".." }, wantField: "sources[0].filename"},
		{name: "extract_nested", mutate: func(c *Config) { c.Sources[0].Extract = "bin/tool" }, wantField: "sources[0].extract"},
		{name: "checksums_nested", mutate: func(c *Config) { c.Sources[0].Checksums = "a/sums" }, wantField: "sources[0].checksums"},
		{name: "name_too_long", mutate: func(c *Config) { c.Sources[0].Name = strings.Repeat("n", 65) }, wantField: "sources[0].name"},
		{name: "user_agent_too_long", mutate: func(c *Config) { c.UserAgent = strings.Repeat("u", 257) }, wantField: "user_agent"},
		{
			name: "too_many_sources",
			mutate: func(c *Config) {
				c.Sources = nil
				for i := 0; i <= MaxSourceCount; i++ {
					src := validSource()
					src.Name = fmt.Sprintf("s%d", i)
					c.Sources = append(c.Sources, src)
				}
			},
			wantField: "sources",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Sources: []Source{validSource()}}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if valErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q (%v)", valErr.Field, tt.wantField, err)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	withField := &ValidationError{Field: "sources[0].owner", Message: "is required"}
	if got := withField.Error(); got != "config validation failed for sources[0].owner: is required" {
		t.Errorf("Error() = %q", got)
	}
	noField := &ValidationError{Message: "bad"}
	if got := noField.Error(); got != "config validation failed: bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/bin", filepath.Join(home, "bin")},
		{"./bin/", "bin"},
		{"/opt/acme//bin", "/opt/acme/bin"},
		{"~user/bin", "~user/bin"},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.in)
		if err != nil {
			t.Errorf("ExpandPath(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSource_FetchOptions(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	src := Source{
		Owner:         "acme",
		Repo:          "tool",
		Asset:         "tool-{os}.tar.gz",
		Output:        "~/.local/bin",
		Checksums:     "checksums.txt",
		Extract:       "tool",
		FallbackURL:   "https://mirror.example.com/tool.tar.gz",
		SkipInstalled: true,
	}
	opts, err := src.FetchOptions()
	if err != nil {
		t.Fatalf("FetchOptions() error = %v", err)
	}

	if opts.OutputDir != filepath.Join(home, ".local", "bin") {
		t.Errorf("OutputDir = %q", opts.OutputDir)
	}
	if opts.Owner != "acme" || opts.Repo != "tool" || opts.Asset != "tool-{os}.tar.gz" {
		t.Errorf("identity = %s/%s %s", opts.Owner, opts.Repo, opts.Asset)
	}
	if opts.Checksums != "checksums.txt" || opts.Extract != "tool" || !opts.SkipInstalled {
		t.Errorf("options = %+v", opts)
	}
	if opts.FallbackURL != src.FallbackURL {
		t.Errorf("FallbackURL = %q", opts.FallbackURL)
	}
}

func TestConfig_Token(t *testing.T) {
	t.Setenv(DefaultTokenEnv, "default-token")
	t.Setenv("ACME_TOKEN", "acme-token")

	if got := (&Config{}).Token(); got != "default-token" {
		t.Errorf("Token() = %q, want default-token", got)
	}
	if got := (&Config{TokenEnv: "ACME_TOKEN"}).Token(); got != "acme-token" {
		t.Errorf("Token() = %q, want acme-token", got)
	}
	if got := (&Config{TokenEnv: "RELFETCH_UNSET_TOKEN"}).Token(); got != "" {
		t.Errorf("Token() = %q, want empty", got)
	}
}

func TestConfig_KeyringPath(t *testing.T) {
	got, err := (&Config{}).KeyringPath()
	if err != nil || got != "" {
		t.Errorf("KeyringPath() = %q, %v; want empty", got, err)
	}

	got, err = (&Config{Keyring: "/etc/relfetch/keys.asc"}).KeyringPath()
	if err != nil || got != "/etc/relfetch/keys.asc" {
		t.Errorf("KeyringPath() = %q, %v", got, err)
	}
}
