package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	validator "gopkg.in/go-playground/validator.v9"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/binary"
)

// Config represents a relfetch configuration file.
type Config struct {
	// APIBaseURL overrides the GitHub REST API root (GitHub Enterprise)
	APIBaseURL string `lua:"api_base_url" validate:"omitempty,url"`

	// UserAgent overrides the User-Agent sent with every request
	UserAgent string `lua:"user_agent" validate:"omitempty,max=256"`

	// TokenEnv names the environment variable holding an API token
	TokenEnv string `lua:"token_env" validate:"omitempty,max=128"`

	// Keyring is the public keyring used for signature verification (supports ~)
	Keyring string `lua:"keyring"`

	Sources []Source `lua:"sources" validate:"dive"`
}

// Source describes one asset to fetch from a repository's latest release.
type Source struct {
	Name  string `lua:"name" validate:"omitempty,max=64"`
	Owner string `lua:"owner" validate:"required,max=100"`
	Repo  string `lua:"repo" validate:"required,max=100"`

	// Asset is the exact asset name; platform placeholders are allowed
	Asset string `lua:"asset" validate:"required,max=256"`

	// Output is the directory the asset is written to (supports ~)
	Output string `lua:"output" validate:"required"`

	Filename    string `lua:"filename" validate:"omitempty,max=256"`
	Signature   string `lua:"signature" validate:"omitempty,max=256"`
	Checksums   string `lua:"checksums" validate:"omitempty,max=256"`
	Extract     string `lua:"extract" validate:"omitempty,max=256"`
	FallbackURL string `lua:"fallback_url" validate:"omitempty,url"`

	SkipInstalled bool `lua:"skip_installed"`
}

// DisplayName returns Name, or owner/repo when unnamed.
func (s Source) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Owner + "/" + s.Repo
}

// FetchOptions converts the source into manager options, expanding ~ in
// the output directory.
func (s Source) FetchOptions() (binary.FetchOptions, error) {
	outputDir, err := ExpandPath(s.Output)
	if err != nil {
		return binary.FetchOptions{}, err
	}
	return binary.FetchOptions{
		Owner:         s.Owner,
		Repo:          s.Repo,
		Asset:         s.Asset,
		OutputDir:     outputDir,
		Filename:      s.Filename,
		Signature:     s.Signature,
		Checksums:     s.Checksums,
		Extract:       s.Extract,
		FallbackURL:   s.FallbackURL,
		SkipInstalled: s.SkipInstalled,
	}, nil
}

// Token reads the API token from the configured environment variable,
// falling back to DefaultTokenEnv.
func (c *Config) Token() string {
	name := c.TokenEnv
	if name == "" {
		name = DefaultTokenEnv
	}
	return os.Getenv(name)
}

// KeyringPath returns Keyring with ~ expanded.
func (c *Config) KeyringPath() (string, error) {
	if c.Keyring == "" {
		return "", nil
	}
	return ExpandPath(c.Keyring)
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their Lua names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("lua"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ownerRepoPattern matches GitHub owner and repository names
var ownerRepoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validate checks struct constraints, then names, paths and duplicates.
func (c *Config) Validate() error {
	if len(c.Sources) > MaxSourceCount {
		return &ValidationError{
			Field:   "sources",
			Message: fmt.Sprintf("too many sources (%d), maximum is %d", len(c.Sources), MaxSourceCount),
		}
	}

	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &ValidationError{Message: err.Error()}
	}

	seen := make(map[string]int, len(c.Sources))
	for i, src := range c.Sources {
		field := func(name string) string { return fmt.Sprintf("sources[%d].%s", i, name) }

		if !ownerRepoPattern.MatchString(src.Owner) {
			return &ValidationError{Field: field(luaFieldOwner), Message: fmt.Sprintf("invalid owner %q", src.Owner)}
		}
		if !ownerRepoPattern.MatchString(src.Repo) {
			return &ValidationError{Field: field(luaFieldRepo), Message: fmt.Sprintf("invalid repository %q", src.Repo)}
		}
		if err := validateOutputPath(src.Output); err != nil {
			return &ValidationError{Field: field(luaFieldOutput), Message: err.Error()}
		}
		for _, f := range []struct{ name, value string }{
			{luaFieldAsset, src.Asset},
			{luaFieldFilename, src.Filename},
			{luaFieldSignature, src.Signature},
			{luaFieldChecksums, src.Checksums},
			{luaFieldExtract, src.Extract},
		} {
			if err := validateFileName(f.value); err != nil {
				return &ValidationError{Field: field(f.name), Message: err.Error()}
			}
		}

		key := src.DisplayName()
		if prev, ok := seen[key]; ok {
			return &ValidationError{
				Field:   field(luaFieldName),
				Message: fmt.Sprintf("duplicate source %q (also sources[%d])", key, prev),
			}
		}
		seen[key] = i
	}

	return nil
}

// fieldError converts a validator failure into a ValidationError
func fieldError(fe validator.FieldError) *ValidationError {
	// Namespace is "Config.sources[0].owner"; drop the root type
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "url":
		msg = fmt.Sprintf("invalid URL %q", fe.Value())
	case "max":
		msg = fmt.Sprintf("exceeds maximum length %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %q constraint", fe.Tag())
	}
	return &ValidationError{Field: field, Message: msg}
}

// validateOutputPath rejects empty paths and any path containing a ".."
// component. Absolute, relative and ~/ paths are accepted.
func validateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("path traversal not allowed: %s", path)
		}
	}
	return nil
}

// validateFileName requires a single path element (empty is allowed)
func validateFileName(name string) error {
	if name == "" {
		return nil
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid name %q: must be a single path element", name)
	}
	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory and cleans
// the result.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return filepath.Clean(path), nil
}
