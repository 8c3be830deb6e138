package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
	logger   logging.Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: logging.Nop()}
}

// WithLogger sets the logger receiving parse diagnostics and returns p.
func (p *Parser) WithLogger(logger logging.Logger) *Parser {
	p.logger = logging.OrNop(logger)
	return p
}

// ParseFile reads and parses the config at path. Content that looks like a
// hard-coded secret is reported as a warning.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxConfigSize),
		}
	}

	content := string(data)
	for _, finding := range DetectSensitiveData(content) {
		p.logger.Warn("possible secret in config",
			"file", path,
			"line", finding.Line,
			"kind", finding.PatternName,
			"preview", finding.Preview)
	}

	cfg, err := p.ParseString(ctx, content)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("loaded config", "file", path, "sources", len(cfg.Sources))
	return cfg, nil
}

// ParseString parses a Lua config from a string.
// This is useful for testing and in-memory config generation.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("parse config: %w", ctxErr)
		}
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global relfetch table and validates the result.
func extractConfig(L *lua.LState) (*Config, error) {
	root := L.GetGlobal(luaGlobalRelfetch)
	table, ok := root.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "missing or invalid 'relfetch' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}

	cfg := &Config{}
	var err error
	if cfg.APIBaseURL, err = stringField(table, luaFieldAPIBaseURL, ""); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = stringField(table, luaFieldUserAgent, ""); err != nil {
		return nil, err
	}
	if cfg.TokenEnv, err = stringField(table, luaFieldTokenEnv, ""); err != nil {
		return nil, err
	}
	if cfg.Keyring, err = stringField(table, luaFieldKeyring, ""); err != nil {
		return nil, err
	}

	switch sources := table.RawGetString(luaFieldSources).(type) {
	case *lua.LTable:
		if cfg.Sources, err = extractSources(sources); err != nil {
			return nil, err
		}
	case *lua.LNilType:
	default:
		return nil, &ParseError{
			Message: "invalid 'sources'",
			Detail:  fmt.Sprintf("expected table, got %s", sources.Type()),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// extractSources reads the sources array. nil entries (from platform.when)
// are skipped; any other non-table entry is an error.
func extractSources(table *lua.LTable) ([]Source, error) {
	var sources []Source
	var firstErr error

	// ForEach so that holes left by nil entries do not truncate the array
	table.ForEach(func(key, value lua.LValue) {
		if firstErr != nil || value == lua.LNil {
			return
		}
		where := fmt.Sprintf("sources[%s]", key.String())

		entry, ok := value.(*lua.LTable)
		if !ok {
			firstErr = &ParseError{
				Message: "invalid source",
				Detail:  fmt.Sprintf("%s: expected table, got %s", where, value.Type()),
			}
			return
		}

		src, err := extractSource(entry, where)
		if err != nil {
			firstErr = err
			return
		}
		sources = append(sources, src)
	})

	return sources, firstErr
}

func extractSource(table *lua.LTable, where string) (Source, error) {
	var src Source
	fields := []struct {
		name string
		dst  *string
	}{
		{luaFieldName, &src.Name},
		{luaFieldOwner, &src.Owner},
		{luaFieldRepo, &src.Repo},
		{luaFieldAsset, &src.Asset},
		{luaFieldOutput, &src.Output},
		{luaFieldFilename, &src.Filename},
		{luaFieldSignature, &src.Signature},
		{luaFieldChecksums, &src.Checksums},
		{luaFieldExtract, &src.Extract},
		{luaFieldFallbackURL, &src.FallbackURL},
	}
	for _, f := range fields {
		value, err := stringField(table, f.name, where)
		if err != nil {
			return Source{}, err
		}
		*f.dst = value
	}

	switch skip := table.RawGetString(luaFieldSkip).(type) {
	case lua.LBool:
		src.SkipInstalled = bool(skip)
	case *lua.LNilType:
	default:
		return Source{}, &ParseError{
			Message: "invalid field type",
			Detail:  fmt.Sprintf("%s.%s: expected boolean, got %s", where, luaFieldSkip, skip.Type()),
		}
	}

	return src, nil
}

// stringField reads an optional string field; numbers are not coerced.
func stringField(table *lua.LTable, name, where string) (string, error) {
	switch v := table.RawGetString(name).(type) {
	case lua.LString:
		return string(v), nil
	case *lua.LNilType:
		return "", nil
	default:
		path := name
		if where != "" {
			path = where + "." + name
		}
		return "", &ParseError{
			Message: "invalid field type",
			Detail:  fmt.Sprintf("%s: expected string, got %s", path, v.Type()),
		}
	}
}

// FormatError formats a config error for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		// Extract the most relevant part of the error
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
