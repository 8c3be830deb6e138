package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
)

// ErrConfigExists is returned when init would overwrite a config.
var ErrConfigExists = errors.New("config file already exists")

// InitService writes a starter config file.
type InitService struct {
	generator ConfigGenerator
}

// NewInitService creates a new init service.
func NewInitService(generator ConfigGenerator) *InitService {
	return &InitService{generator: generator}
}

// InitRequest contains the parameters for init.
type InitRequest struct {
	Path   string
	Force  bool
	Config config.Config
}

// InitResult contains the results of init.
type InitResult struct {
	Path        string
	Overwritten bool
}

// Execute validates req.Config and writes it to req.Path. An existing file
// is only replaced when Force is set; the write itself is atomic.
func (s *InitService) Execute(ctx context.Context, req InitRequest) (*InitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	cfg := req.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	_, statErr := os.Stat(req.Path)
	exists := statErr == nil
	if exists && !req.Force {
		return nil, fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, req.Path)
	}

	content, err := s.generator.Generate(&cfg)
	if err != nil {
		return nil, fmt.Errorf("generate config: %w", err)
	}

	if err := writeFileAtomic(req.Path, []byte(content)); err != nil {
		return nil, err
	}

	return &InitResult{Path: req.Path, Overwritten: exists}, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, ConfigDirPermissions); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".relfetch-*.lua.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmpName, ConfigFilePermissions); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("install config: %w", err)
	}
	return nil
}
