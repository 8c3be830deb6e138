package service

import (
	"context"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
)

// ValidateService checks a config file without fetching anything.
type ValidateService struct {
	loader ConfigLoader
}

// NewValidateService creates a new validate service.
func NewValidateService(loader ConfigLoader) *ValidateService {
	return &ValidateService{loader: loader}
}

// ValidateResult contains the parsed config and any hard-coded secrets
// found in the file.
type ValidateResult struct {
	ConfigPath string
	Config     *config.Config
	Findings   []config.SensitiveDataFinding
}

// Validate parses and validates the config at path.
func (s *ValidateService) Validate(ctx context.Context, path string) (*ValidateResult, error) {
	cfg, err := s.loader.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return &ValidateResult{
		ConfigPath: path,
		Config:     cfg,
		Findings:   config.DetectSensitiveData(string(content)),
	}, nil
}
