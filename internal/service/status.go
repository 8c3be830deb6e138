package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/platform"
)

// StatusService reports which configured sources are present on disk.
type StatusService struct {
	loader   ConfigLoader
	detector platform.Detector
}

// NewStatusService creates a new status service.
func NewStatusService(loader ConfigLoader, detector platform.Detector) *StatusService {
	return &StatusService{loader: loader, detector: detector}
}

// StatusRequest contains parameters for the status operation.
type StatusRequest struct {
	ConfigPath string
}

// StatusResult contains the results of the status operation.
type StatusResult struct {
	ConfigPath string
	Platform   *platform.Info
	Sources    []config.SourceWithStatus
}

// List loads the config and detects the status of every source, sorted by
// display name.
func (s *StatusService) List(ctx context.Context, req StatusRequest) (*StatusResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := s.loader.ParseFile(ctx, req.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	info, err := s.detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	sources, err := config.DetectStatus(ctx, cfg.Sources, info)
	if err != nil {
		return nil, fmt.Errorf("detect status: %w", err)
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Source.DisplayName() < sources[j].Source.DisplayName()
	})

	return &StatusResult{
		ConfigPath: req.ConfigPath,
		Platform:   info,
		Sources:    sources,
	}, nil
}
