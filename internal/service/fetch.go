package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/relfetch/internal/binary"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/config"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/lock"
	"github.com/ZebulonRouseFrantzich/relfetch/internal/logging"
)

// ErrUnknownSource is returned when a requested source is not in the config.
var ErrUnknownSource = errors.New("unknown source")

// FetchService orchestrates the fetch operation.
type FetchService struct {
	loader     ConfigLoader
	newFetcher FetcherFactory
	clock      Clock
	logger     logging.Logger
}

// NewFetchService creates a new fetch service with dependency injection.
func NewFetchService(loader ConfigLoader, newFetcher FetcherFactory, clock Clock, logger logging.Logger) *FetchService {
	if clock == nil {
		clock = RealClock{}
	}
	return &FetchService{
		loader:     loader,
		newFetcher: newFetcher,
		clock:      clock,
		logger:     logging.OrNop(logger),
	}
}

// FetchRequest contains the parameters for a fetch.
type FetchRequest struct {
	ConfigPath string
	// Only restricts the run to sources with these display names
	Only []string
	// KeepGoing continues past failed sources instead of stopping at the first
	KeepGoing bool
}

// SourceOutcome is the result of fetching one source.
type SourceOutcome struct {
	Source config.Source
	Result *binary.FetchResult
	Err    error
}

// FetchSummary contains the results of the fetch operation.
type FetchSummary struct {
	ConfigPath string
	Outcomes   []SourceOutcome
	StartedAt  time.Time
	Duration   time.Duration
}

// Failed returns the number of sources that failed.
func (s *FetchSummary) Failed() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Execute loads the config and fetches the selected sources in order.
// Each distinct output directory is locked for the duration of the run.
// The summary is returned alongside any error.
func (s *FetchService) Execute(ctx context.Context, req FetchRequest) (*FetchSummary, error) {
	summary := &FetchSummary{ConfigPath: req.ConfigPath, StartedAt: s.clock.Now()}
	defer func() { summary.Duration = s.clock.Now().Sub(summary.StartedAt) }()

	cfg, err := s.loader.ParseFile(ctx, req.ConfigPath)
	if err != nil {
		return summary, fmt.Errorf("load config: %w", err)
	}

	sources, err := selectSources(cfg.Sources, req.Only)
	if err != nil {
		return summary, err
	}
	if len(sources) == 0 {
		s.logger.Info("no sources to fetch", "config", req.ConfigPath)
		return summary, nil
	}

	opts := make([]binary.FetchOptions, len(sources))
	for i, src := range sources {
		if opts[i], err = src.FetchOptions(); err != nil {
			return summary, fmt.Errorf("source %s: %w", src.DisplayName(), err)
		}
	}

	fetcher, err := s.newFetcher(cfg)
	if err != nil {
		return summary, fmt.Errorf("create fetcher: %w", err)
	}

	release, err := s.lockOutputDirs(ctx, opts)
	if err != nil {
		return summary, err
	}
	defer release()

	if !req.KeepGoing {
		results, err := fetcher.FetchAll(ctx, opts)
		for i, result := range results {
			summary.Outcomes = append(summary.Outcomes, SourceOutcome{Source: sources[i], Result: result})
		}
		if err != nil {
			if failed := len(results); failed < len(sources) {
				summary.Outcomes = append(summary.Outcomes, SourceOutcome{Source: sources[failed], Err: err})
			}
			return summary, err
		}
		return summary, nil
	}

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, err := fetcher.Fetch(ctx, opts[i])
		if err != nil {
			s.logger.Error("fetch failed", "source", src.DisplayName(), "error", err)
		}
		summary.Outcomes = append(summary.Outcomes, SourceOutcome{Source: src, Result: result, Err: err})
	}

	if failed := summary.Failed(); failed > 0 {
		return summary, fmt.Errorf("%d of %d sources failed", failed, len(sources))
	}
	return summary, nil
}

// selectSources filters sources by display name, preserving config order.
func selectSources(sources []config.Source, only []string) ([]config.Source, error) {
	if len(only) == 0 {
		return sources, nil
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = false
	}

	var selected []config.Source
	for _, src := range sources {
		if _, ok := wanted[src.DisplayName()]; ok {
			wanted[src.DisplayName()] = true
			selected = append(selected, src)
		}
	}

	var missing []string
	for name, found := range wanted {
		if !found {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, strings.Join(missing, ", "))
	}
	return selected, nil
}

// lockOutputDirs locks every distinct output directory, creating missing
// ones. The returned function releases them all.
func (s *FetchService) lockOutputDirs(ctx context.Context, opts []binary.FetchOptions) (func(), error) {
	var held []*lock.Lock
	release := func() {
		for _, l := range held {
			_ = l.Release()
		}
	}

	seen := make(map[string]bool)
	for _, o := range opts {
		if seen[o.OutputDir] {
			continue
		}
		seen[o.OutputDir] = true

		l, err := lock.Acquire(ctx, o.OutputDir)
		if err != nil {
			release()
			return nil, fmt.Errorf("lock %s: %w", o.OutputDir, err)
		}
		held = append(held, l)
		if l.CreatedDir() {
			s.logger.Info("created output directory", "dir", o.OutputDir)
		}
	}
	return release, nil
}
