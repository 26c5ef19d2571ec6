package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huangsam/viability/core/agg"
	"github.com/huangsam/viability/core/dimension"
	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/internal/metrics"
	"github.com/huangsam/viability/schema"
)

// Pipeline wires a dataset source to the scoring engine.
type Pipeline struct {
	source   contract.DatasetSource
	runner   *Runner
	recorder *metrics.Recorder
	cfg      *contract.Config
	logger   *slog.Logger
}

// BuildEngine creates the dimension registry and the aggregator for a config.
// Dimension overrides are applied when a dimensions file is configured.
func BuildEngine(cfg *contract.Config, logger *slog.Logger) (*dimension.Registry, *agg.Aggregator, error) {
	specs := dimension.DefaultSpecs()
	if cfg.DimensionsFile != "" {
		overridden, err := dimension.LoadOverrides(cfg.DimensionsFile, specs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to apply dimension overrides: %w", err)
		}
		specs = overridden
	}
	registry, err := dimension.NewRegistry(specs, logger)
	if err != nil {
		return nil, nil, err
	}
	return registry, agg.NewAggregator(cfg.CustomPersonas, logger), nil
}

// NewPipeline creates a pipeline reading from src.
func NewPipeline(cfg *contract.Config, src contract.DatasetSource, logger *slog.Logger) (*Pipeline, error) {
	registry, aggregator, err := BuildEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	recorder := metrics.NewRecorder()
	runner := NewRunner(registry, aggregator, cfg.Workers, logger).WithObserver(recorder)
	return &Pipeline{
		source:   src,
		runner:   runner,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Runner returns the runner used by the pipeline.
func (p *Pipeline) Runner() *Runner {
	return p.runner
}

// Recorder returns the metrics recorder observing every pass.
func (p *Pipeline) Recorder() *metrics.Recorder {
	return p.recorder
}

// Pass loads a fresh snapshot and scores it under the given persona.
func (p *Pipeline) Pass(ctx context.Context, persona string) (schema.PassResult, error) {
	if p.source == nil {
		return schema.PassResult{}, fmt.Errorf("no dataset source configured")
	}
	snap, err := p.source.Load(ctx)
	if err != nil {
		return schema.PassResult{}, fmt.Errorf("failed to load datasets from %s source: %w", p.source.Name(), err)
	}
	p.logger.Debug("Loaded snapshot", "source", p.source.Name(), "datasets", snap.DatasetCount())

	result, err := p.runner.Run(ctx, snap, p.cfg.Countries, persona)
	if err != nil {
		return result, err
	}

	if p.cfg.MetricsFile != "" {
		if err := p.recorder.WriteTextfile(p.cfg.MetricsFile); err != nil {
			p.logger.Warn("Cannot write metrics file", "path", p.cfg.MetricsFile, "error", err)
		}
	}
	return result, nil
}
