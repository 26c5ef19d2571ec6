package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/internal/outwriter"
	"github.com/huangsam/viability/internal/watch"
	"github.com/huangsam/viability/schema"
)

// ExecuteWatch scores once, then rescores every time a dataset file under the
// data directory settles. It returns when ctx is canceled.
func ExecuteWatch(ctx context.Context, cfg *contract.Config, src contract.DatasetSource) error {
	if cfg.SourceBackend != schema.CSVSource && cfg.SourceBackend != "" {
		return fmt.Errorf("watch requires the csv source (got %s)", cfg.SourceBackend)
	}
	logger := slog.Default()

	p, err := NewPipeline(cfg, src, logger)
	if err != nil {
		return err
	}
	score := func() error {
		start := time.Now()
		pass, err := p.Pass(ctx, cfg.Persona)
		if err != nil {
			return err
		}
		report, err := BuildScoreReport(pass, p.Runner().Aggregator(), src.Name(), cfg)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteScores(report, cfg, time.Since(start))
	}
	if err := score(); err != nil {
		return err
	}

	w, err := watch.NewWatcher(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return fmt.Errorf("failed to watch %s: %w", cfg.DataDir, err)
	}
	defer w.Stop()

	logger.Info("Watching for dataset changes", "dir", cfg.DataDir)
	return watchLoop(ctx, w.Changes, logger, score)
}

// watchLoop calls rescore once per burst of changes. A failed rescore is
// logged and the loop keeps watching.
func watchLoop(ctx context.Context, changes <-chan watch.Change, logger *slog.Logger, rescore func() error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logChange(logger, change)
			// Drain whatever else already settled so one burst means one pass.
		drain:
			for {
				select {
				case more, ok := <-changes:
					if !ok {
						break drain
					}
					logChange(logger, more)
				default:
					break drain
				}
			}
			if err := rescore(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("Rescore failed", "error", err)
			}
		}
	}
}

func logChange(logger *slog.Logger, c watch.Change) {
	logger.Info("Dataset changed", "dimension", c.Dimension, "file", c.File, "removed", c.Removed)
}
