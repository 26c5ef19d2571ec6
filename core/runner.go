package core

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/viability/core/agg"
	"github.com/huangsam/viability/core/country"
	"github.com/huangsam/viability/core/dimension"
	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
)

// MinCoverage is the completeness below which a dimension is reported.
const MinCoverage = 0.6

// Runner executes scoring passes over in-memory snapshots.
type Runner struct {
	registry   *dimension.Registry
	aggregator *agg.Aggregator
	workers    int
	logger     *slog.Logger
	observer   contract.PassObserver
}

// NewRunner creates a runner. A non-positive worker count means one worker.
func NewRunner(registry *dimension.Registry, aggregator *agg.Aggregator, workers int, logger *slog.Logger) *Runner {
	return &Runner{
		registry:   registry,
		aggregator: aggregator,
		workers:    max(workers, 1),
		logger:     logger,
	}
}

// WithObserver attaches an observer that is told about every finished pass.
func (r *Runner) WithObserver(o contract.PassObserver) *Runner {
	r.observer = o
	return r
}

// Registry returns the dimension engines used by the runner.
func (r *Runner) Registry() *dimension.Registry {
	return r.registry
}

// Aggregator returns the composite aggregator used by the runner.
func (r *Runner) Aggregator() *agg.Aggregator {
	return r.aggregator
}

// Run scores every dimension for the given countries and combines them under
// the persona. An empty country list scores the union of countries found in
// the data. The snapshot is not modified.
func (r *Runner) Run(ctx context.Context, snap schema.Snapshot, countries []string, persona string) (schema.PassResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	result := schema.PassResult{
		RunID:      runID,
		Dimensions: make(map[schema.Dimension]schema.DimensionResult, len(schema.AllDimensions)),
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	requested := country.CanonicalList(countries)
	if len(requested) == 0 {
		requested = r.discoverCountries(snap)
	}
	result.Countries = requested

	dims, err := r.scoreDimensions(ctx, snap, requested)
	if err != nil {
		return result, err
	}
	maps.Copy(result.Dimensions, dims)

	result.Table = BuildTable(requested, result.Dimensions)

	name, weights, fellBack := r.aggregator.ResolvePersona(persona)
	result.Persona = name
	result.PersonaFallback = fellBack
	if fellBack {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown persona %q, using %s", persona, name))
	}

	composite, err := r.aggregator.CompositeWithWeights(result.Table, name, weights)
	if err != nil {
		return result, err
	}
	result.Composite = composite
	result.Ranked = agg.Rank(composite, false, 0)

	result.Completeness = Completeness(result.Dimensions, requested)
	for _, dim := range schema.AllDimensions {
		if result.Dimensions[dim].UsedFallback {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no usable data, fallback scores used", dim))
			continue
		}
		if cov, ok := result.Completeness[dim]; ok && cov < MinCoverage {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: only %.0f%% of countries have data", dim, cov*100))
		}
	}

	result.Duration = time.Since(start)
	logger.Info("Scoring pass complete",
		"persona", name,
		"countries", len(requested),
		"datasets", snap.DatasetCount(),
		"dropped", len(result.DroppedDatasets()),
		"duration", result.Duration)

	if r.observer != nil {
		r.observer.ObservePass(result, snap.DatasetCount(), result.Duration)
	}
	return result, nil
}

// discoverCountries returns the union of countries in the surviving datasets,
// then the fallback tables' countries, then the default list.
func (r *Runner) discoverCountries(snap schema.Snapshot) []string {
	seen := make(map[string]struct{})
	for _, dim := range schema.AllDimensions {
		e, ok := r.registry.Engine(dim)
		if !ok {
			continue
		}
		for _, c := range e.Countries(snap[dim]) {
			seen[c] = struct{}{}
		}
	}
	if len(seen) == 0 {
		for _, spec := range r.registry.Specs() {
			for _, c := range spec.FallbackCountries() {
				seen[c] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return slices.Clone(schema.DefaultCountries)
	}
	out := slices.Collect(maps.Keys(seen))
	sort.Strings(out)
	return out
}

// scoreDimensions runs the dimension engines on a bounded worker pool.
// Each worker writes to a unique slot, so results come back in dimension order.
func (r *Runner) scoreDimensions(ctx context.Context, snap schema.Snapshot, countries []string) (map[schema.Dimension]schema.DimensionResult, error) {
	dims := schema.AllDimensions
	slots := make([]schema.DimensionResult, len(dims))
	idxCh := make(chan int, len(dims))
	var wg sync.WaitGroup

	for range min(r.workers, len(dims)) {
		wg.Go(func() {
			for i := range idxCh {
				if ctx.Err() != nil {
					continue
				}
				e, ok := r.registry.Engine(dims[i])
				if !ok {
					continue
				}
				slots[i] = e.Score(snap[dims[i]], countries)
			}
		})
	}
	for i := range dims {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[schema.Dimension]schema.DimensionResult, len(dims))
	for i, dim := range dims {
		if slots[i].Dimension == "" {
			continue
		}
		out[dim] = slots[i]
	}
	return out, nil
}

// BuildTable lays out dimension scores as a country by dimension table.
func BuildTable(countries []string, dims map[schema.Dimension]schema.DimensionResult) schema.ScoreTable {
	columns := make([]string, 0, len(dims))
	for _, dim := range schema.AllDimensions {
		if _, ok := dims[dim]; ok {
			columns = append(columns, string(dim))
		}
	}
	table := schema.NewScoreTable(countries, columns)
	for _, col := range columns {
		scores := dims[schema.Dimension(col)].Scores
		for _, c := range countries {
			if v, ok := scores[c]; ok {
				table.Set(c, col, v)
			}
		}
	}
	return table
}

// Completeness returns, per dimension, the fraction of countries with at
// least one present feature. Dimensions scored from fallback tables have no
// features and report zero.
func Completeness(dims map[schema.Dimension]schema.DimensionResult, countries []string) map[schema.Dimension]float64 {
	out := make(map[schema.Dimension]float64, len(dims))
	for dim, res := range dims {
		if len(countries) == 0 {
			out[dim] = 0
			continue
		}
		covered := 0
		for _, c := range countries {
			if len(res.Features[c]) > 0 {
				covered++
			}
		}
		out[dim] = float64(covered) / float64(len(countries))
	}
	return out
}
