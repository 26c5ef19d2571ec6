// Package core has core logic for scoring, explaining and ranking countries.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/huangsam/viability/core/agg"
	"github.com/huangsam/viability/core/dimension"
	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/internal/outwriter"
	"github.com/huangsam/viability/internal/source"
	"github.com/huangsam/viability/schema"
)

// ErrValidationFailed is returned when the score table fails validation.
var ErrValidationFailed = errors.New("score validation failed")

// ExecutorFunc defines the function signature for the source-backed commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, src contract.DatasetSource) error

// ExecuteScore runs a scoring pass and prints the ranked countries.
// It serves as the main entry point for the 'score' command.
func ExecuteScore(ctx context.Context, cfg *contract.Config, src contract.DatasetSource) error {
	start := time.Now()
	report, err := GetScoreResults(ctx, cfg, src)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteScores(report, cfg, time.Since(start))
}

// ExecuteDimensions prints every dimension score, or the detail of one
// dimension when a name is given.
func ExecuteDimensions(ctx context.Context, cfg *contract.Config, src contract.DatasetSource, name string) error {
	var dim schema.Dimension
	if name != "" {
		parsed, err := dimension.ParseDimension(name)
		if err != nil {
			return err
		}
		dim = parsed
	}

	pass, err := GetDimensionResults(ctx, cfg, src)
	if err != nil {
		return err
	}

	ow := outwriter.NewOutWriter()
	if dim == "" {
		return ow.WriteDimensions(pass, cfg)
	}
	return ow.WriteDimensionDetail(pass.Dimensions[dim], pass.Countries, cfg)
}

// ExecuteExplain prints how the index of each given country was built.
func ExecuteExplain(ctx context.Context, cfg *contract.Config, src contract.DatasetSource, countries []string) error {
	explanations, err := GetExplainResults(ctx, cfg, src, countries)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteExplain(explanations, cfg)
}

// ExecuteCompare prints the index of every country under several personas.
// An empty persona list compares all known personas.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, src contract.DatasetSource, personas []string) error {
	cmp, err := GetComparisonResults(ctx, cfg, src, personas)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteComparison(cmp, cfg)
}

// ExecutePersonas prints the built-in and configured personas.
// This is a static display that does not load any datasets.
func ExecutePersonas(_ context.Context, cfg *contract.Config) error {
	personas, err := GetPersonaResults(cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePersonas(personas, cfg)
}

// ExecuteMetrics prints the dimension and persona definitions in effect.
// This is a static display that does not load any datasets.
func ExecuteMetrics(_ context.Context, cfg *contract.Config) error {
	registry, aggregator, err := BuildEngine(cfg, slog.Default())
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMetrics(BuildMetricsRenderModel(registry, aggregator), cfg)
}

// ExecuteValidate prints the dataset quality reports and checks the score table.
// It returns ErrValidationFailed after printing when the table has issues.
func ExecuteValidate(ctx context.Context, cfg *contract.Config, src contract.DatasetSource) error {
	pass, err := GetDimensionResults(ctx, cfg, src)
	if err != nil {
		return err
	}

	report := BuildValidationReport(pass)
	if err := outwriter.NewOutWriter().WriteValidation(report, cfg); err != nil {
		return err
	}
	if !report.Scores.Valid {
		return ErrValidationFailed
	}
	return nil
}

// BuildValidationReport checks the score table of a pass and collects the
// quality report of every dataset it read.
func BuildValidationReport(pass schema.PassResult) schema.ValidationReport {
	report := schema.ValidationReport{
		Scores: agg.ValidateScores(pass.Table),
	}
	for _, dim := range schema.AllDimensions {
		report.Datasets = append(report.Datasets, pass.Dimensions[dim].Datasets...)
	}
	return report
}

// ExecuteSourceStatus prints the datasets the configured source exposes.
func ExecuteSourceStatus(ctx context.Context, cfg *contract.Config, src contract.DatasetSource) error {
	datasets, err := src.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read %s source status: %w", src.Name(), err)
	}
	status := schema.SourceStatus{
		Source:   src.Name(),
		Datasets: datasets,
	}
	if cfg.SourceBackend == schema.CSVSource || cfg.SourceBackend == "" {
		status.Location = cfg.DataDir
	}
	return outwriter.NewOutWriter().WriteSourceStatus(status, cfg)
}

// ExecuteSourceMigrate applies the catalog migrations to the SQL source.
// A negative version migrates to the latest, zero rolls everything back.
func ExecuteSourceMigrate(_ context.Context, cfg *contract.Config, targetVersion int) error {
	if cfg.SourceBackend == schema.CSVSource || cfg.SourceBackend == "" {
		return fmt.Errorf("source migrate requires a SQL source (sqlite, mysql or postgresql)")
	}
	return source.Migrate(cfg.SourceBackend, cfg.SourceDBConnect, targetVersion, os.Stdout)
}

// GetScoreResults runs a pass and prepares it for display.
func GetScoreResults(ctx context.Context, cfg *contract.Config, src contract.DatasetSource) (schema.ScoreReport, error) {
	p, err := NewPipeline(cfg, src, slog.Default())
	if err != nil {
		return schema.ScoreReport{}, err
	}
	pass, err := p.Pass(ctx, cfg.Persona)
	if err != nil {
		return schema.ScoreReport{}, err
	}
	return BuildScoreReport(pass, p.Runner().Aggregator(), src.Name(), cfg)
}

// BuildScoreReport ranks and limits a pass, adding breakdowns when explaining.
func BuildScoreReport(pass schema.PassResult, aggregator *agg.Aggregator, sourceName string, cfg *contract.Config) (schema.ScoreReport, error) {
	report := schema.ScoreReport{
		Pass:   pass,
		Source: sourceName,
		Ranked: agg.Rank(pass.Composite, cfg.Ascending, cfg.ResultLimit),
	}
	if !cfg.Explain || len(report.Ranked) == 0 {
		return report, nil
	}

	countries := make([]string, len(report.Ranked))
	for i, rc := range report.Ranked {
		countries[i] = rc.Country
	}
	breakdowns, err := aggregator.Contributions(pass.Table, pass.Persona, countries...)
	if err != nil {
		return report, err
	}
	report.Breakdowns = make(map[string]schema.ContributionBreakdown, len(breakdowns))
	for _, b := range breakdowns {
		report.Breakdowns[b.Country] = b
	}
	return report, nil
}

// GetDimensionResults runs a pass under the configured persona.
func GetDimensionResults(ctx context.Context, cfg *contract.Config, src contract.DatasetSource) (schema.PassResult, error) {
	p, err := NewPipeline(cfg, src, slog.Default())
	if err != nil {
		return schema.PassResult{}, err
	}
	return p.Pass(ctx, cfg.Persona)
}

// GetExplainResults runs a pass and explains the given countries.
func GetExplainResults(ctx context.Context, cfg *contract.Config, src contract.DatasetSource, countries []string) ([]schema.CountryExplanation, error) {
	if len(countries) == 0 {
		return nil, fmt.Errorf("at least one country is required")
	}
	explainCfg := cfg.Clone()
	explainCfg.Countries = mergeCountries(cfg.Countries, countries)

	p, err := NewPipeline(explainCfg, src, slog.Default())
	if err != nil {
		return nil, err
	}
	pass, err := p.Pass(ctx, cfg.Persona)
	if err != nil {
		return nil, err
	}
	breakdowns, err := p.Runner().Aggregator().Contributions(pass.Table, pass.Persona, countries...)
	if err != nil {
		return nil, err
	}
	return BuildExplanations(pass, breakdowns), nil
}

// mergeCountries appends the explained countries to the configured batch so
// they are always scored, keeping the batch for normalization.
func mergeCountries(batch, explain []string) []string {
	if len(batch) == 0 {
		return nil
	}
	out := slices.Clone(batch)
	return append(out, explain...)
}

// BuildExplanations pairs each breakdown with the metric detail of its dimensions.
func BuildExplanations(pass schema.PassResult, breakdowns []schema.ContributionBreakdown) []schema.CountryExplanation {
	out := make([]schema.CountryExplanation, 0, len(breakdowns))
	for _, b := range breakdowns {
		ex := schema.CountryExplanation{
			Breakdown: b,
			Metrics:   make(map[schema.Dimension][]schema.MetricContribution),
			Features:  make(map[schema.Dimension]schema.FeatureVector),
		}
		for _, dim := range schema.AllDimensions {
			res, ok := pass.Dimensions[dim]
			if !ok {
				continue
			}
			if res.UsedFallback {
				ex.Fallback = append(ex.Fallback, dim)
			}
			if mc := res.Contributions[b.Country]; len(mc) > 0 {
				ex.Metrics[dim] = mc
			}
			if fv := res.Features[b.Country]; len(fv) > 0 {
				ex.Features[dim] = fv
			}
		}
		out = append(out, ex)
	}
	return out
}

// GetComparisonResults runs a pass and computes the index under each persona.
func GetComparisonResults(ctx context.Context, cfg *contract.Config, src contract.DatasetSource, personas []string) (schema.PersonaComparison, error) {
	p, err := NewPipeline(cfg, src, slog.Default())
	if err != nil {
		return schema.PersonaComparison{}, err
	}
	pass, err := p.Pass(ctx, cfg.Persona)
	if err != nil {
		return schema.PersonaComparison{}, err
	}
	return p.Runner().Aggregator().ComparePersonas(pass.Table, personas)
}

// GetPersonaResults describes every persona known to the configuration.
func GetPersonaResults(cfg *contract.Config) ([]schema.PersonaInfo, error) {
	aggregator := agg.NewAggregator(cfg.CustomPersonas, slog.Default())
	names := aggregator.Personas()
	out := make([]schema.PersonaInfo, 0, len(names))
	for _, name := range names {
		info, err := aggregator.PersonaInfo(name)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}
