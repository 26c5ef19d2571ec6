// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/internal/parquet"
	"github.com/huangsam/viability/schema"
)

// OutWriter provides a unified interface for all output operations.
// It opens the configured output file and dispatches on the output format.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteScores prints a scoring pass. Parquet output writes the ranked scores
// and, with --explain, a sibling file of metric contributions.
func (ow *OutWriter) WriteScores(report schema.ScoreReport, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.ParquetOut {
		return writeScoresParquet(report, cfg)
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteScoreResults(w, report, cfg, duration)
	}, successMessage(cfg))
}

// WriteDimensions prints the score table of every dimension.
func (ow *OutWriter) WriteDimensions(pass schema.PassResult, cfg *contract.Config) error {
	if err := textOnlyFormats(cfg); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteDimensionResults(w, pass, cfg)
	}, successMessage(cfg))
}

// WriteDimensionDetail prints the scores and datasets of one dimension.
func (ow *OutWriter) WriteDimensionDetail(result schema.DimensionResult, countries []string, cfg *contract.Config) error {
	if err := textOnlyFormats(cfg); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteDimensionDetail(w, result, countries, cfg)
	}, successMessage(cfg))
}

// WriteExplain prints the breakdown of one or more countries.
func (ow *OutWriter) WriteExplain(explanations []schema.CountryExplanation, cfg *contract.Config) error {
	if err := textOnlyFormats(cfg); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteExplainResults(w, explanations, cfg)
	}, successMessage(cfg))
}

// WriteComparison prints a persona comparison.
func (ow *OutWriter) WriteComparison(cmp schema.PersonaComparison, cfg *contract.Config) error {
	if err := textOnlyFormats(cfg); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteComparisonResults(w, cmp, cfg)
	}, successMessage(cfg))
}

// WritePersonas prints the available personas.
func (ow *OutWriter) WritePersonas(personas []schema.PersonaInfo, cfg *contract.Config) error {
	if err := textOnlyFormats(cfg); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WritePersonaResults(w, personas, cfg)
	}, successMessage(cfg))
}

// WriteMetrics prints the dimension and persona definitions.
func (ow *OutWriter) WriteMetrics(model *schema.MetricsRenderModel, cfg *contract.Config) error {
	if err := textOnlyFormats(cfg); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteMetricsDefinitions(w, model, cfg)
	}, successMessage(cfg))
}

// WriteValidation prints the score checks and dataset quality reports.
func (ow *OutWriter) WriteValidation(report schema.ValidationReport, cfg *contract.Config) error {
	if err := textOnlyFormats(cfg); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteValidationResults(w, report, cfg)
	}, successMessage(cfg))
}

// WriteSourceStatus prints the datasets exposed by a source.
func (ow *OutWriter) WriteSourceStatus(status schema.SourceStatus, cfg *contract.Config) error {
	if err := textOnlyFormats(cfg); err != nil {
		return err
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteSourceStatus(w, status, cfg)
	}, successMessage(cfg))
}

// textOnlyFormats rejects parquet for outputs that are not tabular scores.
func textOnlyFormats(cfg *contract.Config) error {
	if cfg.Output == schema.ParquetOut {
		return fmt.Errorf("parquet output is only supported by the score command")
	}
	return nil
}

func successMessage(cfg *contract.Config) string {
	switch cfg.Output {
	case schema.JSONOut:
		return "Wrote JSON"
	case schema.CSVOut:
		return "Wrote CSV"
	default:
		return "Wrote table"
	}
}

// writeScoresParquet exports the ranked countries and optionally their metrics.
func writeScoresParquet(report schema.ScoreReport, cfg *contract.Config) error {
	pass := report.Pass
	pass.Ranked = report.Ranked
	if err := parquet.WriteCountryScoresParquet(parquet.ConvertCountryScores(pass, time.Now().UTC()), cfg.OutputFile); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)

	if !cfg.Explain {
		return nil
	}
	contribPath := parquet.ContributionsPath(cfg.OutputFile)
	if err := parquet.WriteMetricContributionsParquet(parquet.ConvertMetricContributions(report.Pass), contribPath); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", contribPath)
	return nil
}
