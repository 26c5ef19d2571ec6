package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a config for the given output mode without colors.
func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:    output,
		Precision: 1,
		Workers:   2,
		Width:     200,
	}
}

// samplePass builds a small pass over two countries.
func samplePass() schema.PassResult {
	table := schema.NewScoreTable([]string{"India", "Poland"}, []string{"economic", "emissions"})
	table.Set("India", "economic", 70)
	table.Set("India", "emissions", 82.3)
	table.Set("Poland", "economic", 40)

	return schema.PassResult{
		RunID:     "run-1",
		Persona:   schema.NGOPersona,
		Countries: []string{"India", "Poland"},
		Table:     table,
		Composite: schema.CompositeResult{
			Persona: schema.NGOPersona,
			Weights: map[schema.Dimension]float64{schema.EconomicDim: 0.2, schema.EmissionsDim: 0.8},
			Index:   map[string]float64{"India": 79.8, "Poland": 73.8},
			Imputed: map[string][]schema.Dimension{"Poland": {schema.EmissionsDim}},
		},
		Ranked: []schema.RankedCountry{
			{Rank: 1, Country: "India", Index: 79.8, Label: "High"},
			{Rank: 2, Country: "Poland", Index: 73.8, Label: "High"},
		},
		Dimensions: map[schema.Dimension]schema.DimensionResult{
			schema.EconomicDim: {
				Dimension: schema.EconomicDim,
				Scores:    map[string]float64{"India": 70, "Poland": 40},
				Features: map[string]schema.FeatureVector{
					"India": {"coal_rents": {Value: 1.5, Dataset: "rents"}},
				},
				Contributions: map[string][]schema.MetricContribution{
					"India": {{Metric: "coal_rents", Raw: 1.5, Normalized: 70, Weight: 1, Weighted: 70, Tier: 1}},
				},
				Datasets: []schema.DatasetReport{
					{Dimension: schema.EconomicDim, Dataset: "rents", Rows: 2, Accepted: true},
					{Dimension: schema.EconomicDim, Dataset: "junk", Rows: 0, Issues: []schema.QualityIssue{{Kind: schema.IssueEmptyTable, Severity: schema.SeverityMajor, Detail: "dataset has no rows"}}},
				},
			},
		},
		Completeness: map[schema.Dimension]float64{schema.EconomicDim: 0.5, schema.EmissionsDim: 0.5},
		Warnings:     []string{"emissions: only 50% of countries have data"},
	}
}

func sampleReport() schema.ScoreReport {
	pass := samplePass()
	return schema.ScoreReport{
		Pass:   pass,
		Source: "csv",
		Ranked: pass.Ranked,
		Breakdowns: map[string]schema.ContributionBreakdown{
			"India": {
				Country: "India", Persona: schema.NGOPersona, Index: 79.8,
				Contributions: []schema.Contribution{
					{Dimension: schema.EmissionsDim, Raw: 82.3, Weight: 0.8, Weighted: 65.8, Percent: 82.4},
					{Dimension: schema.EconomicDim, Raw: 70, Weight: 0.2, Weighted: 14, Percent: 17.6},
				},
			},
		},
	}
}

func TestWriteScoreResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScoreResults(&buf, sampleReport(), testConfig(schema.JSONOut), time.Second))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "run-1", out["run_id"])
	assert.Equal(t, "csv", out["source"])

	countries := out["countries"].([]any)
	require.Len(t, countries, 2)
	india := countries[0].(map[string]any)
	assert.Equal(t, "India", india["country"])
	assert.Equal(t, float64(1), india["rank"])
	assert.InDelta(t, 82.3, india["dimensions"].(map[string]any)["emissions"], 1e-9)
	assert.NotNil(t, india["breakdown"])

	poland := countries[1].(map[string]any)
	assert.Equal(t, []any{"emissions"}, poland["imputed"])
	assert.Nil(t, poland["breakdown"])

	dropped := out["dropped_datasets"].([]any)
	assert.Len(t, dropped, 1)
}

func TestWriteScoreResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScoreResults(&buf, sampleReport(), testConfig(schema.CSVOut), time.Second))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, []string{"rank", "country", "viability_index", "label"}, header[:4])
	assert.Equal(t, "run_id", header[len(header)-1])

	india := records[1]
	assert.Equal(t, "India", india[1])
	assert.Equal(t, "79.8", india[2])
	assert.Equal(t, "High", india[3])
	assert.Equal(t, "82.3", india[4+6]) // emissions is the last dimension
	assert.Equal(t, "", india[4])       // infrastructure missing

	assert.Equal(t, "emissions", records[2][4+len(schema.AllDimensions)])
}

func TestWriteScoreResultsText(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	cfg.Explain = true

	var buf bytes.Buffer
	require.NoError(t, WriteScoreResults(&buf, sampleReport(), cfg, 1500*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "India")
	assert.Contains(t, out, "79.8")
	assert.Contains(t, out, "emissions 82%")
	assert.Contains(t, out, "Showing 2 of 2 countries under the ngo persona")
	assert.Contains(t, out, "only 50% of countries have data")
	assert.Contains(t, out, "dropped economic/junk: dataset has no rows")
	assert.Contains(t, out, "Source: csv")
}

func TestOutWriterWriteScoresToFile(t *testing.T) {
	cfg := testConfig(schema.CSVOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "scores.csv")

	require.NoError(t, NewOutWriter().WriteScores(sampleReport(), cfg, time.Second))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "rank,country,viability_index"))
}

func TestOutWriterWriteScoresParquet(t *testing.T) {
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "scores.parquet")
	cfg.Explain = true

	require.NoError(t, NewOutWriter().WriteScores(sampleReport(), cfg, time.Second))
	assert.FileExists(t, cfg.OutputFile)
	assert.FileExists(t, filepath.Join(filepath.Dir(cfg.OutputFile), "scores_contributions.parquet"))
}

func TestOutWriterRejectsParquetElsewhere(t *testing.T) {
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "x.parquet")
	ow := NewOutWriter()

	assert.Error(t, ow.WriteDimensions(samplePass(), cfg))
	assert.Error(t, ow.WritePersonas(nil, cfg))
	assert.Error(t, ow.WriteMetrics(&schema.MetricsRenderModel{}, cfg))
	assert.NoFileExists(t, cfg.OutputFile)
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, fmtOptional := createFormatters(2)
	assert.Equal(t, "3.14", fmtFloat(3.14159))
	assert.Equal(t, "-", fmtOptional(1, false, "-"))
	assert.Equal(t, "1.00", fmtOptional(1, true, "-"))
	assert.Equal(t, "50%", fmtPercent(0.5))
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		explain  bool
		expected int
	}{
		{"narrow terminal", 60, false, minNameWidth},
		{"wide terminal", 300, false, maxNameWidth},
		{"medium terminal", 120, false, 120 - 30 - 9*len(schema.AllDimensions)},
		{"explain narrows", 150, true, 150 - 60 - 9*len(schema.AllDimensions)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width, Explain: tt.explain}
			assert.Equal(t, tt.expected, GetMaxTableNameWidth(cfg))
		})
	}
}
