package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/huangsam/viability/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDimensionResults(t *testing.T) {
	pass := samplePass()

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDimensionResults(&buf, pass, testConfig(schema.CSVOut)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "country", records[0][0])
		assert.Len(t, records[0], 1+len(schema.AllDimensions))
		assert.Equal(t, "Poland", records[2][0])
		assert.Equal(t, "40.0", records[2][6])
		assert.Equal(t, "", records[2][7])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDimensionResults(&buf, pass, testConfig(schema.JSONOut)))
		var out map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "run-1", out["run_id"])
		assert.Contains(t, out, "table")
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDimensionResults(&buf, pass, testConfig(schema.TextOut)))
		assert.Contains(t, buf.String(), "50%")
		assert.Contains(t, buf.String(), "Poland")
	})
}

func TestWriteDimensionDetail(t *testing.T) {
	result := samplePass().Dimensions[schema.EconomicDim]
	countries := []string{"India", "Poland", "Chile"}

	var buf bytes.Buffer
	require.NoError(t, WriteDimensionDetail(&buf, result, countries, testConfig(schema.CSVOut)))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "countries without a score are skipped")
	assert.Equal(t, []string{"India", "70.0", "High", "1", "coal_rents"}, records[1])
	assert.Equal(t, []string{"Poland", "40.0", "Moderate", "0", ""}, records[2])

	buf.Reset()
	require.NoError(t, WriteDimensionDetail(&buf, result, countries, testConfig(schema.TextOut)))
	out := buf.String()
	assert.Contains(t, out, "economic")
	assert.Contains(t, out, "dropped")
	assert.Contains(t, out, "junk")
}

func TestTopMetric(t *testing.T) {
	assert.Equal(t, "", topMetric(nil))
	contribs := []schema.MetricContribution{
		{Metric: "a", Weighted: 10},
		{Metric: "b", Weighted: 30},
		{Metric: "c", Weighted: 30},
	}
	assert.Equal(t, "b", topMetric(contribs))
	assert.Equal(t, "a", contribs[0].Metric, "input order is preserved")
}

func sampleExplanation() schema.CountryExplanation {
	pass := samplePass()
	return schema.CountryExplanation{
		Breakdown: sampleReport().Breakdowns["India"],
		Metrics: map[schema.Dimension][]schema.MetricContribution{
			schema.EconomicDim: pass.Dimensions[schema.EconomicDim].Contributions["India"],
		},
		Features: map[schema.Dimension]schema.FeatureVector{
			schema.EconomicDim: pass.Dimensions[schema.EconomicDim].Features["India"],
		},
		Fallback: []schema.Dimension{schema.EmissionsDim},
	}
}

func TestWriteExplainResults(t *testing.T) {
	explanations := []schema.CountryExplanation{sampleExplanation()}

	t.Run("csv has one row per metric", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteExplainResults(&buf, explanations, testConfig(schema.CSVOut)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "emissions", records[1][3])
		assert.Equal(t, "", records[1][9])
		assert.Equal(t, "economic", records[2][3])
		assert.Equal(t, "coal_rents", records[2][9])
		assert.Equal(t, "1", records[2][13])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteExplainResults(&buf, explanations, testConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "India: 79.8")
		assert.Contains(t, out, "fallback")
		assert.Contains(t, out, "coal_rents")
		assert.Contains(t, out, "rents")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteExplainResults(&buf, explanations, testConfig(schema.JSONOut)))
		var out []schema.CountryExplanation
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "India", out[0].Breakdown.Country)
	})
}

func TestWriteComparisonResults(t *testing.T) {
	cmp := schema.PersonaComparison{
		Countries: []string{"India", "Poland"},
		Personas:  []string{schema.InvestorPersona, schema.NGOPersona},
		Index: map[string]map[string]float64{
			schema.InvestorPersona: {"India": 60, "Poland": 50},
			schema.NGOPersona:      {"India": 80, "Poland": 52},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparisonResults(&buf, cmp, testConfig(schema.CSVOut)))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "investor", "ngo", "spread"}, records[0])
	assert.Equal(t, []string{"India", "60.0", "80.0", "20.0"}, records[1])

	buf.Reset()
	require.NoError(t, WriteComparisonResults(&buf, cmp, testConfig(schema.JSONOut)))
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.InDelta(t, 2.0, out["spread"].(map[string]any)["Poland"], 1e-9)

	buf.Reset()
	require.NoError(t, WriteComparisonResults(&buf, cmp, testConfig(schema.TextOut)))
	assert.Contains(t, buf.String(), "Compared 2 personas across 2 countries")
}

func TestWritePersonaResults(t *testing.T) {
	personas := []schema.PersonaInfo{
		{
			Name:          schema.InvestorPersona,
			Description:   "money",
			Weights:       schema.GetDefaultWeights(schema.InvestorPersona),
			TopDimensions: []schema.Dimension{schema.EconomicDim},
		},
		{
			Name:    "miner",
			Weights: map[schema.Dimension]float64{schema.EconomicDim: 1},
			Custom:  true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePersonaResults(&buf, personas, testConfig(schema.CSVOut)))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "true", records[2][1])
	assert.Equal(t, "1.000", records[2][3+5]) // economic column

	buf.Reset()
	require.NoError(t, WritePersonaResults(&buf, personas, testConfig(schema.TextOut)))
	assert.Contains(t, buf.String(), "miner *")
}

func TestFormatWeights(t *testing.T) {
	weights := map[schema.Dimension]float64{
		schema.EmissionsDim: 0.4,
		schema.NecessityDim: 0.6,
		schema.EconomicDim:  0,
	}
	assert.Equal(t, "0.60*necessity+0.40*emissions", FormatWeights(weights))
	assert.Equal(t, "", FormatWeights(nil))
}

func TestWriteMetricsDefinitions(t *testing.T) {
	model := &schema.MetricsRenderModel{
		Title:       "Viability Dimensions",
		Description: "weighted sums",
		Dimensions: []schema.DimensionDefinition{{
			Name:    schema.EconomicDim,
			Purpose: "rents",
			Formula: "1.00*coal_rents",
			Metrics: []schema.MetricDefinition{{
				Name: "coal_rents", Sources: []string{"coal_rents_pct_of_gdp"}, Weight: 1,
				Direction: schema.HigherIsWorse, Scaling: schema.FixedCapScaling, Bounds: "[0, 10]", Tier: 1,
			}},
		}},
		Personas: []schema.PersonaFormula{{Name: "analyst", Purpose: "neutral", Formula: "0.14*economic"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMetricsDefinitions(&buf, model, testConfig(schema.TextOut)))
	out := buf.String()
	assert.Contains(t, out, "ECONOMIC: rents")
	assert.Contains(t, out, "Score = 1.00*coal_rents")
	assert.Contains(t, out, "[0, 10]")
	assert.Contains(t, out, "ANALYST: neutral")

	buf.Reset()
	require.NoError(t, WriteMetricsDefinitions(&buf, model, testConfig(schema.CSVOut)))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "coal_rents", records[1][1])
}

func TestWriteValidationResults(t *testing.T) {
	report := schema.ValidationReport{
		Scores: schema.ScoreValidation{
			Valid:  false,
			Issues: []string{"missing dimension column: necessity"},
			Summary: map[schema.Dimension]schema.DimensionSummary{
				schema.EconomicDim: {Mean: 55, Std: 15, Min: 40, Max: 70, Count: 2, Coverage: 1},
			},
		},
		Datasets: samplePass().Dimensions[schema.EconomicDim].Datasets,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteValidationResults(&buf, report, testConfig(schema.TextOut)))
	out := buf.String()
	assert.Contains(t, out, "Score table has issues")
	assert.Contains(t, out, "missing dimension column: necessity")
	assert.Contains(t, out, "junk")

	buf.Reset()
	require.NoError(t, WriteValidationResults(&buf, report, testConfig(schema.CSVOut)))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "true", records[1][5])
	assert.Equal(t, string(schema.IssueEmptyTable), records[2][7])
}

func TestWriteSourceStatus(t *testing.T) {
	status := schema.SourceStatus{
		Source:   "csv",
		Location: "data",
		Datasets: map[schema.Dimension][]string{
			schema.EconomicDim: {"power", "rents"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSourceStatus(&buf, status, testConfig(schema.TextOut)))
	assert.Contains(t, buf.String(), "csv (data)")
	assert.Contains(t, buf.String(), "Total datasets: 2")

	buf.Reset()
	require.NoError(t, WriteSourceStatus(&buf, status, testConfig(schema.CSVOut)))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"dimension", "dataset"}, {"economic", "power"}, {"economic", "rents"}}, records)
}
