package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/viability/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samplePass builds a two-country pass with one imputed dimension.
func samplePass() schema.PassResult {
	table := schema.NewScoreTable([]string{"India", "Poland"}, []string{"economic", "emissions"})
	table.Set("India", "economic", 70)
	table.Set("India", "emissions", 80)
	table.Set("Poland", "economic", 40)

	return schema.PassResult{
		RunID:   "run-1",
		Persona: schema.AnalystPersona,
		Table:   table,
		Composite: schema.CompositeResult{
			Index:   map[string]float64{"India": 75, "Poland": 60},
			Imputed: map[string][]schema.Dimension{"Poland": {schema.EmissionsDim}},
		},
		Ranked: []schema.RankedCountry{
			{Rank: 1, Country: "India", Index: 75, Label: "High"},
			{Rank: 2, Country: "Poland", Index: 60, Label: "High"},
		},
		Dimensions: map[schema.Dimension]schema.DimensionResult{
			schema.EconomicDim: {
				Dimension: schema.EconomicDim,
				Features: map[string]schema.FeatureVector{
					"India": {"coal_rents": {Value: 1.5, Year: 2020, HasYear: true, Dataset: "rents"}},
				},
				Contributions: map[string][]schema.MetricContribution{
					"India":  {{Metric: "coal_rents", Raw: 1.5, Normalized: 70, Weight: 1, Weighted: 70, Tier: 1}},
					"Poland": {{Metric: "coal_rents", Raw: 0.5, Normalized: 40, Weight: 1, Weighted: 40, Tier: 1}},
				},
			},
		},
	}
}

// readAll reads every row of a Parquet file.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestCountryScoreStructTags(t *testing.T) {
	sch := parquet.SchemaOf(new(CountryScore))
	for _, col := range []string{"run_id", "scored_at", "persona", "country", "rank", "viability_index", "label", "artificial_support", "imputed"} {
		_, ok := sch.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestConvertCountryScores(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := ConvertCountryScores(samplePass(), now)
	require.Len(t, rows, 2)

	india := rows[0]
	assert.Equal(t, "India", india.Country)
	assert.Equal(t, int32(1), india.Rank)
	require.NotNil(t, india.Economic)
	assert.InDelta(t, 70, *india.Economic, 1e-9)
	require.NotNil(t, india.Emissions)
	assert.Nil(t, india.Necessity)
	assert.Nil(t, india.Imputed)

	poland := rows[1]
	assert.Nil(t, poland.Emissions)
	require.NotNil(t, poland.Imputed)
	assert.Equal(t, "emissions", *poland.Imputed)
}

func TestConvertMetricContributions(t *testing.T) {
	rows := ConvertMetricContributions(samplePass())
	require.Len(t, rows, 2)
	assert.Equal(t, "India", rows[0].Country)
	assert.Equal(t, "rents", rows[0].Dataset)
	require.NotNil(t, rows[0].Year)
	assert.Equal(t, int32(2020), *rows[0].Year)
	assert.Equal(t, "Poland", rows[1].Country)
	assert.Nil(t, rows[1].Year)
}

func TestWriteCountryScoresParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.parquet")
	data := ConvertCountryScores(samplePass(), time.Now().UTC())
	require.NoError(t, WriteCountryScoresParquet(data, path))

	got := readAll[CountryScore](t, path)
	require.Len(t, got, len(data))
	for i := range data {
		assert.Equal(t, data[i].Country, got[i].Country)
		assert.InDelta(t, data[i].ViabilityIndex, got[i].ViabilityIndex, 1e-9)
		assert.WithinDuration(t, data[i].ScoredAt, got[i].ScoredAt, time.Nanosecond)
		if data[i].Emissions == nil {
			assert.Nil(t, got[i].Emissions)
		} else {
			require.NotNil(t, got[i].Emissions)
			assert.InDelta(t, *data[i].Emissions, *got[i].Emissions, 1e-9)
		}
	}
}

func TestWriteMetricContributionsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contrib.parquet")
	data := ConvertMetricContributions(samplePass())
	require.NoError(t, WriteMetricContributionsParquet(data, path))

	got := readAll[MetricContribution](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "coal_rents", got[0].Metric)
	assert.InDelta(t, 70, got[0].Normalized, 1e-9)
}

func TestWriteParquetEmptyAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteCountryScoresParquet(nil, path))
	assert.Empty(t, readAll[CountryScore](t, path))

	err := WriteCountryScoresParquet(nil, filepath.Join(t.TempDir(), "missing", "x.parquet"))
	assert.Error(t, err)
}

func TestContributionsPath(t *testing.T) {
	assert.Equal(t, "out/scores_contributions.parquet", ContributionsPath("out/scores.parquet"))
	assert.Equal(t, "scores_contributions.parquet", ContributionsPath("scores"))
}
