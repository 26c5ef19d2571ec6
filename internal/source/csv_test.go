package source

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file and its parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadCSV(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		ds, err := ReadCSV("rents", strings.NewReader("\ufeffEntity,Year,Coal Rents\nIndia,2020,1.5\nPoland,2020,NA\n"))
		require.NoError(t, err)
		assert.Equal(t, "rents", ds.Name)
		assert.Equal(t, []string{"Entity", "Year", "Coal Rents"}, ds.Columns)
		require.Equal(t, 2, ds.Len())

		v, ok := ds.At(0, 2).Float()
		assert.True(t, ok)
		assert.InDelta(t, 1.5, v, 1e-9)
		assert.False(t, ds.At(1, 2).Valid)
	})

	t.Run("ragged rows", func(t *testing.T) {
		ds, err := ReadCSV("ragged", strings.NewReader("country,value\nIndia\nChina,3,extra\n"))
		require.NoError(t, err)
		assert.Equal(t, 2, ds.Len())
		assert.False(t, ds.At(0, 1).Valid)
	})

	t.Run("empty input", func(t *testing.T) {
		ds, err := ReadCSV("empty", strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, ds.Columns)
		assert.Zero(t, ds.Len())
	})

	t.Run("malformed quotes", func(t *testing.T) {
		_, err := ReadCSV("bad", strings.NewReader("a,b\n\"unterminated,1\n"))
		assert.Error(t, err)
	})
}

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "economic", "rents.csv"), "entity,coal_rents_pct_of_gdp\nIndia,1.2\n")
	writeFile(t, filepath.Join(dir, "economic", "power.CSV"), "country,coal_share_electricity\nIndia,70\n")
	writeFile(t, filepath.Join(dir, "economic", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, "economic", ".hidden.csv"), "ignored")
	writeFile(t, filepath.Join(dir, "emissions", "tax.csv"), "country,share_carbontax\nIndia,0\n")
	writeFile(t, filepath.Join(dir, "unknown", "x.csv"), "country,value\nIndia,1\n")

	src := NewCSVSource(dir)
	var _ contract.DatasetSource = src
	assert.Equal(t, "csv", src.Name())
	assert.Equal(t, dir, src.Dir())

	ctx := context.Background()
	snap, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.DatasetCount())
	assert.Equal(t, []string{"power", "rents"}, snap.SortedNames(schema.EconomicDim))
	assert.Contains(t, snap[schema.EmissionsDim], "tax")

	status, err := src.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"power", "rents"}, status[schema.EconomicDim])
	assert.NotContains(t, status, schema.NecessityDim)

	assert.NoError(t, src.Close())
}

func TestCSVSourceErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewCSVSource(filepath.Join(t.TempDir(), "missing")).Load(ctx)
	assert.ErrorContains(t, err, "not readable")

	file := filepath.Join(t.TempDir(), "file.csv")
	writeFile(t, file, "a,b\n")
	_, err = NewCSVSource(file).Status(ctx)
	assert.ErrorContains(t, err, "not a directory")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "resource", "reserves.csv"), "country,proven_reserves_mt\nIndia,100\n")
	_, err = NewCSVSource(dir).Load(canceled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVSourceSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "economic", "a_good.csv"), "country,coal_rents_pct_of_gdp\nIndia,1.2\n")
	writeFile(t, filepath.Join(dir, "economic", "b_bad.csv"), "country,coal_rents_pct_of_gdp\nIndia,\"2\n")
	writeFile(t, filepath.Join(dir, "emissions", "tax.csv"), "country,share_carbontax\nIndia,0\n")

	var logs bytes.Buffer
	src := NewCSVSource(dir).WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	snap, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.DatasetCount())
	assert.Equal(t, []string{"a_good"}, snap.SortedNames(schema.EconomicDim))
	assert.Contains(t, snap[schema.EmissionsDim], "tax")

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "b_bad.csv")
}

func TestIsCSVFile(t *testing.T) {
	assert.True(t, IsCSVFile("data/economic/rents.csv"))
	assert.True(t, IsCSVFile("RENTS.CSV"))
	assert.False(t, IsCSVFile(".rents.csv"))
	assert.False(t, IsCSVFile("rents.csv.swp"))
	assert.False(t, IsCSVFile("economic"))
}

func TestParseTableName(t *testing.T) {
	tests := []struct {
		table   string
		dim     schema.Dimension
		dataset string
		ok      bool
	}{
		{"economic__coal_rents", schema.EconomicDim, "coal_rents", true},
		{"ARTIFICIAL_SUPPORT__subsidies", schema.ArtificialSupportDim, "subsidies", true},
		{"economic__", "", "", false},
		{"unknown__data", "", "", false},
		{"viability_catalog", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			dim, dataset, ok := parseTableName(tt.table)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.dim, dim)
			assert.Equal(t, tt.dataset, dataset)
		})
	}
}

func TestNew(t *testing.T) {
	src, err := New(&contract.Config{SourceBackend: schema.CSVSource, DataDir: "data"})
	require.NoError(t, err)
	assert.Equal(t, "csv", src.Name())

	_, err = New(&contract.Config{SourceBackend: "excel"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "source.db")
	src, err = New(&contract.Config{SourceBackend: schema.SQLiteSource, SourceDBConnect: path})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", src.Name())
	assert.NoError(t, src.Close())
}
