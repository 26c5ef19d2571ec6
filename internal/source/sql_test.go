package source

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/huangsam/viability/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSQLite creates a SQLite file and runs the given statements.
func seedSQLite(t *testing.T, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

func TestSQLSourceNamingConvention(t *testing.T) {
	path := seedSQLite(t,
		`CREATE TABLE economic__coal_rents (entity TEXT, year INTEGER, coal_rents_pct_of_gdp REAL)`,
		`INSERT INTO economic__coal_rents VALUES ('India', 2019, 1.5), ('India', 2020, 2.5), ('Poland', 2020, NULL)`,
		`CREATE TABLE emissions__tax (country TEXT, share_carbontax REAL)`,
		`INSERT INTO emissions__tax VALUES ('Poland', 40)`,
		`CREATE TABLE unrelated (x INTEGER)`,
	)

	src, err := NewSQLSource(schema.SQLiteSource, path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()
	assert.Equal(t, "sqlite", src.Name())

	ctx := context.Background()
	snap, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.DatasetCount())

	rents := snap[schema.EconomicDim]["coal_rents"]
	assert.Equal(t, "coal_rents", rents.Name)
	assert.Equal(t, []string{"entity", "year", "coal_rents_pct_of_gdp"}, rents.Columns)
	require.Equal(t, 3, rents.Len())
	v, ok := rents.At(1, 2).Float()
	assert.True(t, ok)
	assert.InDelta(t, 2.5, v, 1e-9)
	year, ok := rents.At(1, 1).Float()
	assert.True(t, ok)
	assert.InDelta(t, 2020, year, 1e-9)
	assert.False(t, rents.At(2, 2).Valid)

	status, err := src.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[schema.Dimension][]string{
		schema.EconomicDim:  {"coal_rents"},
		schema.EmissionsDim: {"tax"},
	}, status)
}

func TestSQLSourceCatalog(t *testing.T) {
	path := seedSQLite(t,
		`CREATE TABLE reserves_2024 (country TEXT, proven_reserves_mt REAL)`,
		`INSERT INTO reserves_2024 VALUES ('India', 100000)`,
		`CREATE TABLE economic__ignored (country TEXT, value REAL)`,
	)

	var out bytes.Buffer
	require.NoError(t, Migrate(schema.SQLiteSource, path, -1, &out))
	assert.Contains(t, out.String(), "version 1")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO viability_catalog (dimension, dataset_name, table_name) VALUES
		('resource', 'reserves', 'reserves_2024'),
		('resource', 'ghost', 'missing_table'),
		('bogus', 'x', 'reserves_2024')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := NewSQLSource(schema.SQLiteSource, path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	snap, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.DatasetCount(), "the catalog replaces the naming convention")
	assert.Equal(t, 1, snap[schema.ResourceDim]["reserves"].Len())
}

func TestSQLSourceSkipsUnreadableTables(t *testing.T) {
	path := seedSQLite(t,
		`CREATE TABLE economic__coal_rents (country TEXT, coal_rents_pct_of_gdp REAL)`,
		`INSERT INTO economic__coal_rents VALUES ('India', 1.5)`,
	)

	src, err := NewSQLSource(schema.SQLiteSource, path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	var logs bytes.Buffer
	src.WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	ctx := context.Background()
	snap, err := src.load(ctx, []catalogEntry{
		{dimension: schema.EconomicDim, dataset: "coal_rents", table: "economic__coal_rents"},
		{dimension: schema.EconomicDim, dataset: "dropped", table: "economic__dropped"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.DatasetCount())
	assert.Contains(t, snap[schema.EconomicDim], "coal_rents")
	assert.Contains(t, logs.String(), "economic__dropped")

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.load(canceled, []catalogEntry{
		{dimension: schema.EconomicDim, dataset: "coal_rents", table: "economic__coal_rents"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMigrate(t *testing.T) {
	path := seedSQLite(t)

	var out bytes.Buffer
	require.NoError(t, Migrate(schema.SQLiteSource, path, -1, &out))
	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteSource, path, -1, &out))
	assert.Contains(t, out.String(), "No migration needed")

	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteSource, path, 0, &out))
	assert.Contains(t, out.String(), "to version 0")

	assert.Error(t, Migrate(schema.CSVSource, "", -1, &out))
}

func TestNewSQLSourceErrors(t *testing.T) {
	_, err := NewSQLSource(schema.CSVSource, "")
	assert.Error(t, err)

	_, err = NewSQLSource(schema.SQLiteSource, filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.Error(t, err)
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, validateTableName("economic__coal_rents"))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("drop table;"))
	assert.Error(t, validateTableName("1abc"))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLSource))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLSource))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteSource))
}
