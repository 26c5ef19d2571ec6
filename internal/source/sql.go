package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// tableNamePattern restricts table identifiers read from the database.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// catalogEntry maps one dataset to the table holding it.
type catalogEntry struct {
	dimension schema.Dimension
	dataset   string
	table     string
}

// SQLSource reads datasets from tables of a SQLite, MySQL or PostgreSQL
// database. It never writes.
type SQLSource struct {
	db      *sql.DB
	backend schema.SourceBackend
	logger  *slog.Logger
}

var _ contract.DatasetSource = &SQLSource{} // Compile-time check

// NewSQLSource opens and pings the database.
func NewSQLSource(backend schema.SourceBackend, connStr string) (*SQLSource, error) {
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return &SQLSource{db: db, backend: backend, logger: slog.Default()}, nil
}

// WithLogger replaces the logger used to report skipped tables.
func (s *SQLSource) WithLogger(logger *slog.Logger) *SQLSource {
	s.logger = logger
	return s
}

// openDB opens a connection pool for the backend without verifying it.
func openDB(backend schema.SourceBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteSource:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetSourceDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source at %q: %w", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLSource:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL source: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLSource:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL source: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported SQL source: %s. Must be sqlite, mysql, or postgresql", backend)
	}
}

// Name implements the DatasetSource interface.
func (s *SQLSource) Name() string {
	return string(s.backend)
}

// Load implements the DatasetSource interface. Tables that cannot be read
// are logged and skipped; catalog and connection failures are returned.
func (s *SQLSource) Load(ctx context.Context) (schema.Snapshot, error) {
	entries, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, entries)
}

func (s *SQLSource) load(ctx context.Context, entries []catalogEntry) (schema.Snapshot, error) {
	snap := make(schema.Snapshot)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, err := s.readTable(ctx, e.table, e.dataset)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Warn("Skipping unreadable dataset", "dimension", e.dimension, "table", e.table, "error", err)
			continue
		}
		if snap[e.dimension] == nil {
			snap[e.dimension] = make(map[string]schema.Dataset)
		}
		snap[e.dimension][e.dataset] = ds
	}
	return snap, nil
}

// Status implements the DatasetSource interface.
func (s *SQLSource) Status(ctx context.Context) (map[schema.Dimension][]string, error) {
	entries, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[schema.Dimension][]string)
	for _, e := range entries {
		out[e.dimension] = append(out[e.dimension], e.dataset)
	}
	return out, nil
}

// Close implements the DatasetSource interface.
func (s *SQLSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// catalog resolves the dataset tables, from the catalog table when it exists
// and from the naming convention otherwise. Entries are sorted.
func (s *SQLSource) catalog(ctx context.Context) ([]catalogEntry, error) {
	tables, err := s.listTables(ctx)
	if err != nil {
		return nil, err
	}

	var entries []catalogEntry
	if _, ok := tables[CatalogTable]; ok {
		entries, err = s.readCatalog(ctx, tables)
		if err != nil {
			return nil, err
		}
	} else {
		for table := range tables {
			if dim, dataset, ok := parseTableName(table); ok {
				entries = append(entries, catalogEntry{dimension: dim, dataset: dataset, table: table})
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].dimension != entries[j].dimension {
			return entries[i].dimension < entries[j].dimension
		}
		return entries[i].dataset < entries[j].dataset
	})
	return entries, nil
}

// readCatalog reads the catalog rows, skipping unknown dimensions and
// tables that do not exist.
func (s *SQLSource) readCatalog(ctx context.Context, tables map[string]struct{}) ([]catalogEntry, error) {
	query := fmt.Sprintf("SELECT dimension, dataset_name, table_name FROM %s", quoteTableName(CatalogTable, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", CatalogTable, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []catalogEntry
	for rows.Next() {
		var dim, dataset, table string
		if err := rows.Scan(&dim, &dataset, &table); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", CatalogTable, err)
		}
		d := schema.Dimension(dim)
		if _, ok := schema.ValidDimensions[d]; !ok {
			continue
		}
		if _, ok := tables[table]; !ok {
			continue
		}
		entries = append(entries, catalogEntry{dimension: d, dataset: dataset, table: table})
	}
	return entries, rows.Err()
}

// listTables returns the valid table identifiers of the current database.
func (s *SQLSource) listTables(ctx context.Context) (map[string]struct{}, error) {
	var query string
	switch s.backend {
	case schema.MySQLSource:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()"
	case schema.PostgreSQLSource:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()"
	default: // SQLite
		query = "SELECT name FROM sqlite_master WHERE type = 'table'"
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		if tableNamePattern.MatchString(name) {
			tables[name] = struct{}{}
		}
	}
	return tables, rows.Err()
}

// readTable reads every row of a table as text cells.
func (s *SQLSource) readTable(ctx context.Context, table, dataset string) (schema.Dataset, error) {
	if err := validateTableName(table); err != nil {
		return schema.Dataset{}, err
	}
	query := fmt.Sprintf("SELECT * FROM %s", quoteTableName(table, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return schema.Dataset{}, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return schema.Dataset{}, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	var records [][]string
	values := make([]sql.NullString, len(header))
	dest := make([]any, len(header))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return schema.Dataset{}, fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		rec := make([]string, len(header))
		for i, v := range values {
			if v.Valid {
				rec[i] = v.String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return schema.Dataset{}, err
	}
	return buildDataset(dataset, header, records), nil
}

// validateTableName checks if the table name is safe for use in SQL queries.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.SourceBackend) string {
	switch backend {
	case schema.MySQLSource:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}
