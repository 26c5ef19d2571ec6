package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/viability/internal/contract"
	"github.com/huangsam/viability/schema"
)

// utf8BOM is stripped from the first header cell of spreadsheet exports.
const utf8BOM = "\ufeff"

// CSVSource reads <dir>/<dimension>/*.csv, one dataset per file.
type CSVSource struct {
	dir    string
	logger *slog.Logger
}

var _ contract.DatasetSource = &CSVSource{} // Compile-time check

// NewCSVSource creates a source rooted at dir.
func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir, logger: slog.Default()}
}

// WithLogger replaces the logger used to report skipped files.
func (s *CSVSource) WithLogger(logger *slog.Logger) *CSVSource {
	s.logger = logger
	return s
}

// Name implements the DatasetSource interface.
func (s *CSVSource) Name() string {
	return string(schema.CSVSource)
}

// Dir returns the root directory of the source.
func (s *CSVSource) Dir() string {
	return s.dir
}

// Load implements the DatasetSource interface. Files that cannot be read
// are logged and skipped; only directory failures are returned.
func (s *CSVSource) Load(ctx context.Context) (schema.Snapshot, error) {
	if err := s.checkDir(); err != nil {
		return nil, err
	}
	snap := make(schema.Snapshot)
	for _, dim := range schema.AllDimensions {
		files, err := s.files(dim)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ds, err := ReadCSVFile(path)
			if err != nil {
				s.logger.Warn("Skipping unreadable dataset", "dimension", dim, "path", path, "error", err)
				continue
			}
			if snap[dim] == nil {
				snap[dim] = make(map[string]schema.Dataset)
			}
			snap[dim][ds.Name] = ds
		}
	}
	return snap, nil
}

// Status implements the DatasetSource interface.
func (s *CSVSource) Status(_ context.Context) (map[schema.Dimension][]string, error) {
	if err := s.checkDir(); err != nil {
		return nil, err
	}
	out := make(map[schema.Dimension][]string)
	for _, dim := range schema.AllDimensions {
		files, err := s.files(dim)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			out[dim] = append(out[dim], datasetName(path))
		}
	}
	return out, nil
}

// Close implements the DatasetSource interface.
func (s *CSVSource) Close() error {
	return nil
}

func (s *CSVSource) checkDir() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("data directory %q is not readable: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %q is not a directory", s.dir)
	}
	return nil
}

// files lists the CSV files of one dimension in name order.
// A missing dimension directory yields no files.
func (s *CSVSource) files(dim schema.Dimension) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, string(dim)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s datasets: %w", dim, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsCSVFile(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(s.dir, string(dim), e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// IsCSVFile reports whether a file name looks like a dataset file.
func IsCSVFile(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".csv") && !strings.HasPrefix(base, ".")
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadCSVFile reads one CSV file into a dataset named after the file.
func ReadCSVFile(path string) (schema.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Dataset{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ds, err := ReadCSV(datasetName(path), f)
	if err != nil {
		return schema.Dataset{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses CSV text whose first record is the header. Ragged rows are
// accepted; an empty input yields an empty dataset.
func ReadCSV(name string, r io.Reader) (schema.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return schema.NewDataset(name, nil, nil), nil
	}
	if err != nil {
		return schema.Dataset{}, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return schema.Dataset{}, err
	}
	return buildDataset(name, header, records), nil
}
