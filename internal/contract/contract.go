// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/viability/schema"
)

// DatasetSource loads the datasets of every dimension into a snapshot.
// This allows the scoring pass to be tested without files or a database.
type DatasetSource interface {
	// Name identifies the backend, e.g. "csv" or "sqlite".
	Name() string

	// Load reads every dataset and groups it by dimension.
	Load(ctx context.Context) (schema.Snapshot, error)

	// Status lists the dataset names found per dimension without reading rows.
	Status(ctx context.Context) (map[schema.Dimension][]string, error)

	// Close releases the underlying resources.
	Close() error
}

// PassObserver receives the outcome of every scoring pass.
// The Prometheus recorder implements it; a nil observer is ignored.
type PassObserver interface {
	ObservePass(result schema.PassResult, loaded int, elapsed time.Duration)
}
