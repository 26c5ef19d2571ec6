package dimension

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/huangsam/viability/schema"
)

// Registry holds one engine per dimension.
type Registry struct {
	engines map[schema.Dimension]*Engine
}

// NewRegistry validates the specs and builds an engine for each dimension.
func NewRegistry(specs map[schema.Dimension]Spec, logger *slog.Logger) (*Registry, error) {
	if err := ValidateAll(specs); err != nil {
		return nil, err
	}
	reg := &Registry{engines: make(map[schema.Dimension]*Engine, len(specs))}
	for _, dim := range schema.AllDimensions {
		reg.engines[dim] = NewEngine(specs[dim], logger)
	}
	return reg, nil
}

// Engine returns the engine for a dimension.
func (r *Registry) Engine(dim schema.Dimension) (*Engine, bool) {
	e, ok := r.engines[dim]
	return e, ok
}

// Specs returns the specs in dimension order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.engines))
	for _, dim := range schema.AllDimensions {
		if e, ok := r.engines[dim]; ok {
			out = append(out, e.Spec())
		}
	}
	return out
}

// ParseDimension resolves a user-supplied dimension name.
func ParseDimension(name string) (schema.Dimension, error) {
	dim := schema.Dimension(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	if _, ok := schema.ValidDimensions[dim]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
	return dim, nil
}
