package contract

import (
	"context"

	"github.com/huangsam/viability/schema"
	"github.com/stretchr/testify/mock"
)

// MockDatasetSource is a testify mock of DatasetSource.
type MockDatasetSource struct {
	mock.Mock
}

var _ DatasetSource = &MockDatasetSource{} // Compile-time check

// Name implements the DatasetSource interface.
func (m *MockDatasetSource) Name() string {
	args := m.Called()
	return args.String(0)
}

// Load implements the DatasetSource interface.
func (m *MockDatasetSource) Load(ctx context.Context) (schema.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(schema.Snapshot)
	return snap, args.Error(1)
}

// Status implements the DatasetSource interface.
func (m *MockDatasetSource) Status(ctx context.Context) (map[schema.Dimension][]string, error) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(map[schema.Dimension][]string)
	return status, args.Error(1)
}

// Close implements the DatasetSource interface.
func (m *MockDatasetSource) Close() error {
	args := m.Called()
	return args.Error(0)
}
