package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/certs-api/internal/flags"
	"github.com/phrazzld/certs-api/internal/store"
)

// MockFlagStore implements store.FlagStore for testing
type MockFlagStore struct {
	SnapshotFn  func(ctx context.Context) (flags.Set, error)
	SetActiveFn func(ctx context.Context, flag flags.Flag, active bool) error

	mu  sync.Mutex
	set flags.Set
}

var _ store.FlagStore = (*MockFlagStore)(nil)

// NewMockFlagStore creates an empty mock flag store.
func NewMockFlagStore() *MockFlagStore {
	return &MockFlagStore{set: flags.NewSet(nil)}
}

// Snapshot implements the FlagStore interface
func (m *MockFlagStore) Snapshot(ctx context.Context) (flags.Set, error) {
	if m.SnapshotFn != nil {
		return m.SnapshotFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set, nil
}

// SetActive implements the FlagStore interface
func (m *MockFlagStore) SetActive(ctx context.Context, flag flags.Flag, active bool) error {
	if m.SetActiveFn != nil {
		return m.SetActiveFn(ctx, flag, active)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = m.set.With(flag, active)
	return nil
}
