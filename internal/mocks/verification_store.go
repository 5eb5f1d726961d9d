package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/store"
)

// MockVerificationStore implements store.VerificationStore for testing
type MockVerificationStore struct {
	CreateFn          func(ctx context.Context, verification *domain.Verification) error
	HasVerificationFn func(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) (bool, error)

	mu            sync.Mutex
	verifications []domain.Verification
	checks        int
}

var _ store.VerificationStore = (*MockVerificationStore)(nil)

// NewMockVerificationStore creates an empty mock verification store.
func NewMockVerificationStore() *MockVerificationStore {
	return &MockVerificationStore{}
}

// Create implements the VerificationStore interface
func (m *MockVerificationStore) Create(ctx context.Context, verification *domain.Verification) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, verification)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, *verification)
	return nil
}

// HasVerification implements the VerificationStore interface
func (m *MockVerificationStore) HasVerification(
	ctx context.Context,
	userID uuid.UUID,
	status domain.VerificationStatus,
) (bool, error) {
	m.mu.Lock()
	m.checks++
	m.mu.Unlock()

	if m.HasVerificationFn != nil {
		return m.HasVerificationFn(ctx, userID, status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.verifications {
		if v.UserID == userID && v.Status == status {
			return true, nil
		}
	}
	return false, nil
}

// Checks returns how many times HasVerification was called.
func (m *MockVerificationStore) Checks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks
}

// WithTx implements the VerificationStore interface
func (m *MockVerificationStore) WithTx(tx *sql.Tx) store.VerificationStore {
	return m
}
