package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/store"
)

// MockCertificateStore implements store.CertificateStore for testing
type MockCertificateStore struct {
	GetForUserFn func(ctx context.Context, userID uuid.UUID, courseKey domain.CourseKey) (*domain.Certificate, error)
	UpsertFn     func(ctx context.Context, cert *domain.Certificate) error

	mu           sync.Mutex
	certificates map[string]*domain.Certificate
}

var _ store.CertificateStore = (*MockCertificateStore)(nil)

// NewMockCertificateStore creates a mock store holding the given certificates.
func NewMockCertificateStore(certs ...*domain.Certificate) *MockCertificateStore {
	m := &MockCertificateStore{certificates: make(map[string]*domain.Certificate)}
	for _, c := range certs {
		m.certificates[enrollmentKey(c.UserID, c.CourseKey)] = c
	}
	return m
}

// GetForUser implements the CertificateStore interface
func (m *MockCertificateStore) GetForUser(
	ctx context.Context,
	userID uuid.UUID,
	courseKey domain.CourseKey,
) (*domain.Certificate, error) {
	if m.GetForUserFn != nil {
		return m.GetForUserFn(ctx, userID, courseKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cert, ok := m.certificates[enrollmentKey(userID, courseKey)]
	if !ok {
		return nil, store.ErrCertificateNotFound
	}
	copied := *cert
	return &copied, nil
}

// Upsert implements the CertificateStore interface
func (m *MockCertificateStore) Upsert(ctx context.Context, cert *domain.Certificate) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, cert)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	key := enrollmentKey(cert.UserID, cert.CourseKey)
	if existing, ok := m.certificates[key]; ok {
		cert.ID = existing.ID
		cert.CreatedAt = existing.CreatedAt
	} else {
		if cert.ID == uuid.Nil {
			cert.ID = uuid.New()
		}
		cert.CreatedAt = now
	}
	cert.ModifiedAt = now

	copied := *cert
	m.certificates[key] = &copied
	return nil
}

// WithTx implements the CertificateStore interface
func (m *MockCertificateStore) WithTx(tx *sql.Tx) store.CertificateStore {
	return m
}
