package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/store"
)

// MockEnrollmentStore implements store.EnrollmentStore for testing
type MockEnrollmentStore struct {
	UpsertFn                func(ctx context.Context, enrollment *domain.Enrollment) error
	EnrollmentModeForUserFn func(ctx context.Context, userID uuid.UUID, courseKey domain.CourseKey) (domain.CourseMode, bool, error)

	mu          sync.Mutex
	enrollments map[string]domain.Enrollment
}

var _ store.EnrollmentStore = (*MockEnrollmentStore)(nil)

// NewMockEnrollmentStore creates an empty mock enrollment store.
func NewMockEnrollmentStore() *MockEnrollmentStore {
	return &MockEnrollmentStore{enrollments: make(map[string]domain.Enrollment)}
}

func enrollmentKey(userID uuid.UUID, courseKey domain.CourseKey) string {
	return userID.String() + "|" + courseKey.String()
}

// Enroll records an enrollment for the pair.
func (m *MockEnrollmentStore) Enroll(userID uuid.UUID, courseKey domain.CourseKey, mode domain.CourseMode, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrollments[enrollmentKey(userID, courseKey)] = domain.Enrollment{
		ID:        uuid.New(),
		UserID:    userID,
		CourseKey: courseKey,
		Mode:      mode,
		IsActive:  active,
	}
}

// Upsert implements the EnrollmentStore interface
func (m *MockEnrollmentStore) Upsert(ctx context.Context, enrollment *domain.Enrollment) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, enrollment)
	}
	m.Enroll(enrollment.UserID, enrollment.CourseKey, enrollment.Mode, enrollment.IsActive)
	return nil
}

// EnrollmentModeForUser implements the EnrollmentStore interface
func (m *MockEnrollmentStore) EnrollmentModeForUser(
	ctx context.Context,
	userID uuid.UUID,
	courseKey domain.CourseKey,
) (domain.CourseMode, bool, error) {
	if m.EnrollmentModeForUserFn != nil {
		return m.EnrollmentModeForUserFn(ctx, userID, courseKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	enrollment, ok := m.enrollments[enrollmentKey(userID, courseKey)]
	if !ok {
		return "", false, nil
	}
	return enrollment.Mode, enrollment.IsActive, nil
}

// WithTx implements the EnrollmentStore interface
func (m *MockEnrollmentStore) WithTx(tx *sql.Tx) store.EnrollmentStore {
	return m
}
