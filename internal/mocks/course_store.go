package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/store"
)

// MockCourseStore implements store.CourseStore for testing
type MockCourseStore struct {
	UpsertFn   func(ctx context.Context, course *domain.Course) error
	GetByKeyFn func(ctx context.Context, key domain.CourseKey) (*domain.Course, error)

	mu      sync.Mutex
	courses map[string]*domain.Course
}

var _ store.CourseStore = (*MockCourseStore)(nil)

// NewMockCourseStore creates a mock store holding the given courses.
func NewMockCourseStore(courses ...*domain.Course) *MockCourseStore {
	m := &MockCourseStore{courses: make(map[string]*domain.Course)}
	for _, c := range courses {
		m.courses[c.Key.String()] = c
	}
	return m
}

// Upsert implements the CourseStore interface
func (m *MockCourseStore) Upsert(ctx context.Context, course *domain.Course) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, course)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[course.Key.String()] = course
	return nil
}

// GetByKey implements the CourseStore interface
func (m *MockCourseStore) GetByKey(ctx context.Context, key domain.CourseKey) (*domain.Course, error) {
	if m.GetByKeyFn != nil {
		return m.GetByKeyFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[key.String()]
	if !ok {
		return nil, store.ErrCourseNotFound
	}
	return course, nil
}

// WithTx implements the CourseStore interface
func (m *MockCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	return m
}
