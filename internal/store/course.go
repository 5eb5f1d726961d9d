package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/certs-api/internal/domain"
)

// CourseStore defines the interface for course overview persistence.
type CourseStore interface {
	// Upsert inserts the course or replaces its configuration.
	Upsert(ctx context.Context, course *domain.Course) error

	// GetByKey retrieves a course by its key.
	// Returns ErrCourseNotFound if the course does not exist.
	GetByKey(ctx context.Context, key domain.CourseKey) (*domain.Course, error)

	// WithTx returns a new CourseStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CourseStore
}
