package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
)

// EnrollmentStore defines the interface for enrollment persistence.
type EnrollmentStore interface {
	// Upsert inserts the enrollment or updates the mode and active flag of
	// the existing one for the same learner and course.
	Upsert(ctx context.Context, enrollment *domain.Enrollment) error

	// EnrollmentModeForUser returns the mode and active flag of the learner's
	// enrollment. A learner without an enrollment gets ("", false, nil).
	EnrollmentModeForUser(
		ctx context.Context,
		userID uuid.UUID,
		courseKey domain.CourseKey,
	) (domain.CourseMode, bool, error)

	// WithTx returns a new EnrollmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) EnrollmentStore
}
