package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
)

// CertificateStore defines the interface for generated certificate persistence.
type CertificateStore interface {
	// GetForUser retrieves the learner's certificate for the course.
	// Returns ErrCertificateNotFound if none exists.
	GetForUser(ctx context.Context, userID uuid.UUID, courseKey domain.CourseKey) (*domain.Certificate, error)

	// Upsert inserts the certificate or updates the existing record for the
	// same learner and course. ID and CreatedAt of an existing record are kept
	// and written back into cert.
	Upsert(ctx context.Context, cert *domain.Certificate) error

	// WithTx returns a new CertificateStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CertificateStore
}
