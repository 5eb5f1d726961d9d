package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
)

// VerificationStore defines the interface for photo verification persistence.
type VerificationStore interface {
	// Create saves a verification attempt.
	Create(ctx context.Context, verification *domain.Verification) error

	// HasVerification reports whether the learner has any verification in the given status.
	HasVerification(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) (bool, error)

	// WithTx returns a new VerificationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) VerificationStore
}
