package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/platform/logger"
	"github.com/phrazzld/certs-api/internal/store"
)

// PostgresVerificationStore implements store.VerificationStore over photo_verifications.
type PostgresVerificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVerificationStore creates a new PostgresVerificationStore.
func NewPostgresVerificationStore(db store.DBTX, logger *slog.Logger) *PostgresVerificationStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVerificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "verification_store")),
	}
}

var _ store.VerificationStore = (*PostgresVerificationStore)(nil)

// Create implements store.VerificationStore.Create
func (s *PostgresVerificationStore) Create(ctx context.Context, v *domain.Verification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !v.Status.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidVerificationStatus, v.Status)
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	query := `
		INSERT INTO photo_verifications (id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query, v.ID, v.UserID, string(v.Status), v.CreatedAt, v.UpdatedAt); err != nil {
		log.Error("failed to create verification",
			slog.String("error", err.Error()),
			slog.String("user_id", v.UserID.String()))
		return MapError(err)
	}
	return nil
}

// HasVerification implements store.VerificationStore.HasVerification
func (s *PostgresVerificationStore) HasVerification(
	ctx context.Context,
	userID uuid.UUID,
	status domain.VerificationStatus,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM photo_verifications WHERE user_id = $1 AND status = $2
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID, string(status)).Scan(&exists); err != nil {
		log.Error("failed to check verification",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("status", string(status)))
		return false, MapError(err)
	}
	return exists, nil
}

// WithTx implements store.VerificationStore.WithTx
func (s *PostgresVerificationStore) WithTx(tx *sql.Tx) store.VerificationStore {
	return &PostgresVerificationStore{db: tx, logger: s.logger}
}
