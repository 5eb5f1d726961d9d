package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/platform/logger"
	"github.com/phrazzld/certs-api/internal/store"
)

// PostgresCertificateStore implements store.CertificateStore over generated_certificates.
type PostgresCertificateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCertificateStore creates a new PostgresCertificateStore.
func NewPostgresCertificateStore(db store.DBTX, logger *slog.Logger) *PostgresCertificateStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCertificateStore{
		db:     db,
		logger: logger.With(slog.String("component", "certificate_store")),
	}
}

var _ store.CertificateStore = (*PostgresCertificateStore)(nil)

// GetForUser implements store.CertificateStore.GetForUser
func (s *PostgresCertificateStore) GetForUser(
	ctx context.Context,
	userID uuid.UUID,
	courseKey domain.CourseKey,
) (*domain.Certificate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, course_key, mode, status, generation_args, created_at, modified_at
		FROM generated_certificates
		WHERE user_id = $1 AND course_key = $2
	`

	var (
		cert   domain.Certificate
		rawKey string
		mode   string
		status string
		args   []byte
	)
	err := s.db.QueryRowContext(ctx, query, userID, courseKey.String()).Scan(
		&cert.ID,
		&cert.UserID,
		&rawKey,
		&mode,
		&status,
		&args,
		&cert.CreatedAt,
		&cert.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCertificateNotFound
		}
		log.Error("failed to get certificate",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("course_key", courseKey.String()))
		return nil, MapError(err)
	}

	cert.CourseKey, err = domain.ParseCourseKey(rawKey)
	if err != nil {
		return nil, fmt.Errorf("stored course key: %w", err)
	}
	cert.Mode = domain.CourseMode(mode)
	cert.Status = domain.CertificateStatus(status)
	cert.GenerationArgs = args

	return &cert, nil
}

// Upsert implements store.CertificateStore.Upsert
func (s *PostgresCertificateStore) Upsert(ctx context.Context, cert *domain.Certificate) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !cert.Status.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCertificateStatus, cert.Status)
	}
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}
	args := []byte(cert.GenerationArgs)
	if len(args) == 0 {
		args = []byte("{}")
	}

	query := `
		INSERT INTO generated_certificates (
			id, user_id, course_key, mode, status, generation_args, created_at, modified_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id, course_key) DO UPDATE SET
			mode = EXCLUDED.mode,
			status = EXCLUDED.status,
			generation_args = EXCLUDED.generation_args,
			modified_at = NOW()
		RETURNING id, created_at, modified_at
	`
	err := s.db.QueryRowContext(ctx, query,
		cert.ID,
		cert.UserID,
		cert.CourseKey.String(),
		string(cert.Mode),
		string(cert.Status),
		args,
	).Scan(&cert.ID, &cert.CreatedAt, &cert.ModifiedAt)
	if err != nil {
		log.Error("failed to upsert certificate",
			slog.String("error", err.Error()),
			slog.String("user_id", cert.UserID.String()),
			slog.String("course_key", cert.CourseKey.String()))
		return MapError(err)
	}

	log.Debug("certificate upserted",
		slog.String("certificate_id", cert.ID.String()),
		slog.String("status", string(cert.Status)))
	return nil
}

// WithTx implements store.CertificateStore.WithTx
func (s *PostgresCertificateStore) WithTx(tx *sql.Tx) store.CertificateStore {
	return &PostgresCertificateStore{db: tx, logger: s.logger}
}
