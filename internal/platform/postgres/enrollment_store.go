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

// PostgresEnrollmentStore implements store.EnrollmentStore over course_enrollments.
type PostgresEnrollmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEnrollmentStore creates a new PostgresEnrollmentStore.
func NewPostgresEnrollmentStore(db store.DBTX, logger *slog.Logger) *PostgresEnrollmentStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresEnrollmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "enrollment_store")),
	}
}

var _ store.EnrollmentStore = (*PostgresEnrollmentStore)(nil)

// Upsert implements store.EnrollmentStore.Upsert
func (s *PostgresEnrollmentStore) Upsert(ctx context.Context, enrollment *domain.Enrollment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !enrollment.Mode.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCourseMode, enrollment.Mode)
	}
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}

	query := `
		INSERT INTO course_enrollments (id, user_id, course_key, mode, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, course_key) DO UPDATE SET
			mode = EXCLUDED.mode,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		enrollment.ID,
		enrollment.UserID,
		enrollment.CourseKey.String(),
		string(enrollment.Mode),
		enrollment.IsActive,
	).Scan(&enrollment.ID, &enrollment.CreatedAt, &enrollment.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert enrollment",
			slog.String("error", err.Error()),
			slog.String("user_id", enrollment.UserID.String()),
			slog.String("course_key", enrollment.CourseKey.String()))
		return MapError(err)
	}
	return nil
}

// EnrollmentModeForUser implements store.EnrollmentStore.EnrollmentModeForUser
func (s *PostgresEnrollmentStore) EnrollmentModeForUser(
	ctx context.Context,
	userID uuid.UUID,
	courseKey domain.CourseKey,
) (domain.CourseMode, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT mode, is_active
		FROM course_enrollments
		WHERE user_id = $1 AND course_key = $2
	`

	var (
		mode   string
		active bool
	)
	err := s.db.QueryRowContext(ctx, query, userID, courseKey.String()).Scan(&mode, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		log.Error("failed to get enrollment mode",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("course_key", courseKey.String()))
		return "", false, MapError(err)
	}

	return domain.CourseMode(mode), active, nil
}

// WithTx implements store.EnrollmentStore.WithTx
func (s *PostgresEnrollmentStore) WithTx(tx *sql.Tx) store.EnrollmentStore {
	return &PostgresEnrollmentStore{db: tx, logger: s.logger}
}
