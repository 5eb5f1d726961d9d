package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/platform/logger"
	"github.com/phrazzld/certs-api/internal/store"
)

// PostgresCourseStore implements store.CourseStore over the course_overviews table.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCourseStore creates a new PostgresCourseStore.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

var _ store.CourseStore = (*PostgresCourseStore)(nil)

// Upsert implements store.CourseStore.Upsert
func (s *PostgresCourseStore) Upsert(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		log.Warn("course validation failed during upsert", slog.String("error", err.Error()))
		return err
	}

	cutoffs := course.GradeCutoffs
	if cutoffs == nil {
		cutoffs = map[string]float64{}
	}
	cutoffsJSON, err := json.Marshal(cutoffs)
	if err != nil {
		return fmt.Errorf("failed to encode grade cutoffs: %w", err)
	}

	display := course.CertificatesDisplay
	if display == "" {
		display = domain.DisplayEnd
	}

	query := `
		INSERT INTO course_overviews (
			course_key, self_paced, certificates_display_behavior, certificates_show_before_end,
			certificate_available_date, start_date, end_date, grade_cutoffs, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (course_key) DO UPDATE SET
			self_paced = EXCLUDED.self_paced,
			certificates_display_behavior = EXCLUDED.certificates_display_behavior,
			certificates_show_before_end = EXCLUDED.certificates_show_before_end,
			certificate_available_date = EXCLUDED.certificate_available_date,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			grade_cutoffs = EXCLUDED.grade_cutoffs,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		course.Key.String(),
		course.SelfPaced,
		string(display),
		course.CertificatesShowBeforeEnd,
		course.CertificateAvailableDate,
		course.Start,
		course.End,
		cutoffsJSON,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert course",
			slog.String("error", err.Error()),
			slog.String("course_key", course.Key.String()))
		return MapError(err)
	}

	course.CertificatesDisplay = display
	return nil
}

// GetByKey implements store.CourseStore.GetByKey
func (s *PostgresCourseStore) GetByKey(ctx context.Context, key domain.CourseKey) (*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT course_key, self_paced, certificates_display_behavior, certificates_show_before_end,
			certificate_available_date, start_date, end_date, grade_cutoffs, created_at, updated_at
		FROM course_overviews
		WHERE course_key = $1
	`

	var (
		course      domain.Course
		rawKey      string
		display     string
		available   sql.NullTime
		start       sql.NullTime
		end         sql.NullTime
		cutoffsJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query, key.String()).Scan(
		&rawKey,
		&course.SelfPaced,
		&display,
		&course.CertificatesShowBeforeEnd,
		&available,
		&start,
		&end,
		&cutoffsJSON,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("course not found", slog.String("course_key", key.String()))
			return nil, store.ErrCourseNotFound
		}
		log.Error("failed to get course",
			slog.String("error", err.Error()),
			slog.String("course_key", key.String()))
		return nil, MapError(err)
	}

	course.Key, err = domain.ParseCourseKey(rawKey)
	if err != nil {
		return nil, fmt.Errorf("stored course key: %w", err)
	}
	course.CertificatesDisplay = domain.DisplayBehavior(display)
	course.CertificateAvailableDate = nullTimePtr(available)
	course.Start = nullTimePtr(start)
	course.End = nullTimePtr(end)
	if err := json.Unmarshal(cutoffsJSON, &course.GradeCutoffs); err != nil {
		return nil, fmt.Errorf("failed to decode grade cutoffs: %w", err)
	}

	return &course, nil
}

// WithTx implements store.CourseStore.WithTx
func (s *PostgresCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	return &PostgresCourseStore{db: tx, logger: s.logger}
}
