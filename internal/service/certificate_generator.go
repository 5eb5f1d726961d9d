package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/store"
)

// CertificateGenerator is the generation routine behind certificates.Generator.
// It records a generating certificate for the learner; rendering happens
// downstream.
type CertificateGenerator struct {
	db           *sql.DB
	enrollments  store.EnrollmentStore
	certificates store.CertificateStore
	logger       *slog.Logger
}

var _ certificates.GenerationRoutine = (*CertificateGenerator)(nil)

// NewCertificateGenerator creates the routine. With a non-nil db the
// enrollment read and the certificate write share one transaction.
func NewCertificateGenerator(
	db *sql.DB,
	enrollments store.EnrollmentStore,
	certs store.CertificateStore,
	logger *slog.Logger,
) *CertificateGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CertificateGenerator{
		db:           db,
		enrollments:  enrollments,
		certificates: certs,
		logger:       logger.With("component", "certificate_generation_routine"),
	}
}

// GenerateUserCertificate upserts the learner's certificate with status
// generating. The mode follows the enrollment, audit when there is none.
func (g *CertificateGenerator) GenerateUserCertificate(
	ctx context.Context,
	user *domain.User,
	courseKey domain.CourseKey,
	extra map[string]any,
) error {
	if extra == nil {
		extra = map[string]any{}
	}
	args, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("failed to encode generation arguments: %w", err)
	}

	generate := func(ctx context.Context, enrollments store.EnrollmentStore, certs store.CertificateStore) error {
		mode, _, err := enrollments.EnrollmentModeForUser(ctx, user.ID, courseKey)
		if err != nil {
			return fmt.Errorf("failed to read enrollment: %w", err)
		}
		if mode == "" {
			mode = domain.ModeAudit
		}

		cert := &domain.Certificate{
			UserID:         user.ID,
			CourseKey:      courseKey,
			Mode:           mode,
			Status:         domain.CertificateGenerating,
			GenerationArgs: args,
		}
		if err := certs.Upsert(ctx, cert); err != nil {
			return fmt.Errorf("failed to record certificate: %w", err)
		}

		g.logger.Info("certificate generation recorded",
			"certificate_id", cert.ID,
			"user_id", user.ID,
			"course_key", courseKey.String(),
			"mode", mode)
		return nil
	}

	if g.db == nil {
		return generate(ctx, g.enrollments, g.certificates)
	}
	return store.RunInTransaction(ctx, g.db, func(ctx context.Context, tx *sql.Tx) error {
		return generate(ctx, g.enrollments.WithTx(tx), g.certificates.WithTx(tx))
	})
}
