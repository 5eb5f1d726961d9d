package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/mocks"
	"github.com/phrazzld/certs-api/internal/service"
)

func TestCertificateGenerator_GenerateUserCertificate(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Username: "learner", Email: "learner@example.com"}

	t.Run("uses enrollment mode", func(t *testing.T) {
		enrollments := mocks.NewMockEnrollmentStore()
		enrollments.Enroll(user.ID, courseKey, domain.ModeVerified, true)
		certs := mocks.NewMockCertificateStore()
		gen := service.NewCertificateGenerator(nil, enrollments, certs, nil)

		err := gen.GenerateUserCertificate(ctx, user, courseKey, map[string]any{"forced": true})
		require.NoError(t, err)

		cert, err := certs.GetForUser(ctx, user.ID, courseKey)
		require.NoError(t, err)
		assert.Equal(t, domain.ModeVerified, cert.Mode)
		assert.Equal(t, domain.CertificateGenerating, cert.Status)

		var args map[string]any
		require.NoError(t, json.Unmarshal(cert.GenerationArgs, &args))
		assert.Equal(t, true, args["forced"])
	})

	t.Run("defaults to audit without enrollment", func(t *testing.T) {
		certs := mocks.NewMockCertificateStore()
		gen := service.NewCertificateGenerator(nil, mocks.NewMockEnrollmentStore(), certs, nil)

		require.NoError(t, gen.GenerateUserCertificate(ctx, user, courseKey, nil))

		cert, err := certs.GetForUser(ctx, user.ID, courseKey)
		require.NoError(t, err)
		assert.Equal(t, domain.ModeAudit, cert.Mode)
		assert.JSONEq(t, `{}`, string(cert.GenerationArgs))
	})

	t.Run("regeneration keeps certificate id", func(t *testing.T) {
		existing := &domain.Certificate{
			ID:        uuid.New(),
			UserID:    user.ID,
			CourseKey: courseKey,
			Mode:      domain.ModeHonor,
			Status:    domain.CertificateError,
		}
		certs := mocks.NewMockCertificateStore(existing)
		gen := service.NewCertificateGenerator(nil, mocks.NewMockEnrollmentStore(), certs, nil)

		require.NoError(t, gen.GenerateUserCertificate(ctx, user, courseKey, nil))

		cert, err := certs.GetForUser(ctx, user.ID, courseKey)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, cert.ID)
		assert.Equal(t, domain.CertificateGenerating, cert.Status)
	})

	t.Run("enrollment failure", func(t *testing.T) {
		storeErr := errors.New("enrollment lookup failed")
		enrollments := mocks.NewMockEnrollmentStore()
		enrollments.EnrollmentModeForUserFn = func(
			ctx context.Context,
			userID uuid.UUID,
			key domain.CourseKey,
		) (domain.CourseMode, bool, error) {
			return "", false, storeErr
		}
		gen := service.NewCertificateGenerator(nil, enrollments, mocks.NewMockCertificateStore(), nil)

		err := gen.GenerateUserCertificate(ctx, user, courseKey, nil)
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("certificate write failure", func(t *testing.T) {
		storeErr := errors.New("write failed")
		certs := mocks.NewMockCertificateStore()
		certs.UpsertFn = func(ctx context.Context, cert *domain.Certificate) error {
			return storeErr
		}
		gen := service.NewCertificateGenerator(nil, mocks.NewMockEnrollmentStore(), certs, nil)

		err := gen.GenerateUserCertificate(ctx, user, courseKey, nil)
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("unencodable extras", func(t *testing.T) {
		gen := service.NewCertificateGenerator(nil, mocks.NewMockEnrollmentStore(), mocks.NewMockCertificateStore(), nil)

		err := gen.GenerateUserCertificate(ctx, user, courseKey, map[string]any{"bad": make(chan int)})
		assert.Error(t, err)
	})
}
