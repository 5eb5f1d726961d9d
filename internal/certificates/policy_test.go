package certificates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/flags"
	"github.com/phrazzld/certs-api/internal/mocks"
)

var (
	courseStart = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	courseEnd   = time.Date(2017, 1, 31, 0, 0, 0, 0, time.UTC)
	demoKey     = domain.MustParseCourseKey("course-v1:edX+DemoX+Demo_Course")
)

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func flagSet(autoGeneration bool) flags.Set {
	return flags.NewSet(nil).With(certificates.AutoCertificateGeneration, autoGeneration)
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newCourse() *domain.Course {
	start, end := courseStart, courseEnd
	return &domain.Course{
		Key:                 demoKey,
		CertificatesDisplay: domain.DisplayEnd,
		Start:               &start,
		End:                 &end,
	}
}

type fixture struct {
	userID      uuid.UUID
	course      *domain.Course
	enrollments *mocks.MockEnrollmentStore
	cert        *domain.Certificate
}

func newFixture(mode domain.CourseMode) *fixture {
	f := &fixture{
		userID:      uuid.New(),
		course:      newCourse(),
		enrollments: mocks.NewMockEnrollmentStore(),
	}
	f.enrollments.Enroll(f.userID, demoKey, mode, true)
	f.cert = &domain.Certificate{
		ID:         uuid.New(),
		UserID:     f.userID,
		CourseKey:  demoKey,
		Mode:       mode,
		ModifiedAt: courseEnd.Add(-days(3)),
	}
	return f
}

func (f *fixture) policy(autoGeneration bool, now time.Time) *certificates.Policy {
	return certificates.NewPolicy(flagSet(autoGeneration), f.enrollments, clockAt(now))
}

func TestAutoCertificateGenerationEnabled(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		p := certificates.NewPolicy(flagSet(enabled), mocks.NewMockEnrollmentStore(), nil)
		assert.Equal(t, enabled, p.AutoCertificateGenerationEnabled())
	}

	unset := certificates.NewPolicy(flags.NewSet(nil), mocks.NewMockEnrollmentStore(), nil)
	assert.False(t, unset.AutoCertificateGenerationEnabled(), "unset flags are inactive")
}

func TestCanShowCertificateAvailableDateField(t *testing.T) {
	tests := []struct {
		featureEnabled bool
		selfPaced      bool
		want           bool
	}{
		{true, true, false},
		{true, false, true},
		{false, true, false},
		{false, false, false},
	}

	for _, tc := range tests {
		course := newCourse()
		course.SelfPaced = tc.selfPaced
		p := certificates.NewPolicy(flagSet(tc.featureEnabled), mocks.NewMockEnrollmentStore(), nil)
		assert.Equal(t, tc.want, p.CanShowCertificateAvailableDateField(course),
			"feature=%v self_paced=%v", tc.featureEnabled, tc.selfPaced)
	}
}

func TestCanShowViewCertificateButton_SelfPaced(t *testing.T) {
	tests := []struct {
		mode               domain.CourseMode
		featureEnabled     bool
		wantIfDownloadable bool
	}{
		{domain.ModeCredit, true, true},
		{domain.ModeVerified, true, true},
		{domain.ModeAudit, true, false},
		{domain.ModeCredit, false, true},
		{domain.ModeVerified, false, true},
		{domain.ModeAudit, false, false},
	}

	for _, tc := range tests {
		f := newFixture(tc.mode)
		f.course.SelfPaced = true
		p := f.policy(tc.featureEnabled, time.Now())

		for _, status := range domain.AllCertificateStatuses {
			f.cert.Status = status
			want := tc.wantIfDownloadable && status == domain.CertificateDownloadable

			got, err := p.CanShowViewCertificateButton(context.Background(), f.course, f.cert)
			require.NoError(t, err)
			assert.Equal(t, want, got, "mode=%s feature=%v status=%s", tc.mode, tc.featureEnabled, status)
		}
	}
}

func TestCanShowViewCertificateButton_InstructorPaced(t *testing.T) {
	none := time.Duration(-1)
	tests := []struct {
		name               string
		mode               domain.CourseMode
		featureEnabled     bool
		certAvailDelta     time.Duration
		currentTimeDelta   time.Duration
		wantIfDownloadable bool
	}{
		{"ended, no date, credit", domain.ModeCredit, true, none, days(1), true},
		{"ended, no date, verified", domain.ModeVerified, true, none, days(1), true},
		{"ended, no date, audit", domain.ModeAudit, true, none, days(1), false},

		{"date in past, credit", domain.ModeCredit, true, days(1), days(2), true},
		{"date in past, verified", domain.ModeVerified, true, days(1), days(2), true},
		{"date in past, audit", domain.ModeAudit, true, days(1), days(2), false},

		{"date in future, credit", domain.ModeCredit, true, days(2), days(1), false},
		{"date in future, verified", domain.ModeVerified, true, days(2), days(1), false},
		{"date in future, audit", domain.ModeAudit, true, days(2), days(1), false},

		{"feature off, credit", domain.ModeCredit, false, none, days(1), true},
		{"feature off, verified", domain.ModeVerified, false, none, days(1), true},
		{"feature off, audit", domain.ModeAudit, false, none, days(1), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.mode)
			if tc.certAvailDelta != none {
				available := courseEnd.Add(tc.certAvailDelta)
				f.course.CertificateAvailableDate = &available
			}
			p := f.policy(tc.featureEnabled, courseEnd.Add(tc.currentTimeDelta))

			for _, status := range domain.AllCertificateStatuses {
				f.cert.Status = status
				want := tc.wantIfDownloadable && status == domain.CertificateDownloadable

				got, err := p.CanShowViewCertificateButton(context.Background(), f.course, f.cert)
				require.NoError(t, err)
				assert.Equal(t, want, got, "status=%s", status)
			}
		})
	}
}

func TestCanShowViewCertificateButton_AdvancedSettings(t *testing.T) {
	tests := []struct {
		showBeforeEnd bool
		display       domain.DisplayBehavior
		want          bool
	}{
		{true, domain.DisplayEarlyWithInfo, true},
		{true, domain.DisplayEnd, true},
		{false, domain.DisplayEarlyNoInfo, true},
		{false, domain.DisplayEnd, false},
	}

	for _, tc := range tests {
		f := newFixture(domain.ModeVerified)
		f.course.CertificatesShowBeforeEnd = tc.showBeforeEnd
		f.course.CertificatesDisplay = tc.display
		f.cert.Status = domain.CertificateDownloadable
		p := f.policy(true, courseEnd.Add(-days(1)))

		got, err := p.CanShowViewCertificateButton(context.Background(), f.course, f.cert)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "show_before_end=%v display=%s", tc.showBeforeEnd, tc.display)
	}
}

func TestCanShowViewCertificateButton_CourseEnded(t *testing.T) {
	tests := []struct {
		currentTimeDelta time.Duration
		want             bool
	}{
		{-days(1), false},
		{days(1), true},
	}

	for _, tc := range tests {
		f := newFixture(domain.ModeVerified)
		f.cert.Status = domain.CertificateDownloadable
		p := f.policy(true, courseEnd.Add(tc.currentTimeDelta))

		got, err := p.CanShowViewCertificateButton(context.Background(), f.course, f.cert)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "delta=%s", tc.currentTimeDelta)
	}
}

func TestCanShowViewCertificateButton_NilCertificate(t *testing.T) {
	f := newFixture(domain.ModeVerified)
	got, err := f.policy(true, courseEnd.Add(days(1))).CanShowViewCertificateButton(context.Background(), f.course, nil)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCertificatesViewableForCourse(t *testing.T) {
	t.Run("available date equal to now is viewable", func(t *testing.T) {
		course := newCourse()
		available := courseEnd.Add(days(1))
		course.CertificateAvailableDate = &available
		p := certificates.NewPolicy(flagSet(true), mocks.NewMockEnrollmentStore(), clockAt(available))
		assert.True(t, p.CertificatesViewableForCourse(course))
	})

	t.Run("no end date never ends", func(t *testing.T) {
		course := newCourse()
		course.End = nil
		p := certificates.NewPolicy(flagSet(true), mocks.NewMockEnrollmentStore(), clockAt(courseEnd.Add(days(365))))
		assert.False(t, p.CertificatesViewableForCourse(course))
	})

	t.Run("available date in future hides even after end", func(t *testing.T) {
		course := newCourse()
		available := courseEnd.Add(days(10))
		course.CertificateAvailableDate = &available
		p := certificates.NewPolicy(flagSet(true), mocks.NewMockEnrollmentStore(), clockAt(courseEnd.Add(days(1))))
		assert.False(t, p.CertificatesViewableForCourse(course))
	})
}

func TestEnrollment(t *testing.T) {
	ctx := context.Background()

	t.Run("missing enrollment is neither verified nor active", func(t *testing.T) {
		p := certificates.NewPolicy(flagSet(true), mocks.NewMockEnrollmentStore(), nil)
		verified, err := p.EnrollmentIsVerified(ctx, uuid.New(), demoKey)
		require.NoError(t, err)
		assert.False(t, verified)

		active, err := p.EnrollmentIsActive(ctx, uuid.New(), demoKey)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("store errors propagate", func(t *testing.T) {
		boom := errors.New("db down")
		enrollments := mocks.NewMockEnrollmentStore()
		enrollments.EnrollmentModeForUserFn = func(ctx context.Context, userID uuid.UUID, key domain.CourseKey) (domain.CourseMode, bool, error) {
			return "", false, boom
		}
		p := certificates.NewPolicy(flagSet(true), enrollments, nil)

		_, err := p.EnrollmentIsVerified(ctx, uuid.New(), demoKey)
		assert.ErrorIs(t, err, boom)

		_, err = p.CanShowCertificateMessage(ctx, newCourse(), uuid.New())
		assert.ErrorIs(t, err, boom)
	})
}

func TestCanShowCertificateMessage(t *testing.T) {
	ctx := context.Background()

	f := newFixture(domain.ModeAudit)
	after := f.policy(true, courseEnd.Add(days(1)))
	before := f.policy(true, courseEnd.Add(-days(1)))

	got, err := after.CanShowCertificateMessage(ctx, f.course, f.userID)
	require.NoError(t, err)
	assert.True(t, got, "active enrollment in an ended course")

	got, err = before.CanShowCertificateMessage(ctx, f.course, f.userID)
	require.NoError(t, err)
	assert.False(t, got, "course still running")

	f.enrollments.Enroll(f.userID, demoKey, domain.ModeAudit, false)
	got, err = after.CanShowCertificateMessage(ctx, f.course, f.userID)
	require.NoError(t, err)
	assert.False(t, got, "inactive enrollment")
}

func TestIsCoursePassed(t *testing.T) {
	p := certificates.NewPolicy(flagSet(false), mocks.NewMockEnrollmentStore(), nil)

	tests := []struct {
		name           string
		cutoffs        map[string]float64
		percent        float64
		wantPassed     bool
		wantDetermined bool
	}{
		{"above the lowest cutoff", map[string]float64{"A": 0.9, "Pass": 0.5}, 0.6, true, true},
		{"equal to the lowest cutoff", map[string]float64{"Pass": 0.5}, 0.5, true, true},
		{"below the lowest cutoff", map[string]float64{"A": 0.9, "Pass": 0.5}, 0.4, false, true},
		{"zero cutoffs are ignored", map[string]float64{"F": 0, "Pass": 0.7}, 0.6, false, true},
		{"no cutoffs", nil, 1.0, false, false},
		{"only zero cutoffs", map[string]float64{"F": 0}, 1.0, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			course := newCourse()
			course.GradeCutoffs = tc.cutoffs
			passed, determined := p.IsCoursePassed(course, domain.GradeSummary{Percent: tc.percent})
			assert.Equal(t, tc.wantPassed, passed)
			assert.Equal(t, tc.wantDetermined, determined)
		})
	}
}

func TestDisplayDateForCertificate(t *testing.T) {
	available := courseEnd.Add(days(1))

	tests := []struct {
		name           string
		featureEnabled bool
		selfPaced      bool
		availableDate  *time.Time
		now            time.Time
		wantAvailable  bool
	}{
		{"enabled, instructor paced, date passed", true, false, &available, available.Add(time.Hour), true},
		{"date equal to now", true, false, &available, available, false},
		{"date in future", true, false, &available, available.Add(-time.Hour), false},
		{"feature disabled", false, false, &available, available.Add(time.Hour), false},
		{"self paced", true, true, &available, available.Add(time.Hour), false},
		{"no date", true, false, nil, available.Add(time.Hour), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(domain.ModeVerified)
			f.course.SelfPaced = tc.selfPaced
			f.course.CertificateAvailableDate = tc.availableDate

			got := f.policy(tc.featureEnabled, tc.now).DisplayDateForCertificate(f.course, f.cert)
			if tc.wantAvailable {
				assert.Equal(t, available, got)
			} else {
				assert.Equal(t, f.cert.ModifiedAt, got)
			}
		})
	}
}
