package certificates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/flags"
)

// EnrollmentReader returns the (mode, active) pair of a learner in a course.
// A learner without an enrollment yields an empty mode and false.
type EnrollmentReader interface {
	EnrollmentModeForUser(
		ctx context.Context,
		userID uuid.UUID,
		courseKey domain.CourseKey,
	) (domain.CourseMode, bool, error)
}

// Policy evaluates certificate visibility rules. Every method recomputes its
// answer from its arguments, the flag snapshot and the clock.
type Policy struct {
	flags       flags.Checker
	enrollments EnrollmentReader
	now         func() time.Time
}

// NewPolicy creates a Policy. A nil clock defaults to time.Now.
func NewPolicy(checker flags.Checker, enrollments EnrollmentReader, now func() time.Time) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{flags: checker, enrollments: enrollments, now: now}
}

// AutoCertificateGenerationEnabled reports whether automatic generation is on.
func (p *Policy) AutoCertificateGenerationEnabled() bool {
	return p.flags.IsEnabled(AutoCertificateGeneration)
}

func (p *Policy) enabledAndInstructorPaced(course *domain.Course) bool {
	return p.AutoCertificateGenerationEnabled() && !course.SelfPaced
}

// CertificatesViewableForCourse reports whether certificates are viewable for
// any learner enrolled in the course.
func (p *Policy) CertificatesViewableForCourse(course *domain.Course) bool {
	if course.SelfPaced {
		return true
	}
	if course.CertificatesDisplay.IsEarly() || course.CertificatesShowBeforeEnd {
		return true
	}

	now := p.now()
	if course.CertificateAvailableDate != nil && !course.CertificateAvailableDate.After(now) {
		return true
	}
	if course.CertificateAvailableDate == nil && course.HasEnded(now) {
		return true
	}
	return false
}

// EnrollmentIsVerified reports whether the learner holds a verified
// certificate enrollment in the course.
func (p *Policy) EnrollmentIsVerified(ctx context.Context, userID uuid.UUID, courseKey domain.CourseKey) (bool, error) {
	mode, _, err := p.enrollments.EnrollmentModeForUser(ctx, userID, courseKey)
	if err != nil {
		return false, err
	}
	return mode.IsVerifiedCertificateMode(), nil
}

// EnrollmentIsActive reports whether the learner's enrollment is active.
func (p *Policy) EnrollmentIsActive(ctx context.Context, userID uuid.UUID, courseKey domain.CourseKey) (bool, error) {
	_, active, err := p.enrollments.EnrollmentModeForUser(ctx, userID, courseKey)
	if err != nil {
		return false, err
	}
	return active, nil
}

// IsCertificateValid reports whether the certificate is downloadable and
// belongs to a verified enrollment.
func (p *Policy) IsCertificateValid(ctx context.Context, cert *domain.Certificate) (bool, error) {
	verified, err := p.EnrollmentIsVerified(ctx, cert.UserID, cert.CourseKey)
	if err != nil {
		return false, err
	}
	return verified && cert.IsValid(), nil
}

// CanShowViewCertificateButton reports whether the learner owning cert may
// see the "View Certificate" button on their progress page.
func (p *Policy) CanShowViewCertificateButton(
	ctx context.Context,
	course *domain.Course,
	cert *domain.Certificate,
) (bool, error) {
	if cert == nil {
		return false, nil
	}

	valid, err := p.IsCertificateValid(ctx, cert)
	if err != nil {
		return false, err
	}
	if p.AutoCertificateGenerationEnabled() {
		return p.CertificatesViewableForCourse(course) && valid, nil
	}
	return valid, nil
}

// CanShowCertificateMessage reports whether the certificate message is shown
// to the learner in the course.
func (p *Policy) CanShowCertificateMessage(ctx context.Context, course *domain.Course, userID uuid.UUID) (bool, error) {
	active, err := p.EnrollmentIsActive(ctx, userID, course.Key)
	if err != nil {
		return false, err
	}
	return active && p.CertificatesViewableForCourse(course), nil
}

// IsCoursePassed compares the grade against the smallest positive cutoff.
// Without a positive cutoff the result is undetermined and passed is false.
func (p *Policy) IsCoursePassed(course *domain.Course, summary domain.GradeSummary) (passed, determined bool) {
	cutoff, ok := successCutoff(course.GradeCutoffs)
	if !ok {
		return false, false
	}
	return summary.Percent >= cutoff, true
}

func successCutoff(cutoffs map[string]float64) (float64, bool) {
	found := false
	var lowest float64
	for _, cutoff := range cutoffs {
		if cutoff <= 0 {
			continue
		}
		if !found || cutoff < lowest {
			lowest = cutoff
			found = true
		}
	}
	return lowest, found
}

// CanShowCertificateAvailableDateField reports whether course authors may
// edit the certificate available date.
func (p *Policy) CanShowCertificateAvailableDateField(course *domain.Course) bool {
	return p.enabledAndInstructorPaced(course)
}

// DisplayDateForCertificate returns the date printed on the certificate.
func (p *Policy) DisplayDateForCertificate(course *domain.Course, cert *domain.Certificate) time.Time {
	if p.enabledAndInstructorPaced(course) &&
		course.CertificateAvailableDate != nil &&
		course.CertificateAvailableDate.Before(p.now()) {
		return *course.CertificateAvailableDate
	}
	return cert.ModifiedAt
}
