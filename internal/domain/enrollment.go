package domain

import (
	"time"

	"github.com/google/uuid"
)

// CourseMode is the enrollment track of a learner in a course.
type CourseMode string

// Known course modes
const (
	ModeAudit            CourseMode = "audit"
	ModeHonor            CourseMode = "honor"
	ModeVerified         CourseMode = "verified"
	ModeProfessional     CourseMode = "professional"
	ModeNoIDProfessional CourseMode = "no-id-professional"
	ModeCredit           CourseMode = "credit"
)

// VerifiedCertificateModes are the modes that earn a verified certificate.
var VerifiedCertificateModes = []CourseMode{ModeVerified, ModeCredit}

// IsVerifiedCertificateMode reports whether the mode earns a verified certificate.
func (m CourseMode) IsVerifiedCertificateMode() bool {
	for _, verified := range VerifiedCertificateModes {
		if m == verified {
			return true
		}
	}
	return false
}

// IsValid reports whether the mode is one of the known modes.
func (m CourseMode) IsValid() bool {
	switch m {
	case ModeAudit, ModeHonor, ModeVerified, ModeProfessional, ModeNoIDProfessional, ModeCredit:
		return true
	}
	return false
}

// Enrollment pairs a learner with a course.
type Enrollment struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	CourseKey CourseKey  `json:"course_id"`
	Mode      CourseMode `json:"mode"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
