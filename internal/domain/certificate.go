package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CertificateStatus is the lifecycle state of a generated certificate.
type CertificateStatus string

// Certificate statuses
const (
	CertificateDeleted         CertificateStatus = "deleted"
	CertificateDeleting        CertificateStatus = "deleting"
	CertificateDownloadable    CertificateStatus = "downloadable"
	CertificateError           CertificateStatus = "error"
	CertificateGenerating      CertificateStatus = "generating"
	CertificateNotPassing      CertificateStatus = "notpassing"
	CertificateRestricted      CertificateStatus = "restricted"
	CertificateUnavailable     CertificateStatus = "unavailable"
	CertificateAuditing        CertificateStatus = "auditing"
	CertificateAuditPassing    CertificateStatus = "audit_passing"
	CertificateAuditNotPassing CertificateStatus = "audit_notpassing"
	CertificateUnverified      CertificateStatus = "unverified"
	CertificateInvalidated     CertificateStatus = "invalidated"
	CertificateRequesting      CertificateStatus = "requesting"
)

// AllCertificateStatuses lists every known status.
var AllCertificateStatuses = []CertificateStatus{
	CertificateDeleted,
	CertificateDeleting,
	CertificateDownloadable,
	CertificateError,
	CertificateGenerating,
	CertificateNotPassing,
	CertificateRestricted,
	CertificateUnavailable,
	CertificateAuditing,
	CertificateAuditPassing,
	CertificateAuditNotPassing,
	CertificateUnverified,
	CertificateInvalidated,
	CertificateRequesting,
}

// IsValid reports whether the status is one of the known statuses.
func (s CertificateStatus) IsValid() bool {
	for _, known := range AllCertificateStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Certificate is a generated certificate record for a learner in a course.
type Certificate struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	CourseKey      CourseKey         `json:"course_id"`
	Mode           CourseMode        `json:"mode"`
	Status         CertificateStatus `json:"status"`
	GenerationArgs json.RawMessage   `json:"generation_args,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	ModifiedAt     time.Time         `json:"modified_date"`
}

// IsValid reports whether the certificate can be shown to the learner.
// Only downloadable certificates are valid.
func (c *Certificate) IsValid() bool {
	return c.Status == CertificateDownloadable
}
