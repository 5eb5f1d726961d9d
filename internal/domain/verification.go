package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the state of a learner's photo identity verification.
type VerificationStatus string

// Verification statuses
const (
	VerificationCreated   VerificationStatus = "created"
	VerificationReady     VerificationStatus = "ready"
	VerificationSubmitted VerificationStatus = "submitted"
	VerificationMustRetry VerificationStatus = "must_retry"
	VerificationApproved  VerificationStatus = "approved"
	VerificationDenied    VerificationStatus = "denied"
)

// IsValid reports whether the status is one of the known statuses.
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationCreated, VerificationReady, VerificationSubmitted,
		VerificationMustRetry, VerificationApproved, VerificationDenied:
		return true
	}
	return false
}

// Verification is an identity verification attempt by a learner.
type Verification struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Status    VerificationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}
