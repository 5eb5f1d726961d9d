package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier is malformed.
	ErrInvalidID = errors.New("invalid ID")

	// ErrMalformedCourseKey is returned when a course key string cannot be parsed.
	ErrMalformedCourseKey = errors.New("malformed course key")

	// ErrInvalidCertificateStatus is returned for a status outside the known set.
	ErrInvalidCertificateStatus = errors.New("invalid certificate status")

	// ErrInvalidCourseMode is returned for an enrollment mode outside the known set.
	ErrInvalidCourseMode = errors.New("invalid course mode")

	// ErrInvalidVerificationStatus is returned for an unknown verification status.
	ErrInvalidVerificationStatus = errors.New("invalid verification status")
)
