package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/certs-api/internal/api/shared"
	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/service"
	"github.com/phrazzld/certs-api/internal/service/auth"
	"github.com/phrazzld/certs-api/internal/store"
	"github.com/phrazzld/certs-api/internal/task"
)

var (
	// ErrUnauthenticated is reported when a handler runs without a learner in
	// the request context.
	ErrUnauthenticated = errors.New("request is not authenticated")

	// ErrForbidden is reported when a learner acts on another learner's behalf.
	ErrForbidden = errors.New("operation not permitted for this learner")
)

// MapErrorToStatusCode maps service and store errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrMalformedCourseKey),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidVerificationStatus),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, certificates.ErrMissingArgument),
		errors.Is(err, service.ErrInvalidPercent),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	var missing *certificates.MissingArgumentError

	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, ErrForbidden):
		return "Certificates can only be requested for the authenticated learner"
	case errors.Is(err, store.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, store.ErrCertificateNotFound):
		return "Certificate not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, domain.ErrMalformedCourseKey):
		return "Malformed course key"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"
	case errors.Is(err, domain.ErrInvalidVerificationStatus):
		return "Invalid expected verification status"
	case errors.As(err, &missing):
		return fmt.Sprintf("Missing required argument: %s", missing.Name)
	case errors.Is(err, service.ErrInvalidPercent):
		return "Grade percent must be between 0 and 1"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return "Certificate generation is temporarily unavailable"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message of unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
