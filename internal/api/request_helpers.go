package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/api/shared"
	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/domain"
)

// CourseKeyParam is the route parameter holding a course key.
const CourseKeyParam = "courseKey"

// getUserIDFromContext returns the authenticated learner or ErrUnauthenticated.
func getUserIDFromContext(r *http.Request) (uuid.UUID, error) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrUnauthenticated
	}
	return userID, nil
}

// getPathCourseKey parses the course key route parameter. Legacy keys arrive
// with their slashes percent-encoded.
func getPathCourseKey(r *http.Request) (domain.CourseKey, error) {
	raw := chi.URLParam(r, CourseKeyParam)
	if raw == "" {
		return domain.CourseKey{}, fmt.Errorf("%w: course key is required", domain.ErrMalformedCourseKey)
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return domain.CourseKey{}, fmt.Errorf("%w: %q", domain.ErrMalformedCourseKey, raw)
	}
	return domain.ParseCourseKey(decoded)
}

// requireOwnStudent checks that generation arguments name userID as the
// student. A missing student is left for argument parsing to report.
func requireOwnStudent(kwargs map[string]any, userID uuid.UUID) error {
	raw, ok := kwargs[certificates.ArgStudent]
	if !ok || raw == nil {
		return nil
	}
	student, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%w: student must be a user id", domain.ErrInvalidID)
	}
	id, err := uuid.Parse(student)
	if err != nil {
		return fmt.Errorf("%w: student %q", domain.ErrInvalidID, student)
	}
	if id != userID {
		return ErrForbidden
	}
	return nil
}
