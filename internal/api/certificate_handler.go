package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/api/shared"
	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/platform/logger"
	"github.com/phrazzld/certs-api/internal/service"
)

// CertificateService is the part of service.CertificateService the
// certificate handler uses.
type CertificateService interface {
	Visibility(ctx context.Context, userID uuid.UUID, courseKey domain.CourseKey) (*service.VisibilityView, error)
	CoursePassed(ctx context.Context, courseKey domain.CourseKey, percent float64) (passed, determined bool, err error)
	RequestGeneration(ctx context.Context, kwargs map[string]any) (string, error)
}

// CertificateHandler serves the certificate endpoints.
type CertificateHandler struct {
	certificates CertificateService
	logger       *slog.Logger
}

// NewCertificateHandler creates a CertificateHandler.
func NewCertificateHandler(certificates CertificateService, logger *slog.Logger) *CertificateHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CertificateHandler")
	}
	return &CertificateHandler{
		certificates: certificates,
		logger:       logger.With(slog.String("component", "certificate_handler")),
	}
}

// GetCertificate handles GET /api/courses/{courseKey}/certificate.
func (h *CertificateHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	courseKey, err := getPathCourseKey(r)
	if err != nil {
		log.Debug("invalid course key", slog.String("course_key", chi.URLParam(r, CourseKeyParam)))
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.certificates.Visibility(r.Context(), userID, courseKey)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to evaluate certificate")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// CheckGrade handles POST /api/courses/{courseKey}/grade-check.
func (h *CertificateHandler) CheckGrade(w http.ResponseWriter, r *http.Request) {
	courseKey, err := getPathCourseKey(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req GradeCheckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	passed, determined, err := h.certificates.CoursePassed(r.Context(), courseKey, *req.Percent)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check grade")
		return
	}

	var resp GradeCheckResponse
	if determined {
		resp.Passed = &passed
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GenerateCertificate handles POST /api/certificates/generate. The body is
// the raw generation arguments; the student must be the authenticated learner.
func (h *CertificateHandler) GenerateCertificate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getUserIDFromContext(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var kwargs map[string]any
	if err := shared.DecodeJSON(r, &kwargs); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := requireOwnStudent(kwargs, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	taskID, err := h.certificates.RequestGeneration(r.Context(), kwargs)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to queue certificate generation")
		return
	}

	log.Info("certificate generation accepted", slog.String("task_id", taskID))
	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateResponse{TaskID: taskID})
}
