package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/domain"
	"github.com/phrazzld/certs-api/internal/flags"
	"github.com/phrazzld/certs-api/internal/store"
)

// FlagSource provides the flag snapshot for a request.
type FlagSource interface {
	Snapshot(ctx context.Context) (flags.Set, error)
}

// Dispatcher queues a validated generation request and returns its task id.
type Dispatcher interface {
	Dispatch(ctx context.Context, req certificates.GenerationRequest) (string, error)
}

// VisibilityView is the certificate state of one learner in one course.
type VisibilityView struct {
	CourseKey                            string     `json:"course_key"`
	AutoCertificateGeneration            bool       `json:"auto_certificate_generation"`
	CertificatesViewable                 bool       `json:"certificates_viewable"`
	CanShowViewCertificateButton         bool       `json:"can_show_view_certificate_button"`
	CanShowCertificateMessage            bool       `json:"can_show_certificate_message"`
	CanShowCertificateAvailableDateField bool       `json:"can_show_certificate_available_date_field"`
	CertificateStatus                    string     `json:"certificate_status,omitempty"`
	DisplayDate                          *time.Time `json:"display_date,omitempty"`
}

// CertificateService answers certificate questions for learners and queues
// certificate generation.
type CertificateService struct {
	courses      store.CourseStore
	certificates store.CertificateStore
	enrollments  store.EnrollmentStore
	flags        FlagSource
	dispatcher   Dispatcher
	now          func() time.Time
	logger       *slog.Logger
}

// NewCertificateService creates a CertificateService. dispatcher may be nil
// when generation is not offered; RequestGeneration then fails.
func NewCertificateService(
	courses store.CourseStore,
	certs store.CertificateStore,
	enrollments store.EnrollmentStore,
	flagSource FlagSource,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *CertificateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CertificateService{
		courses:      courses,
		certificates: certs,
		enrollments:  enrollments,
		flags:        flagSource,
		dispatcher:   dispatcher,
		now:          time.Now,
		logger:       logger.With("component", "certificate_service"),
	}
}

// WithClock returns a copy of the service that reads the time from now.
func (s *CertificateService) WithClock(now func() time.Time) *CertificateService {
	copied := *s
	copied.now = now
	return &copied
}

func (s *CertificateService) policy(ctx context.Context) (*certificates.Policy, error) {
	snapshot, err := s.flags.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return certificates.NewPolicy(snapshot, s.enrollments, s.now), nil
}

// Visibility evaluates every visibility rule for the learner in the course.
func (s *CertificateService) Visibility(
	ctx context.Context,
	userID uuid.UUID,
	courseKey domain.CourseKey,
) (*VisibilityView, error) {
	log := s.logger.With("user_id", userID, "course_key", courseKey.String())

	policy, err := s.policy(ctx)
	if err != nil {
		return nil, err
	}

	course, err := s.courses.GetByKey(ctx, courseKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to load course", "error", err)
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}

	cert, err := s.certificates.GetForUser(ctx, userID, courseKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("failed to load certificate", "error", err)
			return nil, fmt.Errorf("failed to load certificate: %w", err)
		}
		cert = nil
	}

	button, err := policy.CanShowViewCertificateButton(ctx, course, cert)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate certificate button: %w", err)
	}
	message, err := policy.CanShowCertificateMessage(ctx, course, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate certificate message: %w", err)
	}

	view := &VisibilityView{
		CourseKey:                            courseKey.String(),
		AutoCertificateGeneration:            policy.AutoCertificateGenerationEnabled(),
		CertificatesViewable:                 policy.CertificatesViewableForCourse(course),
		CanShowViewCertificateButton:         button,
		CanShowCertificateMessage:            message,
		CanShowCertificateAvailableDateField: policy.CanShowCertificateAvailableDateField(course),
	}
	if cert != nil {
		view.CertificateStatus = string(cert.Status)
		date := policy.DisplayDateForCertificate(course, cert)
		view.DisplayDate = &date
	}

	log.Debug("evaluated certificate visibility",
		"button", view.CanShowViewCertificateButton,
		"viewable", view.CertificatesViewable)
	return view, nil
}

// CoursePassed compares percent against the course grade cutoffs. determined
// is false when the course configures no positive cutoff.
func (s *CertificateService) CoursePassed(
	ctx context.Context,
	courseKey domain.CourseKey,
	percent float64,
) (passed, determined bool, err error) {
	if percent < 0 || percent > 1 {
		return false, false, fmt.Errorf("%w: %v", ErrInvalidPercent, percent)
	}

	policy, err := s.policy(ctx)
	if err != nil {
		return false, false, err
	}

	course, err := s.courses.GetByKey(ctx, courseKey)
	if err != nil {
		return false, false, fmt.Errorf("failed to load course: %w", err)
	}

	passed, determined = policy.IsCoursePassed(course, domain.GradeSummary{Percent: percent})
	return passed, determined, nil
}

// RequestGeneration validates the generation arguments and queues them.
// Missing required arguments fail here, before anything is queued.
func (s *CertificateService) RequestGeneration(ctx context.Context, kwargs map[string]any) (string, error) {
	req, err := certificates.ParseGenerationKwargs(kwargs)
	if err != nil {
		s.logger.Warn("rejected certificate generation request", "error", err)
		return "", err
	}
	if s.dispatcher == nil {
		return "", ErrNilDispatcher
	}

	taskID, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		s.logger.Error("failed to queue certificate generation",
			"error", err,
			"student", req.Student,
			"course_key", req.CourseKey)
		return "", fmt.Errorf("failed to queue certificate generation: %w", err)
	}

	s.logger.Info("queued certificate generation",
		"task_id", taskID,
		"student", req.Student,
		"course_key", req.CourseKey)
	return taskID, nil
}
