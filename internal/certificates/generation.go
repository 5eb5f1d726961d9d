package certificates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/domain"
)

// Generation request argument names.
const (
	ArgStudent                    = "student"
	ArgCourseKey                  = "course_key"
	ArgExpectedVerificationStatus = "expected_verification_status"
)

var (
	// ErrMissingArgument is wrapped by MissingArgumentError.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrPreconditionNotMet is reported while an expected verification is absent.
	ErrPreconditionNotMet = errors.New("generation precondition not met")

	ErrNilUserGetter          = errors.New("user getter cannot be nil")
	ErrNilVerificationChecker = errors.New("verification checker cannot be nil")
	ErrNilGenerationRoutine   = errors.New("generation routine cannot be nil")
)

// MissingArgumentError names a required generation argument that was absent.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingArgument, e.Name)
}

func (e *MissingArgumentError) Unwrap() error {
	return ErrMissingArgument
}

// GenerationRequest is a parsed certificate generation request.
type GenerationRequest struct {
	Student                    string
	CourseKey                  string
	ExpectedVerificationStatus string
	// Extra holds every other argument, forwarded to the routine untouched.
	Extra map[string]any
}

// ParseGenerationKwargs validates raw generation arguments. student and
// course_key are required; a nil value counts as missing. An
// expected_verification_status must be a known status.
func ParseGenerationKwargs(kwargs map[string]any) (GenerationRequest, error) {
	var req GenerationRequest

	student, ok := kwargs[ArgStudent]
	if !ok || student == nil {
		return req, &MissingArgumentError{Name: ArgStudent}
	}
	courseKey, ok := kwargs[ArgCourseKey]
	if !ok || courseKey == nil {
		return req, &MissingArgumentError{Name: ArgCourseKey}
	}

	req.Student = argString(student)
	req.CourseKey = argString(courseKey)
	if expected, ok := kwargs[ArgExpectedVerificationStatus]; ok && expected != nil {
		req.ExpectedVerificationStatus = argString(expected)
		if !domain.VerificationStatus(req.ExpectedVerificationStatus).IsValid() {
			return GenerationRequest{}, fmt.Errorf("%w: %q", domain.ErrInvalidVerificationStatus, req.ExpectedVerificationStatus)
		}
	}

	req.Extra = make(map[string]any)
	for key, value := range kwargs {
		switch key {
		case ArgStudent, ArgCourseKey, ArgExpectedVerificationStatus:
			continue
		}
		req.Extra[key] = value
	}

	return req, nil
}

// argString renders a scalar argument. JSON payloads decode numbers as float64.
func argString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Kwargs renders the request back into its raw argument form.
func (r GenerationRequest) Kwargs() map[string]any {
	kwargs := make(map[string]any, len(r.Extra)+3)
	for key, value := range r.Extra {
		kwargs[key] = value
	}
	kwargs[ArgStudent] = r.Student
	kwargs[ArgCourseKey] = r.CourseKey
	if r.ExpectedVerificationStatus != "" {
		kwargs[ArgExpectedVerificationStatus] = r.ExpectedVerificationStatus
	}
	return kwargs
}

// OutcomeKind classifies the result of one generation attempt.
type OutcomeKind int

const (
	// Delegated means the generation routine accepted the request.
	Delegated OutcomeKind = iota
	// Retry means the attempt should be rescheduled.
	Retry
	// Failed means the request cannot succeed and must not be retried.
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Delegated:
		return "delegated"
	case Retry:
		return "retry"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of one generation attempt. Err is set for Retry and Failed.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// UserGetter loads learners.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// VerificationChecker reports whether a learner has a verification in a status.
type VerificationChecker interface {
	HasVerification(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) (bool, error)
}

// GenerationRoutine produces the certificate for a learner.
type GenerationRoutine interface {
	GenerateUserCertificate(
		ctx context.Context,
		user *domain.User,
		courseKey domain.CourseKey,
		extra map[string]any,
	) error
}

// Generator runs certificate generation requests.
type Generator struct {
	users         UserGetter
	verifications VerificationChecker
	routine       GenerationRoutine
	logger        *slog.Logger
}

// NewGenerator creates a Generator. A nil logger falls back to slog.Default.
func NewGenerator(
	users UserGetter,
	verifications VerificationChecker,
	routine GenerationRoutine,
	logger *slog.Logger,
) (*Generator, error) {
	if users == nil {
		return nil, ErrNilUserGetter
	}
	if verifications == nil {
		return nil, ErrNilVerificationChecker
	}
	if routine == nil {
		return nil, ErrNilGenerationRoutine
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		users:         users,
		verifications: verifications,
		routine:       routine,
		logger:        logger.With("component", "certificate_generator"),
	}, nil
}

// Run performs one attempt of the request.
func (g *Generator) Run(ctx context.Context, req GenerationRequest) Outcome {
	log := g.logger.With("student", req.Student, "course_key", req.CourseKey)

	if err := ctx.Err(); err != nil {
		return Outcome{Kind: Retry, Err: fmt.Errorf("generation interrupted: %w", err)}
	}

	userID, err := domain.ParseUserID(req.Student)
	if err != nil {
		log.Error("invalid student identifier", "error", err)
		return Outcome{Kind: Failed, Err: err}
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		log.Error("failed to load student", "error", err)
		return Outcome{Kind: Failed, Err: fmt.Errorf("failed to load student: %w", err)}
	}

	courseKey, err := domain.ParseCourseKey(req.CourseKey)
	if err != nil {
		log.Error("invalid course key", "error", err)
		return Outcome{Kind: Failed, Err: err}
	}

	if req.ExpectedVerificationStatus != "" {
		status := domain.VerificationStatus(req.ExpectedVerificationStatus)
		if !status.IsValid() {
			err := fmt.Errorf("%w: %q", domain.ErrInvalidVerificationStatus, req.ExpectedVerificationStatus)
			log.Error("invalid expected verification status", "error", err)
			return Outcome{Kind: Failed, Err: err}
		}

		found, err := g.verifications.HasVerification(ctx, user.ID, status)
		if err != nil {
			log.Error("failed to check verification", "error", err)
			return Outcome{Kind: Failed, Err: fmt.Errorf("failed to check verification: %w", err)}
		}
		if !found {
			log.Info("expected verification not found, will retry", "expected_status", status)
			return Outcome{
				Kind: Retry,
				Err:  fmt.Errorf("%w: no %s verification for user %s", ErrPreconditionNotMet, status, user.ID),
			}
		}
	}

	if err := g.routine.GenerateUserCertificate(ctx, user, courseKey, req.Extra); err != nil {
		log.Error("generation routine failed", "error", err)
		return Outcome{Kind: Failed, Err: fmt.Errorf("generation routine failed: %w", err)}
	}

	log.Info("certificate generation delegated")
	return Outcome{Kind: Delegated}
}
