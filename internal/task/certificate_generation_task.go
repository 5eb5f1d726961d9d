package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/certificates"
)

// Common errors
var (
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrNilSubmitter = errors.New("submitter cannot be nil")
)

// CertificateRunner runs one attempt of a certificate generation request.
type CertificateRunner interface {
	Run(ctx context.Context, req certificates.GenerationRequest) certificates.Outcome
}

// CertificateGenerationTask implements the Task interface for generating a
// certificate for a learner and course
type CertificateGenerationTask struct {
	id        uuid.UUID
	request   certificates.GenerationRequest
	generator CertificateRunner
	logger    *slog.Logger
}

// NewCertificateGenerationTask creates a new certificate generation task
func NewCertificateGenerationTask(
	id uuid.UUID,
	request certificates.GenerationRequest,
	generator CertificateRunner,
	logger *slog.Logger,
) (*CertificateGenerationTask, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &CertificateGenerationTask{
		id:        id,
		request:   request,
		generator: generator,
		logger: logger.With(
			"task_type", TaskTypeCertificateGeneration,
			"task_id", id,
			"student", request.Student,
			"course_key", request.CourseKey,
		),
	}, nil
}

// ID returns the task's unique identifier
func (t *CertificateGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *CertificateGenerationTask) Type() string {
	return TaskTypeCertificateGeneration
}

// Request returns the generation request carried by the task.
func (t *CertificateGenerationTask) Request() certificates.GenerationRequest {
	return t.request
}

// Payload returns the generation arguments encoded as a JSON object
func (t *CertificateGenerationTask) Payload() []byte {
	data, err := json.Marshal(t.request.Kwargs())
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte("{}")
	}
	return data
}

// Status returns the status of a newly created task
func (t *CertificateGenerationTask) Status() TaskStatus {
	return TaskStatusPending
}

// Execute runs one generation attempt and translates its outcome.
func (t *CertificateGenerationTask) Execute(ctx context.Context) Result {
	t.logger.Info("starting certificate generation task")

	outcome := t.generator.Run(ctx, t.request)
	switch outcome.Kind {
	case certificates.Delegated:
		return Completed()
	case certificates.Retry:
		return RetryLater(outcome.Err)
	default:
		return Fail(outcome.Err)
	}
}

// DecodeCertificateGenerationPayload parses a stored task payload.
func DecodeCertificateGenerationPayload(payload []byte) (certificates.GenerationRequest, error) {
	var kwargs map[string]any
	if err := json.Unmarshal(payload, &kwargs); err != nil {
		return certificates.GenerationRequest{}, fmt.Errorf("failed to decode certificate generation payload: %w", err)
	}
	return certificates.ParseGenerationKwargs(kwargs)
}
