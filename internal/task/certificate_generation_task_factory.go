package task

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/certs-api/internal/certificates"
)

// CertificateGenerationTaskFactory creates CertificateGenerationTask instances
type CertificateGenerationTaskFactory struct {
	generator CertificateRunner
	logger    *slog.Logger
}

// NewCertificateGenerationTaskFactory creates a new factory for CertificateGenerationTasks
func NewCertificateGenerationTaskFactory(
	generator CertificateRunner,
	logger *slog.Logger,
) *CertificateGenerationTaskFactory {
	return &CertificateGenerationTaskFactory{
		generator: generator,
		logger:    logger.With("component", "certificate_generation_task_factory"),
	}
}

// CreateTask creates a new task for the request
func (f *CertificateGenerationTaskFactory) CreateTask(req certificates.GenerationRequest) (Task, error) {
	return NewCertificateGenerationTask(uuid.New(), req, f.generator, f.logger)
}

// Rebuild implements Factory for persisted certificate generation tasks.
func (f *CertificateGenerationTaskFactory) Rebuild(id uuid.UUID, payload []byte) (Task, error) {
	req, err := DecodeCertificateGenerationPayload(payload)
	if err != nil {
		return nil, err
	}
	return NewCertificateGenerationTask(id, req, f.generator, f.logger)
}

// Register binds the factory to its task type.
func (f *CertificateGenerationTaskFactory) Register(registry *Registry) {
	registry.Register(TaskTypeCertificateGeneration, f.Rebuild)
}

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// CertificateDispatcher queues certificate generation requests on a Submitter.
type CertificateDispatcher struct {
	factory   *CertificateGenerationTaskFactory
	submitter Submitter
}

// NewCertificateDispatcher creates a dispatcher backed by the in-process runner.
func NewCertificateDispatcher(factory *CertificateGenerationTaskFactory, submitter Submitter) (*CertificateDispatcher, error) {
	if factory == nil {
		return nil, ErrNilGenerator
	}
	if submitter == nil {
		return nil, ErrNilSubmitter
	}
	return &CertificateDispatcher{factory: factory, submitter: submitter}, nil
}

// Dispatch queues the request and returns the task id.
func (d *CertificateDispatcher) Dispatch(ctx context.Context, req certificates.GenerationRequest) (string, error) {
	task, err := d.factory.CreateTask(req)
	if err != nil {
		return "", err
	}
	if err := d.submitter.Submit(ctx, task); err != nil {
		return "", err
	}
	return task.ID().String(), nil
}
