package riverqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/phrazzld/certs-api/internal/certificates"
)

// JobKind identifies certificate generation jobs in the river_job table.
const JobKind = "generate_certificate"

// GenerateCertificateArgs are the arguments of a certificate generation job.
type GenerateCertificateArgs struct {
	Kwargs map[string]any `json:"kwargs"`
}

// Kind implements river.JobArgs.
func (GenerateCertificateArgs) Kind() string {
	return JobKind
}

// Runner runs one attempt of a certificate generation request.
type Runner interface {
	Run(ctx context.Context, req certificates.GenerationRequest) certificates.Outcome
}

// CertificateWorker works certificate generation jobs.
type CertificateWorker struct {
	river.WorkerDefaults[GenerateCertificateArgs]

	runner     Runner
	retryDelay time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewCertificateWorker creates the worker. retryDelay is the wait before a
// retryable attempt runs again.
func NewCertificateWorker(runner Runner, retryDelay time.Duration, logger *slog.Logger) (*CertificateWorker, error) {
	if runner == nil {
		return nil, ErrNilRunner
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CertificateWorker{
		runner:     runner,
		retryDelay: retryDelay,
		now:        time.Now,
		logger:     logger.With("component", "river_certificate_worker"),
	}, nil
}

// Work implements river.Worker.
func (w *CertificateWorker) Work(ctx context.Context, job *river.Job[GenerateCertificateArgs]) error {
	log := w.logger.With("job_id", job.ID, "attempt", job.Attempt, "max_attempts", job.MaxAttempts)

	cancel, err := w.attempt(ctx, job.Args)
	switch {
	case err == nil:
		log.Info("certificate generation job completed")
		return nil
	case cancel:
		log.Error("certificate generation job cancelled", "error", err)
		return river.JobCancel(err)
	default:
		log.Warn("certificate generation job will be retried", "error", err)
		return err
	}
}

// attempt runs the request once. cancel reports that err must not be retried.
func (w *CertificateWorker) attempt(ctx context.Context, args GenerateCertificateArgs) (cancel bool, err error) {
	req, err := certificates.ParseGenerationKwargs(args.Kwargs)
	if err != nil {
		return true, err
	}

	outcome := w.runner.Run(ctx, req)
	switch outcome.Kind {
	case certificates.Delegated:
		return false, nil
	case certificates.Retry:
		if outcome.Err == nil {
			return false, errors.New("generation asked for a retry")
		}
		return false, outcome.Err
	default:
		if outcome.Err == nil {
			return true, fmt.Errorf("generation failed with outcome %s", outcome.Kind)
		}
		return true, outcome.Err
	}
}

// NextRetry implements river.Worker with a fixed delay between attempts.
func (w *CertificateWorker) NextRetry(job *river.Job[GenerateCertificateArgs]) time.Time {
	return w.now().Add(w.retryDelay)
}
