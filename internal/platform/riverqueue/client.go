package riverqueue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertype"

	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/config"
)

// Client owns the River client that runs certificate generation jobs.
type Client struct {
	river       *river.Client[pgx.Tx]
	pool        *pgxpool.Pool
	queue       string
	maxAttempts int
	logger      *slog.Logger
}

// NewClient builds a River client over pool with the certificate worker
// registered on the configured queue.
func NewClient(pool *pgxpool.Pool, runner Runner, cfg config.TaskConfig, logger *slog.Logger) (*Client, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	if logger == nil {
		logger = slog.Default()
	}

	worker, err := NewCertificateWorker(runner, cfg.RetryDelay, logger)
	if err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, worker); err != nil {
		return nil, fmt.Errorf("failed to register certificate worker: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			cfg.RiverQueue: {MaxWorkers: cfg.WorkerCount},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Client{
		river:       client,
		pool:        pool,
		queue:       cfg.RiverQueue,
		maxAttempts: cfg.MaxRetries + 1,
		logger:      logger.With("component", "river_client"),
	}, nil
}

// Migrate brings the River schema up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if pool == nil {
		return ErrNilPool
	}
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), &rivermigrate.Config{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("failed to migrate River schema: %w", err)
	}
	return nil
}

// Start starts working jobs.
func (c *Client) Start(ctx context.Context) error {
	if err := c.river.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	c.logger.Info("River client started", "queue", c.queue)
	return nil
}

// Stop waits for running jobs to finish, or for ctx to end.
func (c *Client) Stop(ctx context.Context) error {
	if err := c.river.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	c.logger.Info("River client stopped")
	return nil
}

// Dispatch inserts a generation job and returns its id.
func (c *Client) Dispatch(ctx context.Context, req certificates.GenerationRequest) (string, error) {
	result, err := c.river.Insert(ctx, GenerateCertificateArgs{Kwargs: req.Kwargs()}, c.insertOpts())
	if err != nil {
		return "", fmt.Errorf("failed to queue certificate generation job: %w", err)
	}
	return jobID(result), nil
}

func (c *Client) insertOpts() *river.InsertOpts {
	return &river.InsertOpts{Queue: c.queue, MaxAttempts: c.maxAttempts}
}

func jobID(result *rivertype.JobInsertResult) string {
	return strconv.FormatInt(result.Job.ID, 10)
}
