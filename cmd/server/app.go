package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/config"
	"github.com/phrazzld/certs-api/internal/platform/postgres"
	"github.com/phrazzld/certs-api/internal/platform/riverqueue"
	"github.com/phrazzld/certs-api/internal/service"
	"github.com/phrazzld/certs-api/internal/service/auth"
	"github.com/phrazzld/certs-api/internal/store"
	"github.com/phrazzld/certs-api/internal/task"
)

// Task backends selectable with task.backend.
const (
	backendMemory = "memory"
	backendRiver  = "river"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore         store.UserStore
	courseStore       store.CourseStore
	enrollmentStore   store.EnrollmentStore
	certificateStore  store.CertificateStore
	verificationStore store.VerificationStore
	flagStore         store.FlagStore

	jwtService         auth.JWTService
	flagService        *service.FlagService
	certificateService *service.CertificateService

	// Exactly one scheduler backend is set.
	taskRunner  *task.TaskRunner
	riverClient *riverqueue.Client
	riverPool   *pgxpool.Pool
}

// newApplication wires stores, services and the configured task scheduler.
// The scheduler is started before it returns.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.courseStore = postgres.NewPostgresCourseStore(db, logger)
	app.enrollmentStore = postgres.NewPostgresEnrollmentStore(db, logger)
	app.certificateStore = postgres.NewPostgresCertificateStore(db, logger)
	app.verificationStore = postgres.NewPostgresVerificationStore(db, logger)
	app.flagStore = postgres.NewPostgresFlagStore(db, logger)

	app.flagService = service.NewFlagService(cfg.Flags, app.flagStore, logger)

	routine := service.NewCertificateGenerator(db, app.enrollmentStore, app.certificateStore, logger)
	generator, err := certificates.NewGenerator(app.userStore, app.verificationStore, routine, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate generator: %w", err)
	}

	dispatcher, err := app.setupScheduler(ctx, generator)
	if err != nil {
		app.stopScheduler()
		return nil, err
	}

	app.certificateService = service.NewCertificateService(
		app.courseStore,
		app.certificateStore,
		app.enrollmentStore,
		app.flagService,
		dispatcher,
		logger,
	)

	logger.Info("application initialized", "task_backend", cfg.Task.Backend)
	return app, nil
}

// setupScheduler starts the configured task backend and returns the
// dispatcher that queues generation requests on it.
func (app *application) setupScheduler(ctx context.Context, generator *certificates.Generator) (service.Dispatcher, error) {
	switch app.config.Task.Backend {
	case backendRiver:
		return app.setupRiver(ctx, generator)
	case backendMemory, "":
		return app.setupTaskRunner(ctx, generator)
	default:
		return nil, fmt.Errorf("unknown task backend %q", app.config.Task.Backend)
	}
}

func (app *application) setupTaskRunner(ctx context.Context, generator *certificates.Generator) (service.Dispatcher, error) {
	factory := task.NewCertificateGenerationTaskFactory(generator, app.logger)
	registry := task.NewRegistry()
	factory.Register(registry)

	runner := task.NewTaskRunner(
		postgres.NewPostgresTaskStore(app.db, app.logger),
		registry,
		taskRunnerConfig(app.config.Task),
		app.logger,
	)
	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}
	app.taskRunner = runner

	if err := runner.Recover(ctx); err != nil {
		return nil, fmt.Errorf("failed to recover pending tasks: %w", err)
	}

	dispatcher, err := task.NewCertificateDispatcher(factory, runner)
	if err != nil {
		return nil, fmt.Errorf("failed to create task dispatcher: %w", err)
	}
	return dispatcher, nil
}

func (app *application) setupRiver(ctx context.Context, generator *certificates.Generator) (service.Dispatcher, error) {
	pool, err := setupRiverPool(ctx, app.config.Database, app.logger)
	if err != nil {
		return nil, err
	}
	app.riverPool = pool

	client, err := riverqueue.NewClient(pool, generator, app.config.Task, app.logger)
	if err != nil {
		return nil, err
	}
	if err := client.Start(ctx); err != nil {
		return nil, err
	}
	app.riverClient = client
	return client, nil
}

// taskRunnerConfig maps the task configuration onto the in-process runner.
func taskRunnerConfig(cfg config.TaskConfig) task.TaskRunnerConfig {
	runnerCfg := task.DefaultTaskRunnerConfig()
	runnerCfg.WorkerCount = cfg.WorkerCount
	runnerCfg.QueueSize = cfg.QueueSize
	runnerCfg.MaxRetries = cfg.MaxRetries
	runnerCfg.RetryDelay = cfg.RetryDelay
	if cfg.StuckTaskAgeMinutes > 0 {
		runnerCfg.StuckTaskAge = minutes(cfg.StuckTaskAgeMinutes)
	}
	return runnerCfg
}

// Run serves HTTP until ctx ends, then shuts down and releases resources.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the scheduler and closes the database pools.
func (app *application) cleanup() {
	app.stopScheduler()
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}

func (app *application) stopScheduler() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.riverClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
		if err := app.riverClient.Stop(ctx); err != nil {
			app.logger.Error("failed to stop River client", "error", err)
		}
		cancel()
	}
	if app.riverPool != nil {
		app.riverPool.Close()
	}
}
