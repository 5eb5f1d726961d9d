package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration

	// MaxRetries bounds how many times a task asking for a retry is run again.
	MaxRetries int

	// RetryDelay is the wait before a retried task is queued again.
	RetryDelay time.Duration
}

// requeueBackoff is the wait before another enqueue attempt on a full queue
// when no retry delay is configured.
const requeueBackoff = time.Second

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
		MaxRetries:             2,
		RetryDelay:             30 * time.Second,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store    TaskStore
	registry *Registry
	queue    *TaskQueue
	pool     *WorkerPool

	ctx        context.Context
	cancelFunc context.CancelFunc
	// wg tracks the stuck task monitor and pending retry timers
	wg sync.WaitGroup

	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)

	mu sync.Mutex
	// attempts holds the retry count of every task the runner is tracking
	attempts map[uuid.UUID]int
}

// NewTaskRunner creates a new TaskRunner. The registry rebuilds tasks loaded
// from the store during recovery and stuck task checks.
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if registry == nil {
		registry = NewRegistry()
	}
	logger = logger.With("component", "task_runner")

	ctx, cancel := context.WithCancel(context.Background())
	queue := NewTaskQueue(config.QueueSize, logger)

	return &TaskRunner{
		store:      store,
		registry:   registry,
		queue:      queue,
		pool:       NewWorkerPool(ctx, queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		attempts:   make(map[uuid.UUID]int),
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function, called
// once for every task that ends failed.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit persists a new task and adds it to the queue. A task that cannot be
// queued is marked failed so a rejected submission never runs later.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	r.track(task.ID(), 0)

	if err := r.queue.Enqueue(task); err != nil {
		r.forget(task.ID())
		storeCtx := context.WithoutCancel(ctx)
		if updateErr := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusFailed, "not queued: "+err.Error()); updateErr != nil {
			r.logger.Error("failed to mark unqueued task failed",
				"task_id", task.ID(),
				"error", updateErr)
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start recovers unfinished tasks and begins processing
func (r *TaskRunner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.pool.Start(r.processTask)

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner. Tasks waiting on a retry stay
// pending in the store.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.pool.Stop()
	r.wg.Wait()
	r.queue.Close()
}

// Recover loads unfinished tasks from the store and queues them again.
// Tasks interrupted while processing are reset to pending first.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, record := range processing {
		if err := r.store.UpdateTaskStatus(ctx, record.ID, TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", record.ID,
				"task_type", record.Type,
				"error", err)
			continue
		}
		pending = append(pending, record)
	}

	for _, record := range pending {
		if r.isTracked(record.ID) {
			continue
		}
		r.requeue(ctx, record)
	}

	return nil
}

// requeue rebuilds a persisted task and queues it. Records that cannot be
// rebuilt are marked failed.
func (r *TaskRunner) requeue(ctx context.Context, record Record) {
	log := r.logger.With("task_id", record.ID, "task_type", record.Type)

	task, err := r.registry.Rebuild(record)
	if err != nil {
		log.Error("failed to rebuild task", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, record.ID, TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed", "error", updateErr)
		}
		return
	}

	r.track(record.ID, record.Attempts)

	if err := r.queue.Enqueue(task); err != nil {
		if !errors.Is(err, ErrQueueFull) {
			log.Error("failed to requeue task", "error", err)
			return
		}
		log.Warn("queue full, deferring requeue", "delay", r.backoff())
		r.enqueueAfter(task, r.backoff(), log)
	}
}

// enqueueAfter queues task once delay has passed. A full queue re-arms the
// timer, so the task stays owned by the runner until it is queued or the
// runner stops.
func (r *TaskRunner) enqueueAfter(task Task, delay time.Duration, log *slog.Logger) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-timer.C:
			}

			err := r.queue.Enqueue(task)
			if err == nil {
				return
			}
			if !errors.Is(err, ErrQueueFull) {
				log.Error("failed to requeue retried task", "error", err)
				return
			}
			log.Warn("queue full, deferring requeue", "delay", r.backoff())
			timer.Reset(r.backoff())
		}
	}()
}

func (r *TaskRunner) backoff() time.Duration {
	if r.config.RetryDelay > 0 {
		return r.config.RetryDelay
	}
	return requeueBackoff
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	// Status writes must land even when the runner is stopping.
	storeCtx := context.WithoutCancel(ctx)
	log := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", "error", err)
		return
	}

	log.Info("processing task", "attempt", r.attemptsFor(task.ID())+1)

	result := task.Execute(ctx)

	switch result.Kind {
	case ResultCompleted:
		log.Info("task completed successfully")
		if err := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusCompleted, ""); err != nil {
			log.Error("failed to update task status to completed", "error", err)
		}
		r.forget(task.ID())

	case ResultRetry:
		r.retry(storeCtx, task, result.Err, log)

	default:
		r.fail(storeCtx, task, result.Err, log)
	}
}

func (r *TaskRunner) retry(ctx context.Context, task Task, cause error, log *slog.Logger) {
	attempts := r.attemptsFor(task.ID()) + 1
	if attempts > r.config.MaxRetries {
		r.fail(ctx, task, fmt.Errorf("%w after %d retries: %s", ErrRetriesExhausted, r.config.MaxRetries, errMessage(cause)), log)
		return
	}

	r.track(task.ID(), attempts)
	log.Info("task will be retried",
		"retry", attempts,
		"max_retries", r.config.MaxRetries,
		"delay", r.config.RetryDelay,
		"reason", errMessage(cause))

	if err := r.store.ScheduleRetry(ctx, task.ID(), attempts, errMessage(cause)); err != nil {
		log.Error("failed to record task retry", "error", err)
	}

	r.enqueueAfter(task, r.config.RetryDelay, log)
}

func (r *TaskRunner) fail(ctx context.Context, task Task, err error, log *slog.Logger) {
	if err == nil {
		err = fmt.Errorf("task %s failed", task.ID())
	}
	if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
		log.Error("failed to update task status to failed", "error", updateErr)
	}
	r.forget(task.ID())
	r.errHandler(task, err)
}

// stuckTaskMonitor periodically checks for tasks that have been in "processing"
// state for too long and resets them
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			stuck, err := r.store.GetProcessingTasks(r.ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", "error", err)
				continue
			}
			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", "count", len(stuck))
			for _, record := range stuck {
				if err := r.store.UpdateTaskStatus(r.ctx, record.ID, TaskStatusPending,
					"Reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task status",
						"task_id", record.ID,
						"task_type", record.Type,
						"error", err)
					continue
				}
				r.requeue(r.ctx, record)
			}
		}
	}
}

func (r *TaskRunner) track(id uuid.UUID, attempts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[id] = attempts
}

func (r *TaskRunner) forget(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, id)
}

func (r *TaskRunner) isTracked(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.attempts[id]
	return ok
}

func (r *TaskRunner) attemptsFor(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[id]
}

func errMessage(err error) string {
	if err == nil {
		return "retry requested"
	}
	return err.Error()
}
