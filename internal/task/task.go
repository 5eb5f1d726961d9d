package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeCertificateGeneration generates a certificate for a learner and course.
	TaskTypeCertificateGeneration = "certificate_generation"
)

// ErrRetriesExhausted is recorded when a task kept asking for a retry past the limit.
var ErrRetriesExhausted = errors.New("task retries exhausted")

// ResultKind classifies the result of a task execution.
type ResultKind int

// Result kinds
const (
	ResultCompleted ResultKind = iota
	ResultRetry
	ResultFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultCompleted:
		return "completed"
	case ResultRetry:
		return "retry"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is returned by Task.Execute. Err explains Retry and Failed results.
type Result struct {
	Kind ResultKind
	Err  error
}

// Completed reports a finished task.
func Completed() Result { return Result{Kind: ResultCompleted} }

// RetryLater asks the runner to execute the task again after its retry delay.
func RetryLater(err error) Result { return Result{Kind: ResultRetry, Err: err} }

// Fail reports a task that must not be retried.
func Fail(err error) Result { return Result{Kind: ResultFailed, Err: err} }

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the status the task was created or loaded with
	Status() TaskStatus

	// Execute runs one attempt of the task logic
	Execute(ctx context.Context) Result
}

// Record is a persisted task row.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       TaskStatus
	ErrorMessage string
	Attempts     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task to the database
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// ScheduleRetry puts a task back to pending with its new attempt count
	// and the reason for the retry.
	ScheduleRetry(ctx context.Context, taskID uuid.UUID, attempts int, errorMsg string) error

	// GetTask retrieves a single task record.
	GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error)

	// GetPendingTasks retrieves all tasks with "pending" status
	GetPendingTasks(ctx context.Context) ([]Record, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
