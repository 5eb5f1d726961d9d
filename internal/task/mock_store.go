package task

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTaskStore implements the TaskStore interface for testing with an
// in-memory record table.
type MockTaskStore struct {
	mutex   sync.RWMutex
	records map[uuid.UUID]*Record

	SaveFn          func(ctx context.Context, task Task) error
	UpdateStatusFn  func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
	ScheduleRetryFn func(ctx context.Context, taskID uuid.UUID, attempts int, errorMsg string) error
}

// NewMockTaskStore creates a new MockTaskStore with default implementations
func NewMockTaskStore() *MockTaskStore {
	store := &MockTaskStore{
		records: make(map[uuid.UUID]*Record),
	}

	store.SaveFn = func(ctx context.Context, task Task) error {
		now := time.Now().UTC()
		store.Put(Record{
			ID:        task.ID(),
			Type:      task.Type(),
			Payload:   task.Payload(),
			Status:    task.Status(),
			CreatedAt: now,
			UpdatedAt: now,
		})
		return nil
	}

	store.UpdateStatusFn = func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
		store.mutex.Lock()
		defer store.mutex.Unlock()

		record, exists := store.records[taskID]
		if !exists {
			return nil // Simulate "not found" as a no-op for testing simplicity
		}
		record.Status = status
		record.ErrorMessage = errorMsg
		record.UpdatedAt = time.Now().UTC()
		return nil
	}

	store.ScheduleRetryFn = func(ctx context.Context, taskID uuid.UUID, attempts int, errorMsg string) error {
		store.mutex.Lock()
		defer store.mutex.Unlock()

		record, exists := store.records[taskID]
		if !exists {
			return nil
		}
		record.Status = TaskStatusPending
		record.Attempts = attempts
		record.ErrorMessage = errorMsg
		record.UpdatedAt = time.Now().UTC()
		return nil
	}

	return store
}

// Put inserts or replaces a record directly.
func (s *MockTaskStore) Put(record Record) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	copied := record
	s.records[record.ID] = &copied
}

// Record returns a copy of the stored record.
func (s *MockTaskStore) Record(id uuid.UUID) (Record, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *record, true
}

// SaveTask persists a task to the mock store
func (s *MockTaskStore) SaveTask(ctx context.Context, task Task) error {
	return s.SaveFn(ctx, task)
}

// UpdateTaskStatus updates the status of a task in the mock store
func (s *MockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
}

// ScheduleRetry records a retry in the mock store
func (s *MockTaskStore) ScheduleRetry(ctx context.Context, taskID uuid.UUID, attempts int, errorMsg string) error {
	return s.ScheduleRetryFn(ctx, taskID, attempts, errorMsg)
}

// GetTask returns a copy of a stored record
func (s *MockTaskStore) GetTask(ctx context.Context, taskID uuid.UUID) (*Record, error) {
	record, ok := s.Record(taskID)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &record, nil
}

// GetPendingTasks retrieves all tasks with "pending" status
func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

// GetProcessingTasks retrieves tasks with "processing" status
func (s *MockTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *MockTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []Record {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := time.Now().UTC()
	var records []Record
	for _, record := range s.records {
		if record.Status != status {
			continue
		}
		// If olderThan is zero, include all records in the status
		if olderThan == 0 || now.Sub(record.UpdatedAt) > olderThan {
			records = append(records, *record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.Before(records[j].CreatedAt) })
	return records
}

// WithTx implements TaskStore.WithTx for the mock store
// In the mock implementation, we just return the same store instance
func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}
