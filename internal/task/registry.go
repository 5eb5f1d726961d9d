package task

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownTaskType is returned when no factory is registered for a task type.
var ErrUnknownTaskType = errors.New("unknown task type")

// Factory rebuilds an executable task from its persisted id and payload.
type Factory func(id uuid.UUID, payload []byte) (Task, error)

// Registry maps task types to the factories that rebuild them.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to a task type, replacing any previous binding.
func (r *Registry) Register(taskType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = factory
}

// Rebuild creates an executable task for a persisted record.
func (r *Registry) Rebuild(record Record) (Task, error) {
	r.mu.RLock()
	factory, ok := r.factories[record.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, record.Type)
	}
	task, err := factory(record.ID, record.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild %s task %s: %w", record.Type, record.ID, err)
	}
	return task, nil
}
