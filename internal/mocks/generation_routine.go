package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/certs-api/internal/domain"
)

// GenerationCall records one GenerateUserCertificate invocation.
type GenerationCall struct {
	User      *domain.User
	CourseKey domain.CourseKey
	Extra     map[string]any
}

// MockGenerationRoutine implements certificates.GenerationRoutine for testing
type MockGenerationRoutine struct {
	GenerateFn func(ctx context.Context, user *domain.User, courseKey domain.CourseKey, extra map[string]any) error

	mu    sync.Mutex
	calls []GenerationCall
}

// GenerateUserCertificate records the call and runs GenerateFn when set.
func (m *MockGenerationRoutine) GenerateUserCertificate(
	ctx context.Context,
	user *domain.User,
	courseKey domain.CourseKey,
	extra map[string]any,
) error {
	m.mu.Lock()
	m.calls = append(m.calls, GenerationCall{User: user, CourseKey: courseKey, Extra: extra})
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, user, courseKey, extra)
	}
	return nil
}

// Calls returns every recorded invocation.
func (m *MockGenerationRoutine) Calls() []GenerationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerationCall(nil), m.calls...)
}
