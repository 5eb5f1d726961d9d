// Package mocks provides mock implementations for testing task components.
package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/certs-api/internal/certificates"
)

// CertificateRunner is a mock implementation of task.CertificateRunner.
type CertificateRunner struct {
	RunFn func(ctx context.Context, req certificates.GenerationRequest) certificates.Outcome

	mu       sync.Mutex
	requests []certificates.GenerationRequest
}

// Run implements task.CertificateRunner. Without RunFn every attempt is delegated.
func (m *CertificateRunner) Run(ctx context.Context, req certificates.GenerationRequest) certificates.Outcome {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.RunFn != nil {
		return m.RunFn(ctx, req)
	}
	return certificates.Outcome{Kind: certificates.Delegated}
}

// Requests returns every request passed to Run.
func (m *CertificateRunner) Requests() []certificates.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]certificates.GenerationRequest(nil), m.requests...)
}
