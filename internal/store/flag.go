package store

import (
	"context"

	"github.com/phrazzld/certs-api/internal/flags"
)

// FlagStore defines the interface for persisted feature flag states.
type FlagStore interface {
	// Snapshot returns every persisted flag state.
	Snapshot(ctx context.Context) (flags.Set, error)

	// SetActive persists the state of a flag.
	SetActive(ctx context.Context, flag flags.Flag, active bool) error
}
