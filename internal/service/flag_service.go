package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/certs-api/internal/flags"
	"github.com/phrazzld/certs-api/internal/store"
)

// FlagService builds the flag snapshot each request is evaluated against.
type FlagService struct {
	configured flags.Set
	flagStore  store.FlagStore
	registered func() []flags.Flag
	logger     *slog.Logger
}

// NewFlagService creates a FlagService. configured holds the overrides from
// configuration; flagStore may be nil when no database layer is wanted.
func NewFlagService(configured map[string]map[string]bool, flagStore store.FlagStore, logger *slog.Logger) *FlagService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlagService{
		configured: flags.FromNested(configured),
		flagStore:  flagStore,
		registered: flags.All,
		logger:     logger.With("component", "flag_service"),
	}
}

// Snapshot layers registered defaults, configuration overrides and persisted
// rows, later layers winning.
func (s *FlagService) Snapshot(ctx context.Context) (flags.Set, error) {
	snapshot := flags.NewSet(nil)
	for _, flag := range s.registered() {
		snapshot = snapshot.With(flag, false)
	}
	snapshot = snapshot.Merge(s.configured)

	if s.flagStore == nil {
		return snapshot, nil
	}

	persisted, err := s.flagStore.Snapshot(ctx)
	if err != nil {
		s.logger.Error("failed to load persisted feature flags", "error", err)
		return flags.Set{}, fmt.Errorf("failed to load feature flags: %w", err)
	}
	return snapshot.Merge(persisted), nil
}

// States evaluates every registered flag against the current snapshot.
func (s *FlagService) States(ctx context.Context) ([]flags.State, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return flags.Evaluate(snapshot, s.registered()), nil
}
