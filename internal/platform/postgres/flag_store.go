package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/certs-api/internal/flags"
	"github.com/phrazzld/certs-api/internal/platform/logger"
	"github.com/phrazzld/certs-api/internal/store"
)

// PostgresFlagStore implements store.FlagStore over the feature_flags table.
type PostgresFlagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlagStore creates a new PostgresFlagStore.
func NewPostgresFlagStore(db store.DBTX, logger *slog.Logger) *PostgresFlagStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFlagStore{
		db:     db,
		logger: logger.With(slog.String("component", "flag_store")),
	}
}

var _ store.FlagStore = (*PostgresFlagStore)(nil)

// Snapshot implements store.FlagStore.Snapshot. Rows for flags that are no
// longer registered are carried in the set but never consulted.
func (s *PostgresFlagStore) Snapshot(ctx context.Context) (flags.Set, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT namespace, name, active FROM feature_flags`)
	if err != nil {
		log.Error("failed to query feature flags", slog.String("error", err.Error()))
		return flags.Set{}, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	values := make(map[string]map[string]bool)
	for rows.Next() {
		var (
			namespace, name string
			active          bool
		)
		if err := rows.Scan(&namespace, &name, &active); err != nil {
			return flags.Set{}, fmt.Errorf("failed to scan feature flag row: %w", err)
		}
		if values[namespace] == nil {
			values[namespace] = make(map[string]bool)
		}
		values[namespace][name] = active
	}
	if err := rows.Err(); err != nil {
		return flags.Set{}, fmt.Errorf("error iterating feature flag rows: %w", err)
	}

	return flags.FromNested(values), nil
}

// SetActive implements store.FlagStore.SetActive
func (s *PostgresFlagStore) SetActive(ctx context.Context, flag flags.Flag, active bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO feature_flags (namespace, name, active, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, name) DO UPDATE SET
			active = EXCLUDED.active,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, flag.Namespace(), flag.Name(), active); err != nil {
		log.Error("failed to set feature flag",
			slog.String("error", err.Error()),
			slog.String("flag", flag.Key()))
		return MapError(err)
	}

	log.Info("feature flag updated", slog.String("flag", flag.Key()), slog.Bool("active", active))
	return nil
}
