package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/urfave/cli/v2"

	"github.com/phrazzld/certs-api/internal/config"
	"github.com/phrazzld/certs-api/internal/platform/logger"
	"github.com/phrazzld/certs-api/internal/platform/postgres/migrations"
	"github.com/phrazzld/certs-api/internal/platform/riverqueue"
)

// migrationTableName is the goose version table.
const migrationTableName = "schema_migrations"

const (
	migrateUp     = "up"
	migrateDown   = "down"
	migrateStatus = "status"
)

func migrateCommand() *cli.Command {
	subcommand := func(name, usage string) *cli.Command {
		return &cli.Command{
			Name:  name,
			Usage: usage,
			Action: func(c *cli.Context) error {
				return runMigrateCommand(c, name)
			},
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: []*cli.Command{
			subcommand(migrateUp, "Apply every pending migration"),
			subcommand(migrateDown, "Roll back the latest migration"),
			subcommand(migrateStatus, "Print the state of every migration"),
		},
	}
}

func runMigrateCommand(c *cli.Context, command string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := setupAppDatabase(c.Context, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database connection", "error", err)
		}
	}()

	return runMigrations(c.Context, db, cfg, command, log)
}

// runMigrations runs a goose command over the embedded migrations. Applying
// migrations with the River backend also migrates the River schema.
func runMigrations(ctx context.Context, db *sql.DB, cfg *config.Config, command string, log *slog.Logger) error {
	log = log.With("component", "migrations", "command", command)

	if err := configureGoose(log); err != nil {
		return err
	}

	var err error
	switch command {
	case migrateUp:
		err = goose.UpContext(ctx, db, migrations.Dir)
	case migrateDown:
		err = goose.DownContext(ctx, db, migrations.Dir)
	case migrateStatus:
		err = goose.StatusContext(ctx, db, migrations.Dir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	if command == migrateUp && cfg.Task.Backend == backendRiver {
		pool, err := setupRiverPool(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := riverqueue.Migrate(ctx, pool, log); err != nil {
			return err
		}
	}

	log.Info("migration command completed")
	return nil
}

func configureGoose(log *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrationTableName)
	goose.SetLogger(&slogGooseLogger{logger: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// slogGooseLogger forwards goose output to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and does not exit; goose errors are returned
// to the command.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
