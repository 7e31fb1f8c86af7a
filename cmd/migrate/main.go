// Command migrate runs schema operations for the study database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"strings"

	"truthfeed/internal/config"
	"truthfeed/internal/database"
	"truthfeed/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|auto|status|down> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	ctx := observability.WithCorrelationID(context.Background(), observability.GenerateCorrelationID())
	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if cfg.DBDriver == config.DriverSQLite {
			return fmt.Errorf("sql migrations target postgres; use 'auto' for sqlite")
		}
		if err := database.RunMigrations(ctx, db, logger); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		logger.InfoContext(ctx, "sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg, logger); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		logger.InfoContext(ctx, "automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg, logger)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		logger.InfoContext(ctx, "schema status",
			slog.String("mode", status.Mode),
			slog.String("env", status.Environment),
			slog.Bool("run_sql", status.WillRunSQL),
			slog.Bool("run_auto", status.WillRunAutoMigrate),
			slog.Int("applied", len(status.AppliedVersions)),
			slog.Int("pending", len(status.PendingMigrations)),
		)
		for _, m := range status.PendingMigrations {
			logger.InfoContext(ctx, "pending migration", slog.String("migration", m.String()))
		}
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: go run ./cmd/migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, logger, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		logger.InfoContext(ctx, "rolled back migration", slog.Int("version", version))
	default:
		return usage()
	}

	return nil
}
