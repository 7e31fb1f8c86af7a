// Command seed populates the database with a study preset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"time"

	"truthfeed/internal/bootstrap"
	"truthfeed/internal/config"
	"truthfeed/internal/observability"
	"truthfeed/internal/seed"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	presetName := flag.String("preset", "example", "Embedded preset to apply")
	presetFile := flag.String("preset-file", "", "Path to a YAML preset (overrides -preset)")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "Seed for generated sources and participants")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	var preset *seed.Preset
	if *presetFile != "" {
		preset, err = seed.LoadPresetFile(*presetFile)
	} else {
		preset, err = seed.LoadPreset(*presetName)
	}
	if err != nil {
		return fmt.Errorf("load preset: %w", err)
	}

	ctx := observability.WithCorrelationID(context.Background(), observability.GenerateCorrelationID())
	rt, err := bootstrap.InitRuntime(ctx, cfg, logger, bootstrap.Options{
		ApplySchema: true,
		ServiceName: "truthfeed-seed",
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(ctx) }()

	res, err := seed.NewSeeder(rt.DB, seed.NewFactory(*seedValue), logger).SeedStudy(ctx, preset)
	if err != nil {
		return fmt.Errorf("seed preset %q: %w", preset.Name, err)
	}

	logger.InfoContext(ctx, "Seeding complete",
		slog.String("preset", preset.Name),
		slog.Uint64("study_id", uint64(res.Study.ID)),
		slog.Uint64("admin_id", uint64(res.Admin.ID)),
		slog.Int("sources", len(res.Sources)),
		slog.Int("participants", len(res.Participants)),
		slog.Int64("seed", *seedValue),
	)
	return nil
}
