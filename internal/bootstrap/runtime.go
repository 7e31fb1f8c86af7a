// Package bootstrap wires configuration, storage, cache and tracing for the
// commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"truthfeed/internal/cache"
	"truthfeed/internal/config"
	"truthfeed/internal/database"
	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/repository"

	"gorm.io/gorm"
)

// Version is reported as the tracing service version. Release builds set it
// with -ldflags "-X truthfeed/internal/bootstrap.Version=...".
var Version = "dev"

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs the configured schema policy after connecting.
	ApplySchema bool
	// EnsureRootAdmin creates admin 1 in development when it is missing.
	EnsureRootAdmin bool
	ServiceName     string
}

// Runtime is what a command needs to talk to storage.
type Runtime struct {
	Config *config.Config
	Log    *slog.Logger
	DB     *gorm.DB
	Cache  *cache.Store
	Repos  Repositories

	shutdownTracing func(context.Context) error
}

// Repositories are wired to the runtime's database, logger and cache.
type Repositories struct {
	Settings            repository.SettingsRepository
	Admins              repository.AdminUserRepository
	Studies             repository.StudyRepository
	Sources             repository.SourceRepository
	Participants        repository.ParticipantRepository
	Posts               repository.PostRepository
	Comments            repository.CommentRepository
	PostInteractions    repository.PostInteractionRepository
	CommentInteractions repository.CommentInteractionRepository
}

// NewRepositories builds every repository over db.
func NewRepositories(db *gorm.DB, log *slog.Logger, store *cache.Store) Repositories {
	opts := []repository.Option{repository.WithLogger(log), repository.WithCache(store)}
	return Repositories{
		Settings:            repository.NewSettingsRepository(db, opts...),
		Admins:              repository.NewAdminUserRepository(db, opts...),
		Studies:             repository.NewStudyRepository(db, opts...),
		Sources:             repository.NewSourceRepository(db, opts...),
		Participants:        repository.NewParticipantRepository(db, opts...),
		Posts:               repository.NewPostRepository(db, opts...),
		Comments:            repository.NewCommentRepository(db, opts...),
		PostInteractions:    repository.NewPostInteractionRepository(db, opts...),
		CommentInteractions: repository.NewCommentInteractionRepository(db, opts...),
	}
}

// InitRuntime connects to the database and Redis and starts tracing. Redis
// is optional: an unreachable server leaves the cache disabled.
func InitRuntime(ctx context.Context, cfg *config.Config, log *slog.Logger, opts Options) (*Runtime, error) {
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "truthfeed"
	}
	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rt := &Runtime{Config: cfg, Log: log, DB: db, shutdownTracing: shutdown}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg, log); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("schema apply failed: %w", err)
		}
	}
	if opts.EnsureRootAdmin {
		if err := ensureDevRootAdmin(ctx, cfg, db, log); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
		}
	}

	rt.Cache = cache.Open(ctx, cfg.RedisURL, log)
	rt.Repos = NewRepositories(db, log, rt.Cache)
	return rt, nil
}

// Close releases the database, cache and tracer.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.DB != nil {
		errs = append(errs, database.Close(r.DB))
	}
	if r.shutdownTracing != nil {
		errs = append(errs, r.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}

// ensureDevRootAdmin makes sure admin 1 exists in development, since the
// example study and the seed preset refer to it.
func ensureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB, log *slog.Logger) error {
	if cfg == nil || db == nil || cfg.Env != "development" {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.AdminUser
		findErr := tx.First(&root, 1).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.AdminUser{ID: 1, AccessRight: 1}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
			log.InfoContext(ctx, "Development root admin created", slog.Uint64("admin_id", 1))
		case findErr != nil:
			return findErr
		}

		// Explicit ID insertion leaves the PostgreSQL sequence behind.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`
				SELECT setval(
					pg_get_serial_sequence('admin_users', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 1) FROM admin_users), 1),
					true
				)
			`).Error; err != nil {
				return fmt.Errorf("failed to reset admin_users sequence: %w", err)
			}
		}
		return nil
	})
}
