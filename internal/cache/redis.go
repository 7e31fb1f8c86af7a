// Package cache provides Redis caching utilities for static study content.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"truthfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Store is a JSON cache over Redis. A nil *Store, or one without a client,
// is a valid disabled cache: reads miss and writes are dropped.
type Store struct {
	client *redis.Client
	log    *slog.Logger
}

// NewStore wraps an existing client.
func NewStore(client *redis.Client, log *slog.Logger) *Store {
	if log == nil {
		log = observability.NopLogger()
	}
	if client != nil {
		client.AddHook(metricsHook{})
	}
	return &Store{client: client, log: log}
}

// Open connects to addr, which is either host:port or a redis:// URL. An
// empty address or an unreachable server yields a disabled store, so callers
// run without a cache rather than fail.
func Open(ctx context.Context, addr string, log *slog.Logger) *Store {
	if log == nil {
		log = observability.NopLogger()
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		log.Info("Redis not configured (continuing without cache)")
		return &Store{log: log}
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Warn("Redis connection warning: invalid REDIS_URL (continuing without cache)", slog.String("error", err.Error()))
			return &Store{log: log}
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis connection warning (continuing without cache)", slog.String("error", err.Error()))
		_ = client.Close()
		return &Store{log: log}
	}
	log.Info("Redis connected successfully")
	return NewStore(client, log)
}

// Enabled reports whether the store talks to a Redis server.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// Client returns the underlying client, or nil when disabled.
func (s *Store) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.client
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}
