package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aretw0/paddock/internal/config"
	"github.com/aretw0/paddock/pkg/adapters/ergast"
	"github.com/aretw0/paddock/pkg/adapters/file"
	"github.com/aretw0/paddock/pkg/adapters/memory"
	"github.com/aretw0/paddock/pkg/adapters/redis"
	"github.com/aretw0/paddock/pkg/adapters/sqlite"
	"github.com/aretw0/paddock/pkg/persistence/middleware"
	"github.com/aretw0/paddock/pkg/ports"
	"github.com/aretw0/paddock/pkg/session"
	"golang.org/x/time/rate"
)

// backend is the session storage selected by the config.
type backend struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
	// Purger is set for backends that keep expired rows until told to drop them.
	Purger purger
	close  func() error
}

type purger interface {
	Purge(ctx context.Context) (int64, error)
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Manager wraps the store in a session manager, with the distributed lock when there is one.
func (b *backend) Manager(cfg config.Config, logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker), session.WithLockTTL(cfg.Store.Redis.LockTTL))
	}
	return session.NewManager(b.Store, opts...)
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (*backend, error) {
	b, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.EncryptionKey == "" {
		return b, nil
	}
	mw, err := encryption(cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Store = middleware.Chain(b.Store, mw)
	return b, nil
}

func encryption(cfg config.StoreConfig) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.PreviousKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("store.previous_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(enc)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &backend{Store: memory.NewStore()}, nil

	case config.BackendFile:
		return &backend{Store: file.New(cfg.Path)}, nil

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
		s, err := sqlite.Open(ctx, cfg.SQLitePath, sqlite.WithTTL(cfg.TTL))
		if err != nil {
			return nil, err
		}
		return &backend{Store: s, Purger: s, close: s.Close}, nil

	case config.BackendRedis:
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.TTL),
		)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		return &backend{
			Store:  s,
			Locker: redis.NewLocker(s.Client(), s.Prefix()+"lock:"),
			close:  s.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

func newSource(cfg config.APIConfig, logger *slog.Logger) *ergast.Client {
	opts := []ergast.Option{
		ergast.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		ergast.WithUserAgent(cfg.UserAgent),
		ergast.WithLogger(logger),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, ergast.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))))
	}
	return ergast.New(cfg.BaseURL, opts...)
}
