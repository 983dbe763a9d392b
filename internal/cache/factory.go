package cache

import (
	"context"
	"fmt"

	"github.com/conduit-lang/schemascan/internal/cli/config"
)

// New builds the Store named by cfg.Backend. It returns nil, nil for "none".
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	opts := DefaultOptions()
	if cfg.TTL > 0 {
		opts.DefaultTTL = cfg.TTL
	}
	if cfg.Prefix != "" {
		opts.Prefix = cfg.Prefix
	}

	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(opts), nil
	case "redis":
		return NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Options:  opts,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}
