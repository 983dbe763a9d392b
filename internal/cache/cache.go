// Package cache stores serialized scan results so unchanged snapshots are not
// rescanned. Backends share the Store interface; ModelCache layers model
// encoding and content-addressed keys on top.
package cache

import (
	"context"
	"errors"
	"time"
)

// Store is implemented by every cache backend
type Store interface {
	// Get retrieves a value, returning ErrMiss when absent or expired
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero ttl uses the backend default; a negative
	// ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Clear removes every key under the backend's prefix
	Clear(ctx context.Context) error

	Exists(ctx context.Context, key string) (bool, error)

	Close() error
}

// Options holds configuration shared by all backends
type Options struct {
	DefaultTTL time.Duration
	Prefix     string
}

// DefaultOptions returns the default backend options
func DefaultOptions() Options {
	return Options{
		DefaultTTL: 24 * time.Hour,
		Prefix:     "schemascan:",
	}
}

// ErrMiss is returned when a key is not present
var ErrMiss = errors.New("cache miss")

// IsMiss reports whether err is a cache miss
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
