package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/conduit-lang/schemascan/internal/model"
)

// HashContent returns the hex SHA-256 of the concatenated parts, each
// length-prefixed so part boundaries affect the digest.
func HashContent(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		_, _ = fmt.Fprintf(h, "%d:", len(p))
		_, _ = h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ModelCache stores compressed models keyed by snapshot content, root and an
// options fingerprint
type ModelCache struct {
	store Store
	ttl   time.Duration
}

// NewModelCache wraps store
func NewModelCache(store Store, ttl time.Duration) *ModelCache {
	return &ModelCache{store: store, ttl: ttl}
}

// Key derives the cache key for one scan
func Key(snapshot []byte, root, fingerprint string) string {
	return "model:" + HashContent(snapshot, []byte(root), []byte(fingerprint))
}

// Get returns the cached model for key, or ErrMiss
func (c *ModelCache) Get(ctx context.Context, key string) (*model.Model, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	raw, err := model.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return model.Deserialize(raw)
}

// Put stores m under key
func (c *ModelCache) Put(ctx context.Context, key string, m *model.Model) error {
	raw, err := model.Serialize(m)
	if err != nil {
		return err
	}
	data, err := model.Compress(raw)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, key, data, c.ttl)
}

// GetOrScan returns the cached model for key, or calls scan and caches its
// result. A failing cache never fails the scan: the cache error is returned
// next to the scanned model.
func (c *ModelCache) GetOrScan(ctx context.Context, key string, scan func() (*model.Model, error)) (*model.Model, bool, error) {
	m, getErr := c.Get(ctx, key)
	if getErr == nil {
		return m, true, nil
	}
	if IsMiss(getErr) {
		getErr = nil
	}

	m, err := scan()
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(ctx, key, m); err != nil {
		return m, false, errors.Join(getErr, err)
	}
	return m, false, getErr
}

// Invalidate drops every cached model
func (c *ModelCache) Invalidate(ctx context.Context) error {
	return c.store.Clear(ctx)
}
