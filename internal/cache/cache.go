// Package cache is a small TTL cache persisted as one JSON file per key.
// Nothing is held in memory between calls, so separate CLI invocations share it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/newthinker/pricefeed/internal/core"
	"github.com/newthinker/pricefeed/internal/metrics"
	"github.com/newthinker/pricefeed/internal/storage/archive"
	"go.uber.org/zap"
)

const fileExt = ".json"

var keyReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// entry is the on-disk layout of one cache file.
type entry struct {
	CachedAt time.Time       `json:"_cached_at"`
	Data     json.RawMessage `json:"data"`
}

// Cache stores JSON payloads with a capture timestamp and a shared TTL.
type Cache struct {
	store   archive.Storage
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Registry
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithMetrics records lookups in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Cache) { c.metrics = reg }
}

// New opens a cache rooted at dir, creating the directory if needed.
func New(dir string, ttl time.Duration, opts ...Option) (*Cache, error) {
	store, err := archive.NewLocalFS(dir)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("opening cache dir: %w", err))
	}
	return NewWithStorage(store, ttl, opts...), nil
}

// NewWithStorage builds a cache over any archive backend.
func NewWithStorage(store archive.Storage, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the validity window of entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// FileName maps a logical key to its filesystem-safe file name.
func FileName(key string) string {
	return keyReplacer.Replace(key) + fileExt
}

// Get returns the payload stored under key. Missing, unreadable, corrupt and
// expired entries all report ok=false.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := c.store.Read(ctx, FileName(key))
	if err != nil {
		c.metrics.RecordCacheLookup("miss")
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || len(e.Data) == 0 || string(e.Data) == "null" {
		c.logger.Debug("ignoring corrupt cache entry", zap.String("key", key))
		c.metrics.RecordCacheLookup("corrupt")
		return nil, false
	}

	if c.now().Sub(e.CachedAt) > c.ttl {
		c.metrics.RecordCacheLookup("expired")
		return nil, false
	}

	c.metrics.RecordCacheLookup("hit")
	return e.Data, true
}

// Set replaces the entry for key with payload stamped with the current time.
func (c *Cache) Set(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding cache payload: %w", err)
	}
	raw, err := json.Marshal(entry{CachedAt: c.now(), Data: data})
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := c.store.Write(ctx, FileName(key), raw); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// Delete removes the entry for key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, FileName(key))
}

// Clear removes every cache file and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	paths, err := c.store.List(ctx, "")
	if err != nil {
		return 0, core.WrapError(core.ErrStorageFailed, err)
	}

	removed := 0
	for _, p := range paths {
		if path.Ext(p) != fileExt {
			continue
		}
		if err := c.store.Delete(ctx, p); err != nil {
			return removed, core.WrapError(core.ErrStorageFailed, err)
		}
		removed++
	}
	return removed, nil
}
