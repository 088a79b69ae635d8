package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPagePrefix = "livro:page:"

// PageCache keeps rendered public pages in Redis until they expire or are
// revalidated.
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewPageCache creates a PageCache whose entries live for ttl.
func NewPageCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *PageCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageCache{rdb: rdb, ttl: ttl, log: logger}
}

func pageKey(path string) string { return keyPagePrefix + path }

// Get returns the cached body of path, if any.
func (c *PageCache) Get(ctx context.Context, path string) ([]byte, bool, error) {
	body, err := c.rdb.Get(ctx, pageKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// Set stores body for path.
func (c *PageCache) Set(ctx context.Context, path string, body []byte) error {
	return c.rdb.Set(ctx, pageKey(path), body, c.ttl).Err()
}

// Invalidate drops path from the cache.
func (c *PageCache) Invalidate(ctx context.Context, path string) error {
	return c.rdb.Del(ctx, pageKey(path)).Err()
}

// Fetch serves path from the cache, building and storing it on a miss. A
// failing cache never hides the page: the built body is returned anyway.
func (c *PageCache) Fetch(ctx context.Context, path string, build func(context.Context) (interface{}, error)) ([]byte, error) {
	if body, ok, err := c.Get(ctx, path); err != nil {
		c.log.Warn("page cache read failed", zap.String("path", path), zap.Error(err))
	} else if ok {
		return body, nil
	}

	page, err := build(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(page)
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, path, body); err != nil {
		c.log.Warn("page cache write failed", zap.String("path", path), zap.Error(err))
	}
	return body, nil
}
