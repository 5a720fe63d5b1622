package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	dashboardOverviewKey = "sari:dashboard:overview"
)

// Cache is a thin JSON cache over redis. A nil *Cache is valid and caches nothing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logrus.FieldLogger
}

// NewCache returns nil when client is nil, so callers can pass the result straight on
func NewCache(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Enabled reports whether values are actually cached
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// getJSON decodes the cached value at key into dest, reporting whether it was a hit
func (c *Cache) getJSON(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache entry is corrupt")
		return false
	}
	return true
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// InvalidateDashboard drops cached dashboard aggregates after a write
func (c *Cache) InvalidateDashboard(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, dashboardOverviewKey).Err(); err != nil {
		c.logger.WithError(err).Warn("cache invalidation failed")
	}
}
