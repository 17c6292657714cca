// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// html.go provides a Valkey-backed cache of rendered post bodies. Keys embed
// a hash of the Markdown source, so an edited post never hits a stale entry
// and no invalidation is needed.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// htmlKeyPrefix is the Valkey key prefix for rendered post bodies.
	htmlKeyPrefix = "post-html:"

	// DefaultHTMLTTL is how long a rendered body stays cached.
	DefaultHTMLTTL = 24 * time.Hour
)

// HTMLCache stores rendered Markdown in Valkey. A nil *HTMLCache, or one
// without a client, is valid and always misses.
type HTMLCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHTMLCache creates a new HTML cache backed by the given Valkey client.
func NewHTMLCache(client *redis.Client, ttl time.Duration) *HTMLCache {
	if ttl == 0 {
		ttl = DefaultHTMLTTL
	}
	return &HTMLCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML. Errors are logged and reported as a miss.
func (c *HTMLCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, htmlKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		slog.Warn("html cache get error", "key", key, "error", err)
		return "", false
	}
	slog.Debug("html cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML with the configured TTL.
func (c *HTMLCache) Set(ctx context.Context, key, html string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, htmlKeyPrefix+key, html, c.ttl).Err(); err != nil {
		slog.Warn("html cache set error", "key", key, "error", err)
	}
}

// PostKey returns the cache key for a post body: the post id plus the
// SHA-256 of its Markdown source.
func PostKey(id uuid.UUID, source string) string {
	sum := sha256.Sum256([]byte(source))
	return id.String() + ":" + hex.EncodeToString(sum[:])
}
