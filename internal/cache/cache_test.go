// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, htmlKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	_, err := ConnectValkey("127.0.0.1", "1", "")
	if err == nil {
		t.Fatal("expected error for unreachable Valkey")
	}
	if !strings.Contains(err.Error(), "127.0.0.1:1") {
		t.Errorf("error should name the address: %v", err)
	}
}

func TestHTMLCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	hc := NewHTMLCache(client, time.Minute)

	ctx := context.Background()
	key := PostKey(uuid.New(), "# Hello")

	if _, ok := hc.Get(ctx, key); ok {
		t.Error("expected cache miss")
	}

	html := `<h1 id="hello">Hello</h1>`
	hc.Set(ctx, key, html)

	got, ok := hc.Get(ctx, key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != html {
		t.Errorf("data mismatch: got %q, want %q", got, html)
	}
}

func TestHTMLCacheNilIsMiss(t *testing.T) {
	var hc *HTMLCache
	ctx := context.Background()

	hc.Set(ctx, "k", "v")
	if _, ok := hc.Get(ctx, "k"); ok {
		t.Error("nil cache should always miss")
	}

	empty := NewHTMLCache(nil, 0)
	empty.Set(ctx, "k", "v")
	if _, ok := empty.Get(ctx, "k"); ok {
		t.Error("cache without client should always miss")
	}
}

func TestHTMLCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	hc := NewHTMLCache(client, time.Minute)
	hc.Set(context.Background(), "k", "v")
	if _, ok := hc.Get(context.Background(), "k"); ok {
		t.Error("unreachable Valkey should be reported as a miss")
	}
}

func TestPostKey(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	a := PostKey(id, "one")
	b := PostKey(id, "two")
	if a == b {
		t.Error("different sources must produce different keys")
	}
	if a != PostKey(id, "one") {
		t.Error("PostKey must be deterministic")
	}
	if !strings.HasPrefix(a, id.String()+":") || len(a) != len(id.String())+1+64 {
		t.Errorf("unexpected key %q", a)
	}
}

func TestNewHTMLCacheDefaultTTL(t *testing.T) {
	hc := NewHTMLCache(nil, 0)
	if hc.ttl != DefaultHTMLTTL {
		t.Errorf("expected DefaultHTMLTTL (%v), got %v", DefaultHTMLTTL, hc.ttl)
	}
}
