// Package redisclient is the optional persistent cache.Backend: when
// REDIS_URL is configured, lookup results survive process restarts
// instead of starting cold every deploy.
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vigil-eol/advisor/cache"
)

type Client struct {
	c *redis.Client
}

// New creates a Redis client from a connection URL. Returns an error
// if the URL cannot be parsed.
func New(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return &Client{c: redis.NewClient(opt)}, nil
}

func (r *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.c.Ping(ctx).Err()
}

func (r *Client) Close() error { return r.c.Close() }

// Get implements cache.Backend. A missing key is reported via the
// bool return, not an error.
func (r *Client) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	raw, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, err
	}
	entry, err := cache.UnmarshalEntry(raw)
	if err != nil {
		return cache.Entry{}, false, err
	}
	return entry, true, nil
}

// Set implements cache.Backend, storing the entry with a Redis-side
// expiry matching Entry.ExpiresAt so stale rows self-clean.
func (r *Client) Set(ctx context.Context, key string, entry cache.Entry) error {
	raw, err := cache.MarshalEntry(entry)
	if err != nil {
		return err
	}
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.c.Set(ctx, key, raw, ttl).Err()
}

// Delete implements cache.Backend.
func (r *Client) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}

// DeleteByPrefix implements cache.PrefixDeleter using a non-blocking
// SCAN cursor rather than KEYS, so a large agent namespace doesn't
// stall the server during purge.
func (r *Client) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	var cursor uint64
	removed := 0
	for {
		keys, next, err := r.c.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			if err := r.c.Del(ctx, keys...).Err(); err != nil {
				return removed, err
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return removed, nil
}
