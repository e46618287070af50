package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingPrefix = "pending:"

// StoredResponse is a replayable HTTP response
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
	// Fingerprint identifies the request body the key was first used with
	Fingerprint string `json:"fingerprint"`
}

// IdempotencyCache deduplicates retried requests by Idempotency-Key
type IdempotencyCache interface {
	// Claim marks key as in flight for a request body with the given
	// fingerprint. It returns false when the key is already claimed or
	// completed
	Claim(ctx context.Context, key, fingerprint string) (bool, error)
	// Get returns the stored response, or pending=true while the first
	// request is still running. A pending entry carries only its
	// Fingerprint
	Get(ctx context.Context, key string) (resp *StoredResponse, pending bool, err error)
	Complete(ctx context.Context, key string, resp StoredResponse) error
	Release(ctx context.Context, key string) error
}

type idempotencyCache struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyCache creates a new idempotency cache
func NewIdempotencyCache(client *redis.Client, ttl time.Duration) IdempotencyCache {
	return &idempotencyCache{
		client:     client,
		ttl:        ttl,
		pendingTTL: time.Minute,
	}
}

func (c *idempotencyCache) key(key string) string {
	return fmt.Sprintf("idem:%s", key)
}

func (c *idempotencyCache) Claim(ctx context.Context, key, fingerprint string) (bool, error) {
	return c.client.SetNX(ctx, c.key(key), pendingPrefix+fingerprint, c.pendingTTL).Result()
}

func (c *idempotencyCache) Get(ctx context.Context, key string) (*StoredResponse, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if fp, ok := strings.CutPrefix(data, pendingPrefix); ok {
		return &StoredResponse{Fingerprint: fp}, true, nil
	}
	var resp StoredResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return nil, false, err
	}
	return &resp, false, nil
}

func (c *idempotencyCache) Complete(ctx context.Context, key string, resp StoredResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

func (c *idempotencyCache) Release(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
