package cache

import (
	"anamnese/internal/engine"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// InsightCache is a look-aside cache of composed insights keyed by a hash of
// the answer set and template version
type InsightCache interface {
	Get(ctx context.Context, tenantID, hash string) (*engine.Insight, error)
	Set(ctx context.Context, tenantID, hash string, insight engine.Insight) error
}

type insightCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInsightCache creates a new insight cache
func NewInsightCache(client *redis.Client, ttl time.Duration) InsightCache {
	return &insightCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *insightCache) key(tenantID, hash string) string {
	return fmt.Sprintf("tenant:%s:insight:%s", tenantID, hash)
}

func (c *insightCache) Get(ctx context.Context, tenantID, hash string) (*engine.Insight, error) {
	data, err := c.client.Get(ctx, c.key(tenantID, hash)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var insight engine.Insight
	if err := json.Unmarshal(data, &insight); err != nil {
		return nil, err
	}
	return &insight, nil
}

func (c *insightCache) Set(ctx context.Context, tenantID, hash string, insight engine.Insight) error {
	data, err := json.Marshal(insight)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(tenantID, hash), data, c.ttl).Err()
}
