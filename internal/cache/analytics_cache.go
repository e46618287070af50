package cache

import (
	"anamnese/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnalyticsCache holds computed template stats for a short time
type AnalyticsCache interface {
	GetTemplateStats(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error)
	SetTemplateStats(ctx context.Context, stats *model.TemplateStats) error
	Invalidate(ctx context.Context, tenantID, templateID string) error
}

type analyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalyticsCache creates a new analytics cache
func NewAnalyticsCache(client *redis.Client) AnalyticsCache {
	return &analyticsCache{
		client: client,
		ttl:    5 * time.Minute,
	}
}

func (c *analyticsCache) key(tenantID, templateID string) string {
	return fmt.Sprintf("tenant:%s:template:%s:stats", tenantID, templateID)
}

func (c *analyticsCache) GetTemplateStats(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	data, err := c.client.Get(ctx, c.key(tenantID, templateID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats model.TemplateStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *analyticsCache) SetTemplateStats(ctx context.Context, stats *model.TemplateStats) error {
	stats.UpdatedAt = time.Now()
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(stats.TenantID, stats.TemplateID), data, c.ttl).Err()
}

func (c *analyticsCache) Invalidate(ctx context.Context, tenantID, templateID string) error {
	return c.client.Del(ctx, c.key(tenantID, templateID)).Err()
}
