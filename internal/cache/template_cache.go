package cache

import (
	"anamnese/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TemplateCache keeps pinned template versions. Versions never change once
// written, so entries are only evicted by TTL
type TemplateCache interface {
	Get(ctx context.Context, tenantID, templateID string, version int) (*model.Template, error)
	Set(ctx context.Context, tpl *model.Template) error
}

type templateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTemplateCache creates a new template cache
func NewTemplateCache(client *redis.Client) TemplateCache {
	return &templateCache{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *templateCache) key(tenantID, templateID string, version int) string {
	return fmt.Sprintf("tenant:%s:template:%s:v%d", tenantID, templateID, version)
}

func (c *templateCache) Get(ctx context.Context, tenantID, templateID string, version int) (*model.Template, error) {
	data, err := c.client.Get(ctx, c.key(tenantID, templateID, version)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tpl model.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (c *templateCache) Set(ctx context.Context, tpl *model.Template) error {
	data, err := json.Marshal(tpl)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(tpl.TenantID, tpl.TemplateID, tpl.Version), data, c.ttl).Err()
}
