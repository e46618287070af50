package cache

import (
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RiskBoardCache ranks completed sessions of a tenant by each risk metric
type RiskBoardCache interface {
	Record(ctx context.Context, tenantID, sessionID string, risks engine.Risks) error
	GetTop(ctx context.Context, tenantID string, metric engine.RiskKey, limit int) ([]model.RiskBoardEntry, error)
	GetRank(ctx context.Context, tenantID string, metric engine.RiskKey, sessionID string) (int64, error)
}

type riskBoardCache struct {
	client *redis.Client
}

// NewRiskBoardCache creates a new risk board cache
func NewRiskBoardCache(client *redis.Client) RiskBoardCache {
	return &riskBoardCache{
		client: client,
	}
}

func (c *riskBoardCache) key(tenantID string, metric engine.RiskKey) string {
	return fmt.Sprintf("tenant:%s:risk:%s", tenantID, metric)
}

func (c *riskBoardCache) Record(ctx context.Context, tenantID, sessionID string, risks engine.Risks) error {
	pipe := c.client.TxPipeline()
	for _, k := range engine.RiskKeys {
		v, _ := risks.Get(k)
		pipe.ZAdd(ctx, c.key(tenantID, k), redis.Z{
			Score:  float64(v),
			Member: sessionID,
		})
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *riskBoardCache) GetTop(ctx context.Context, tenantID string, metric engine.RiskKey, limit int) ([]model.RiskBoardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(tenantID, metric), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.RiskBoardEntry, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries[i] = model.RiskBoardEntry{
			SessionID: member,
			Score:     int(z.Score),
			Rank:      i + 1,
		}
	}
	return entries, nil
}

func (c *riskBoardCache) GetRank(ctx context.Context, tenantID string, metric engine.RiskKey, sessionID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(tenantID, metric), sessionID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
