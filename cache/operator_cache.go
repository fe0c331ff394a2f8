package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mobile-money-service/models"

	"github.com/redis/go-redis/v9"
)

// OperatorCache caches per-country operator lists in Redis.
type OperatorCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOperatorCache(client *redis.Client, ttl time.Duration) *OperatorCache {
	return &OperatorCache{client: client, ttl: ttl}
}

func (c *OperatorCache) getKey(country string) string {
	return fmt.Sprintf("operators:country:%s", strings.ToUpper(country))
}

// Get returns the cached operator list, or nil on a cache miss.
func (c *OperatorCache) Get(ctx context.Context, country string) ([]models.Operator, error) {
	data, err := c.client.Get(ctx, c.getKey(country)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var operators []models.Operator
	if err := json.Unmarshal([]byte(data), &operators); err != nil {
		return nil, err
	}
	return operators, nil
}

func (c *OperatorCache) Set(ctx context.Context, country string, operators []models.Operator) error {
	data, err := json.Marshal(operators)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.getKey(country), data, c.ttl).Err()
}
