package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calebrosario/pregame/internal/markets"
)

// MarketRecord is the latest combined-market list for one sport. The
// collector writes it, the API serves from it.
type MarketRecord struct {
	Sport     string                   `json:"sport"`
	Markets   []markets.CombinedMarket `json:"markets"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// MarketCache hands combined markets from the collector to the API.
type MarketCache interface {
	Get(ctx context.Context, sport string) (*MarketRecord, bool, error)
	Set(ctx context.Context, sport string, record MarketRecord) error
	Close() error
}

type redisMarketCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisMarketCache builds a cache keyed by sport.
func NewRedisMarketCache(addr, password string, db int, ttl time.Duration, prefix string) (MarketCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if prefix == "" {
		prefix = "markets"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisMarketCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisMarketCache) key(sport string) string {
	return fmt.Sprintf("%s:%s", c.prefix, sport)
}

func (c *redisMarketCache) Get(ctx context.Context, sport string) (*MarketRecord, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(sport)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record MarketRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisMarketCache) Set(ctx context.Context, sport string, record MarketRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sport), payload, c.ttl).Err()
}

func (c *redisMarketCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
