package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SummaryRecord is a generated blurb for one event.
type SummaryRecord struct {
	Text      string    `json:"text"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryCache stores generated summaries so providers are not re-queried
// for every page load.
type SummaryCache interface {
	Get(ctx context.Context, eventTicker string) (*SummaryRecord, bool, error)
	Set(ctx context.Context, eventTicker string, record SummaryRecord) error
	Close() error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisSummaryCache builds a cache keyed by event ticker.
func NewRedisSummaryCache(addr, password string, db int, ttl time.Duration, prefix string) (SummaryCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if prefix == "" {
		prefix = "summary"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisSummaryCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisSummaryCache) key(eventTicker string) string {
	return fmt.Sprintf("%s:%s", c.prefix, eventTicker)
}

func (c *redisSummaryCache) Get(ctx context.Context, eventTicker string) (*SummaryRecord, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(eventTicker)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record SummaryRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, eventTicker string, record SummaryRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(eventTicker), payload, c.ttl).Err()
}

func (c *redisSummaryCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
