package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calebrosario/pregame/internal/oddsfeed"
)

// OddsRecord is one sport's odds events plus the fetch timestamp. Records
// are kept well past freshness so a stale copy can be served when the feed
// is down; FreshFor decides whether a refetch is due.
type OddsRecord struct {
	Sport     string           `json:"sport"`
	Events    []oddsfeed.Event `json:"events"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// FreshFor reports whether the record is younger than maxAge.
func (r *OddsRecord) FreshFor(maxAge time.Duration, now time.Time) bool {
	if r == nil {
		return false
	}
	return now.Sub(r.FetchedAt) < maxAge
}

// OddsCache stores sportsbook odds per sport.
type OddsCache interface {
	Get(ctx context.Context, sport string) (*OddsRecord, bool, error)
	Set(ctx context.Context, sport string, record OddsRecord) error
	Close() error
}

type redisOddsCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisOddsCache builds a cache keyed by sport.
func NewRedisOddsCache(addr, password string, db int, ttl time.Duration, prefix string) (OddsCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "odds_events"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisOddsCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisOddsCache) key(sport string) string {
	return fmt.Sprintf("%s:%s", c.prefix, sport)
}

func (c *redisOddsCache) Get(ctx context.Context, sport string) (*OddsRecord, bool, error) {
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
	var record OddsRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisOddsCache) Set(ctx context.Context, sport string, record OddsRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(sport), payload, c.ttl).Err()
}

func (c *redisOddsCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
