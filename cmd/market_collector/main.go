package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/calebrosario/pregame/internal/cache"
	"github.com/calebrosario/pregame/internal/collectors"
	"github.com/calebrosario/pregame/internal/kafka"
	"github.com/calebrosario/pregame/internal/kalshi"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/models"
	"github.com/calebrosario/pregame/internal/queue"
	"github.com/calebrosario/pregame/internal/sports"
	"github.com/calebrosario/pregame/internal/storage"
	"github.com/calebrosario/pregame/internal/storage/postgres"
	sqlstore "github.com/calebrosario/pregame/internal/storage/sqlite"
	"github.com/calebrosario/pregame/internal/workers"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("MARKET_SNAPSHOT_TOPIC", kafka.DefaultSnapshotTopic)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[collector] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Errorf("[collector] ensure topic warning: %v", err)
	}
	cancelEnsure()

	writer := kafka.NewWriter(brokers, topic)
	defer writer.Close()

	store := mustStore(ctx)
	defer store.Close()
	tracker := workers.NewProcessor(store)

	marketCache := buildMarketCache()
	if marketCache != nil {
		defer marketCache.Close()
	}

	client := kalshi.NewClient(kalshi.Config{BaseURL: os.Getenv("KALSHI_BASE_URL")})
	cfgs := pickSports(os.Getenv("COLLECT_SPORTS"))
	collector := collectors.NewMarketCollector(client, cfgs)

	opts := collectors.FetchOptions{Limit: envInt("COLLECT_LIMIT", 0)}
	interval := time.Duration(envInt("COLLECT_INTERVAL_SECONDS", 600)) * time.Second

	logging.Infof("[collector] publishing %s every %s for %d sports", topic, interval, len(cfgs))
	collectors.RunLoop(ctx, collector, opts, interval, func(ctx context.Context, results []collectors.SportMarkets) error {
		for _, sm := range results {
			if marketCache != nil {
				record := cache.MarketRecord{
					Sport:     sm.Sport,
					Markets:   sm.Combined,
					UpdatedAt: sm.FetchedAt,
				}
				if err := marketCache.Set(ctx, sm.Sport, record); err != nil {
					logging.Errorf("[collector] cache set %s: %v", sm.Sport, err)
				}
			}

			for _, m := range sm.Combined {
				snap := models.NewSnapshot(sm.Sport, m, sm.FetchedAt)
				if err := tracker.Handle(ctx, &snap); err != nil {
					logging.Errorf("[collector] track %s: %v", m.EventTicker, err)
				}
			}

			if err := queue.PublishSnapshots(ctx, writer, sm.Sport, sm.Combined); err != nil {
				logging.Errorf("[collector] publish %s: %v", sm.Sport, err)
				continue
			}
			logging.Infof("[collector] %s: %d markets", sm.Sport, len(sm.Combined))
		}
		return nil
	})
}

func mustStore(ctx context.Context) storage.Store {
	var store storage.Store
	var err error
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		store, err = postgres.Open(dsn)
	} else {
		store, err = sqlstore.Open(os.Getenv("SQLITE_PATH"))
	}
	if err != nil {
		logging.Fatalf("[collector] open store: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		logging.Fatalf("[collector] init store: %v", err)
	}
	return store
}

func buildMarketCache() cache.MarketCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logging.Warnf("[collector] REDIS_ADDR not set; collecting without cache warm")
		return nil
	}
	ttl := time.Duration(envInt("MARKET_CACHE_TTL_SECONDS", 0)) * time.Second
	c, err := cache.NewRedisMarketCache(addr, os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB", 0), ttl, "")
	if err != nil {
		logging.Fatalf("[collector] market cache: %v", err)
	}
	return c
}

// pickSports parses a CSV like "nfl,nba"; empty means every configured
// sport.
func pickSports(raw string) []*sports.Config {
	if strings.TrimSpace(raw) == "" {
		return sports.All()
	}
	var cfgs []*sports.Config
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		sport, err := sports.ParseSport(name)
		if err != nil {
			logging.Fatalf("[collector] unknown sport %q", name)
		}
		cfg, err := sports.ForSport(sport)
		if err != nil {
			logging.Fatalf("[collector] unknown sport %q", name)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
