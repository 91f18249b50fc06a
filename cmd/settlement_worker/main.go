package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/calebrosario/pregame/internal/espn"
	"github.com/calebrosario/pregame/internal/kafka"
	"github.com/calebrosario/pregame/internal/logging"
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
	group := envString("SETTLEMENT_WORKER_GROUP", "settlement-workers")
	workerCount := envInt("SETTLEMENT_WORKERS", 2)

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[settlement-worker] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Errorf("[settlement-worker] ensure topic warning: %v", err)
	}
	cancelEnsure()

	store := mustStore(ctx)
	defer store.Close()

	espnClient := espn.NewClient(espn.Config{BaseURL: os.Getenv("ESPN_BASE_URL")})
	settler := workers.NewSettler(store, espnClient)
	interval := time.Duration(envInt("SETTLE_INTERVAL_SECONDS", 600)) * time.Second
	go settler.Run(ctx, interval)

	processor := workers.NewProcessor(store)
	logging.Infof("[settlement-worker] consuming %s with group %s (%d workers)", topic, group, workerCount)
	workers.Run(ctx, brokers, topic, group, workerCount, processor.Handle)
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
		logging.Fatalf("[settlement-worker] open store: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		logging.Fatalf("[settlement-worker] init store: %v", err)
	}
	return store
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
