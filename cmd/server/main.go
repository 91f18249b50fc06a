package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/calebrosario/pregame/internal/cache"
	"github.com/calebrosario/pregame/internal/espn"
	"github.com/calebrosario/pregame/internal/kalshi"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/oddsfeed"
	"github.com/calebrosario/pregame/internal/server"
	"github.com/calebrosario/pregame/internal/storage"
	"github.com/calebrosario/pregame/internal/storage/postgres"
	sqlstore "github.com/calebrosario/pregame/internal/storage/sqlite"
	"github.com/calebrosario/pregame/internal/summary"
	"github.com/calebrosario/pregame/internal/websocket"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := mustStore(ctx)
	defer store.Close()

	marketCache, oddsCache, summaryCache := buildCaches()

	hub := websocket.NewHub(envInt("WS_MAX_CONNECTIONS", 1000))
	go hub.Run(ctx)

	srv := server.New(server.Config{
		Kalshi:       kalshi.NewClient(kalshi.Config{BaseURL: os.Getenv("KALSHI_BASE_URL")}),
		Markets:      marketCache,
		Odds:         oddsfeed.NewClient(oddsfeed.Config{BaseURL: os.Getenv("ODDS_API_BASE_URL"), APIKey: os.Getenv("ODDS_API_KEY")}),
		OddsCache:    oddsCache,
		ESPN:         espn.NewClient(espn.Config{BaseURL: os.Getenv("ESPN_BASE_URL")}),
		Summaries:    summary.NewService(buildProviders()...),
		SummaryCache: summaryCache,
		Store:        store,
		Hub:          hub,
		CORSOrigins:  splitCSV(os.Getenv("CORS_ORIGINS")),
	})

	refresh := time.Duration(envInt("REFRESH_INTERVAL_SECONDS", 60)) * time.Second
	go srv.RunRefresher(ctx, refresh)

	port := envString("PORT", "8000")
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logging.Infof("[server] listening on :%s", port)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("[server] listen: %v", err)
		}
	case <-ctx.Done():
		logging.Infof("[server] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Errorf("[server] graceful shutdown failed: %v", err)
			httpServer.Close()
		}
	}
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
		logging.Fatalf("[server] open store: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		logging.Fatalf("[server] init store: %v", err)
	}
	return store
}

// buildCaches connects the three Redis caches, or returns nils when no
// Redis is configured so every request serves live.
func buildCaches() (cache.MarketCache, cache.OddsCache, cache.SummaryCache) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logging.Warnf("[server] REDIS_ADDR not set; serving without caches")
		return nil, nil, nil
	}
	password := os.Getenv("REDIS_PASSWORD")
	db := envInt("REDIS_DB", 0)

	marketCache, err := cache.NewRedisMarketCache(addr, password, db, 0, "")
	if err != nil {
		logging.Fatalf("[server] market cache: %v", err)
	}
	oddsCache, err := cache.NewRedisOddsCache(addr, password, db, 0, "")
	if err != nil {
		logging.Fatalf("[server] odds cache: %v", err)
	}
	summaryCache, err := cache.NewRedisSummaryCache(addr, password, db, 0, "")
	if err != nil {
		logging.Fatalf("[server] summary cache: %v", err)
	}
	return marketCache, oddsCache, summaryCache
}

func buildProviders() []summary.Provider {
	var providers []summary.Provider
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		p, err := summary.NewOpenAIProvider(key, os.Getenv("OPENAI_MODEL"))
		if err != nil {
			logging.Errorf("[server] openai provider: %v", err)
		} else {
			providers = append(providers, p)
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		p, err := summary.NewGeminiProvider(key, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			logging.Errorf("[server] gemini provider: %v", err)
		} else {
			providers = append(providers, p)
		}
	}
	return providers
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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
