package collectors

import (
	"context"
	"time"

	"github.com/calebrosario/pregame/internal/markets"
)

// FetchOptions control how much a collector pulls per run.
type FetchOptions struct {
	// Limit caps raw markets kept per sport. Zero keeps everything.
	Limit int
}

// Collector is implemented by per-source collectors.
type Collector interface {
	Name() string
	Fetch(ctx context.Context, opts FetchOptions) ([]SportMarkets, error)
}

// SportMarkets is one sport's combined markets from one collection pass.
type SportMarkets struct {
	Sport     string                   `json:"sport"`
	Combined  []markets.CombinedMarket `json:"combined"`
	FetchedAt time.Time                `json:"fetched_at"`
}
