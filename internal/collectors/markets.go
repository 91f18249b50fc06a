package collectors

import (
	"context"
	"time"

	"github.com/calebrosario/pregame/internal/kalshi"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/markets"
	"github.com/calebrosario/pregame/internal/sports"
)

// MarketCollector pulls open markets for each configured sport and runs them
// through the normalization pipeline.
type MarketCollector struct {
	client *kalshi.Client
	cfgs   []*sports.Config
}

func NewMarketCollector(client *kalshi.Client, cfgs []*sports.Config) *MarketCollector {
	return &MarketCollector{client: client, cfgs: cfgs}
}

func (c *MarketCollector) Name() string {
	return "markets"
}

// Fetch returns one SportMarkets per sport that answered. A sport whose
// fetch fails is logged and skipped; an error comes back only when every
// sport failed.
func (c *MarketCollector) Fetch(ctx context.Context, opts FetchOptions) ([]SportMarkets, error) {
	out := make([]SportMarkets, 0, len(c.cfgs))
	var lastErr error

	for _, cfg := range c.cfgs {
		raws, err := c.client.OpenMarkets(ctx, cfg.SeriesTicker)
		if err != nil {
			lastErr = err
			logging.Errorf("[markets] %s fetch: %v", cfg.Sport, err)
			continue
		}
		if opts.Limit > 0 && len(raws) > opts.Limit {
			raws = raws[:opts.Limit]
		}

		norm := markets.NewNormalizer(cfg)
		normalized := make([]markets.NormalizedMarket, 0, len(raws))
		for _, raw := range raws {
			normalized = append(normalized, norm.Normalize(raw))
		}

		out = append(out, SportMarkets{
			Sport:     string(cfg.Sport),
			Combined:  markets.CombinePairs(normalized),
			FetchedAt: time.Now().UTC(),
		})
	}

	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}
