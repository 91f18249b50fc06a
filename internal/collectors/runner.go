package collectors

import (
	"context"
	"time"

	"github.com/calebrosario/pregame/internal/logging"
)

// RunLoop repeatedly fetches from a collector and hands results to handleFn.
// A non-positive interval polls continuously; rate limiting then falls to
// the collector's HTTP client.
func RunLoop(ctx context.Context, collector Collector, opts FetchOptions, interval time.Duration, handleFn func(context.Context, []SportMarkets) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results, err := collector.Fetch(ctx, opts)
		if err != nil {
			logging.Errorf("[%s] fetch failed: %v", collector.Name(), err)
		} else if handleFn != nil && len(results) > 0 {
			if err := handleFn(ctx, results); err != nil {
				logging.Errorf("[%s] handler error: %v", collector.Name(), err)
			}
		}

		if interval > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}
}
