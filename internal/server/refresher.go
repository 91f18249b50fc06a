package server

import (
	"context"
	"time"

	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/sports"
)

// RunRefresher rebroadcasts each sport's market list to websocket
// subscribers on an interval until ctx is cancelled. Sports nobody is
// subscribed to are skipped entirely.
func (s *Server) RunRefresher(ctx context.Context, interval time.Duration) {
	if s.hub == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts := s.hub.SubscriberCounts()
			for _, cfg := range sports.All() {
				if counts[string(cfg.Sport)] == 0 {
					continue
				}
				combined, _, err := s.combinedMarkets(ctx, cfg)
				if err != nil {
					logging.Warnf("[server] refresh %s markets: %v", cfg.Sport, err)
					continue
				}
				s.hub.Broadcast(cfg.Sport, combined)
			}
		}
	}
}
