package models

import (
	"time"

	"github.com/calebrosario/pregame/internal/markets"
)

// MarketSnapshot is the payload placed on the snapshots topic: one combined
// game market for one sport at one capture instant.
type MarketSnapshot struct {
	Sport      string                 `json:"sport"`
	Market     markets.CombinedMarket `json:"market"`
	CapturedAt time.Time              `json:"captured_at"`
}

// NewSnapshot stamps one combined market for publication.
func NewSnapshot(sport string, market markets.CombinedMarket, capturedAt time.Time) MarketSnapshot {
	return MarketSnapshot{
		Sport:      sport,
		Market:     market,
		CapturedAt: capturedAt,
	}
}
