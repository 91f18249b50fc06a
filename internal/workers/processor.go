package workers

import (
	"context"
	"fmt"

	"github.com/calebrosario/pregame/internal/models"
	"github.com/calebrosario/pregame/internal/storage"
)

// Processor records each snapshotted game in the store so predictions and
// settlement always have a game row to attach to.
type Processor struct {
	store storage.Store
}

func NewProcessor(store storage.Store) *Processor {
	return &Processor{store: store}
}

// Handle upserts the snapshot's game. General markets carry no matchup and
// are skipped.
func (p *Processor) Handle(ctx context.Context, snap *models.MarketSnapshot) error {
	m := snap.Market
	if m.Matchup.IsGeneral() {
		return nil
	}

	game := storage.Game{
		EventTicker: m.EventTicker,
		Sport:       snap.Sport,
		HomeTeam:    m.Matchup.Home,
		AwayTeam:    m.Matchup.Away,
	}
	if !m.GameDate.IsZero() {
		d := m.GameDate
		game.GameDate = &d
	}
	if !m.CloseTime.IsZero() {
		c := m.CloseTime
		game.CloseDate = &c
	}

	if _, err := p.store.UpsertGame(ctx, game); err != nil {
		return fmt.Errorf("upsert game %s: %w", m.EventTicker, err)
	}
	return nil
}
