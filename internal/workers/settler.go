package workers

import (
	"context"
	"errors"
	"time"

	"github.com/calebrosario/pregame/internal/espn"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/sports"
	"github.com/calebrosario/pregame/internal/storage"
)

// Settler grades finished games. Each sweep takes the unsettled games whose
// close has passed, looks up the final from the stats feed, and records
// winner and scores; the store then marks every prediction on the game
// correct or not.
type Settler struct {
	store storage.Store
	espn  *espn.Client
}

func NewSettler(store storage.Store, espnClient *espn.Client) *Settler {
	return &Settler{store: store, espn: espnClient}
}

// Run sweeps immediately and then on the interval until the context ends.
func (s *Settler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		settled, err := s.SweepOnce(ctx)
		if err != nil {
			logging.Errorf("[settler] sweep: %v", err)
		} else if settled > 0 {
			logging.Infof("[settler] settled %d games", settled)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce runs one settlement pass and reports how many games it settled.
// Games that are due but still show as in progress upstream stay pending for
// the next sweep.
func (s *Settler) SweepOnce(ctx context.Context) (int, error) {
	games, err := s.store.PendingGames(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	settled := 0
	for _, game := range games {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		if !due(game, now) {
			continue
		}

		done, err := s.settle(ctx, game)
		if err != nil {
			if errors.Is(err, espn.ErrGameNotFound) {
				logging.Debugf("[settler] %s: %v", game.EventTicker, err)
			} else {
				logging.Warnf("[settler] %s: %v", game.EventTicker, err)
			}
			continue
		}
		if done {
			settled++
		}
	}
	return settled, nil
}

func (s *Settler) settle(ctx context.Context, game storage.Game) (bool, error) {
	sport, err := sports.ParseSport(game.Sport)
	if err != nil {
		return false, err
	}
	cfg, err := sports.ForSport(sport)
	if err != nil {
		return false, err
	}

	var around time.Time
	if game.GameDate != nil {
		around = *game.GameDate
	} else if game.CloseDate != nil {
		around = *game.CloseDate
	}

	result, err := s.espn.FindGame(ctx, cfg, game.AwayTeam, game.HomeTeam, around)
	if err != nil {
		return false, err
	}
	if !result.Status.Completed {
		return false, nil
	}

	var winner string
	switch result.Winner {
	case "home":
		winner = game.HomeTeam
	case "away":
		winner = game.AwayTeam
	default:
		// No winner side on a completed game, likely a tie. Leave it for a
		// later data correction rather than grading predictions wrong.
		return false, nil
	}

	if err := s.store.SettleGame(ctx, game.EventTicker, winner, scoreOf(result.Home), scoreOf(result.Away)); err != nil {
		return false, err
	}
	logging.Infof("[settler] %s final: %s (%d-%d)", game.EventTicker, winner, scoreOf(result.Home), scoreOf(result.Away))
	return true, nil
}

// due reports whether the game's market should have closed by now. Games
// with no dates at all are never due; they cannot be located upstream
// anyway.
func due(game storage.Game, now time.Time) bool {
	if game.CloseDate != nil {
		return game.CloseDate.Before(now)
	}
	if game.GameDate != nil {
		return game.GameDate.Before(now)
	}
	return false
}

func scoreOf(c *espn.Competitor) int {
	if c == nil || c.Score == nil {
		return 0
	}
	return *c.Score
}
