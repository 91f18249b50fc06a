package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calebrosario/pregame/internal/cache"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/odds"
	"github.com/calebrosario/pregame/internal/oddsfeed"
	"github.com/calebrosario/pregame/internal/sports"
)

func (s *Server) handleEventOdds(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.sportConfig(w, r)
	if !ok {
		return
	}
	eventTicker := chi.URLParam(r, "eventTicker")

	event, err := s.findEvent(r.Context(), cfg, eventTicker)
	if err != nil {
		respondError(w, http.StatusBadGateway, "market feed unavailable", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found (may have closed)", nil)
		return
	}
	if event.Matchup.IsGeneral() {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"event_ticker": eventTicker,
			"available":    true,
			"matched":      false,
			"reason":       "market has no team matchup",
		})
		return
	}

	if s.oddsClient == nil || !s.oddsClient.Enabled() {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"event_ticker": eventTicker,
			"available":    false,
			"reason":       "sportsbook odds not configured",
		})
		return
	}

	events, fetchedAt, err := s.oddsEvents(r.Context(), cfg)
	if err != nil {
		respondError(w, http.StatusBadGateway, "odds feed unavailable", err)
		return
	}

	game := oddsfeed.FindGame(events, event.Matchup.Away, event.Matchup.Home)
	if game == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"event_ticker": eventTicker,
			"matchup":      event.Matchup.Label(),
			"available":    true,
			"matched":      false,
			"fetched_at":   fetchedAt,
		})
		return
	}

	quotes := game.Quotes(event.Matchup.Away, event.Matchup.Home)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event_ticker": eventTicker,
		"matchup":      event.Matchup.Label(),
		"available":    true,
		"matched":      true,
		"consensus":    odds.Aggregate(quotes),
		"quotes":       quotes,
		"fetched_at":   fetchedAt,
	})
}

// oddsEvents returns the sport's odds events, refetching when the cached
// record is older than oddsMaxAge. A failed refetch falls back to whatever
// stale record is still cached.
func (s *Server) oddsEvents(ctx context.Context, cfg *sports.Config) ([]oddsfeed.Event, time.Time, error) {
	var stale *cache.OddsRecord
	now := time.Now().UTC()

	if s.oddsCache != nil {
		record, ok, err := s.oddsCache.Get(ctx, string(cfg.Sport))
		if err != nil {
			logging.Warnf("[server] odds cache get %s: %v", cfg.Sport, err)
		} else if ok {
			if record.FreshFor(s.oddsMaxAge, now) {
				return record.Events, record.FetchedAt, nil
			}
			stale = record
		}
	}

	events, err := s.oddsClient.Events(ctx, cfg.OddsKey, 0)
	if err != nil {
		if stale != nil {
			logging.Warnf("[server] odds fetch %s failed, serving stale from %s: %v", cfg.Sport, stale.FetchedAt.Format(time.RFC3339), err)
			return stale.Events, stale.FetchedAt, nil
		}
		return nil, time.Time{}, err
	}

	if s.oddsCache != nil {
		record := cache.OddsRecord{
			Sport:     string(cfg.Sport),
			Events:    events,
			FetchedAt: now,
		}
		if err := s.oddsCache.Set(ctx, string(cfg.Sport), record); err != nil {
			logging.Warnf("[server] odds cache set %s: %v", cfg.Sport, err)
		}
	}
	return events, now, nil
}
