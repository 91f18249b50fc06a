package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calebrosario/pregame/internal/espn"
	"github.com/calebrosario/pregame/internal/logging"
)

func (s *Server) handleEventStats(w http.ResponseWriter, r *http.Request) {
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
			"matched":      false,
			"reason":       "market has no team matchup",
		})
		return
	}

	if s.espn == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"event_ticker": eventTicker,
			"matchup":      event.Matchup.Label(),
			"matched":      false,
			"reason":       "game stats not configured",
		})
		return
	}

	around := event.GameDate
	if around.IsZero() {
		around = event.CloseTime
	}
	if around.IsZero() {
		around = time.Now().UTC()
	}

	game, err := s.espn.FindGame(r.Context(), cfg, event.Matchup.Away, event.Matchup.Home, around)
	if err != nil {
		if !errors.Is(err, espn.ErrGameNotFound) {
			logging.Warnf("[server] espn lookup %s: %v", eventTicker, err)
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"event_ticker": eventTicker,
			"matchup":      event.Matchup.Label(),
			"matched":      false,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event_ticker": eventTicker,
		"matchup":      event.Matchup.Label(),
		"matched":      true,
		"game":         game,
	})
}
