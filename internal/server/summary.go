package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calebrosario/pregame/internal/cache"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/markets"
	"github.com/calebrosario/pregame/internal/sports"
	"github.com/calebrosario/pregame/internal/summary"
)

func (s *Server) handleEventSummary(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.sportConfig(w, r)
	if !ok {
		return
	}
	eventTicker := chi.URLParam(r, "eventTicker")

	if s.summaryCache != nil {
		record, found, err := s.summaryCache.Get(r.Context(), eventTicker)
		if err != nil {
			logging.Warnf("[server] summary cache get %s: %v", eventTicker, err)
		} else if found {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"event_ticker": eventTicker,
				"summary":      record.Text,
				"provider":     record.Provider,
				"cached":       true,
				"created_at":   record.CreatedAt,
			})
			return
		}
	}

	event, err := s.findEvent(r.Context(), cfg, eventTicker)
	if err != nil {
		respondError(w, http.StatusBadGateway, "market feed unavailable", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found (may have closed)", nil)
		return
	}

	req := s.summaryRequest(r.Context(), cfg, *event)
	text, provider := summary.Fallback(req), "fallback"
	if s.summaries != nil {
		text, provider = s.summaries.Summarize(r.Context(), req)
	}
	now := time.Now().UTC()

	if s.summaryCache != nil {
		record := cache.SummaryRecord{
			Text:      text,
			Provider:  provider,
			CreatedAt: now,
		}
		if err := s.summaryCache.Set(r.Context(), eventTicker, record); err != nil {
			logging.Warnf("[server] summary cache set %s: %v", eventTicker, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event_ticker": eventTicker,
		"summary":      text,
		"provider":     provider,
		"cached":       false,
		"created_at":   now,
	})
}

// summaryRequest assembles the facts a summary may cite. The sportsbook
// consensus comes only from an already-fresh odds cache entry; the summary
// path never triggers an odds fetch of its own.
func (s *Server) summaryRequest(ctx context.Context, cfg *sports.Config, event markets.CombinedMarket) summary.Request {
	matchup := event.Matchup.Label()
	if event.Matchup.IsGeneral() {
		matchup = event.DisplayName
	}
	primary := primarySide(event)

	req := summary.Request{
		Matchup:     matchup,
		Sport:       cfg.DisplayName,
		Probability: primary.Probability,
		Volume24h:   event.Volume,
	}
	if !event.GameDate.IsZero() {
		req.GameDate = event.GameDate.Format("Jan 2, 2006")
	}
	if !event.Matchup.IsGeneral() && primary.Team != "" {
		req.SportsbookProb = s.sportsbookConsensus(ctx, cfg, event, primary.Team)
	}
	return req
}
