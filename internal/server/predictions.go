package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/calebrosario/pregame/internal/markets"
	"github.com/calebrosario/pregame/internal/odds"
	"github.com/calebrosario/pregame/internal/oddsfeed"
	"github.com/calebrosario/pregame/internal/sports"
	"github.com/calebrosario/pregame/internal/storage"
)

type predictionRequest struct {
	SessionID       string  `json:"session_id"`
	Sport           string  `json:"sport"`
	EventTicker     string  `json:"event_ticker"`
	PredictedWinner string  `json:"predicted_winner"`
	Confidence      float64 `json:"confidence"`
}

func (s *Server) handleCreatePrediction(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "prediction store not configured", nil)
		return
	}

	var body predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.EventTicker == "" || body.PredictedWinner == "" {
		respondError(w, http.StatusBadRequest, "event_ticker and predicted_winner are required", nil)
		return
	}
	if body.Confidence <= 0 || body.Confidence > 100 {
		respondError(w, http.StatusBadRequest, "confidence must be between 0 and 100", nil)
		return
	}
	sport, err := sports.ParseSport(body.Sport)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown sport: "+body.Sport, nil)
		return
	}
	cfg, err := sports.ForSport(sport)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown sport: "+body.Sport, nil)
		return
	}

	event, err := s.findEvent(r.Context(), cfg, body.EventTicker)
	if err != nil {
		respondError(w, http.StatusBadGateway, "market feed unavailable", err)
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "event not found (may have closed)", nil)
		return
	}
	if event.Matchup.IsGeneral() {
		respondError(w, http.StatusBadRequest, "market has no team matchup to predict", nil)
		return
	}
	if body.PredictedWinner != event.Matchup.Away && body.PredictedWinner != event.Matchup.Home {
		respondError(w, http.StatusBadRequest, "predicted_winner must be one of the matchup teams", nil)
		return
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	input := storage.PredictionInput{
		SessionID:           sessionID,
		Game:                gameFromMarket(string(sport), *event),
		PredictedWinner:     body.PredictedWinner,
		Confidence:          body.Confidence,
		MarketProbability:   teamProbability(*event, body.PredictedWinner),
		SportsbookConsensus: s.sportsbookConsensus(r.Context(), cfg, *event, body.PredictedWinner),
	}

	pred, err := s.store.SavePrediction(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save prediction", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": sessionID,
		"prediction": pred,
	})
}

func (s *Server) handleSessionPredictions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "prediction store not configured", nil)
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	rows, err := s.store.PredictionsBySession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve predictions", err)
		return
	}

	var settled, correct int
	for _, row := range rows {
		if row.Prediction.IsCorrect == nil {
			continue
		}
		settled++
		if *row.Prediction.IsCorrect {
			correct++
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":  sessionID,
		"predictions": rows,
		"total":       len(rows),
		"record": map[string]int{
			"settled": settled,
			"correct": correct,
		},
	})
}

func (s *Server) handleEventConsensus(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "prediction store not configured", nil)
		return
	}
	eventTicker := chi.URLParam(r, "eventTicker")

	consensus, found, err := s.store.Consensus(r.Context(), eventTicker)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve consensus", err)
		return
	}
	if !found {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"event_ticker": eventTicker,
			"consensus":    nil,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event_ticker": eventTicker,
		"consensus":    consensus,
	})
}

func (s *Server) handlePlatformStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "prediction store not configured", nil)
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func gameFromMarket(sport string, event markets.CombinedMarket) storage.Game {
	game := storage.Game{
		EventTicker: event.EventTicker,
		Sport:       sport,
		HomeTeam:    event.Matchup.Home,
		AwayTeam:    event.Matchup.Away,
	}
	if !event.GameDate.IsZero() {
		d := event.GameDate
		game.GameDate = &d
	}
	if !event.CloseTime.IsZero() {
		c := event.CloseTime
		game.CloseDate = &c
	}
	return game
}

// teamProbability returns the market's implied probability for one team.
func teamProbability(event markets.CombinedMarket, team string) *float64 {
	switch team {
	case event.Home.Team:
		return event.Home.Probability
	case event.Away.Team:
		return event.Away.Probability
	}
	return nil
}

// sportsbookConsensus captures the books' view of the picked team at
// prediction time, but only from an already-fresh odds cache entry.
func (s *Server) sportsbookConsensus(ctx context.Context, cfg *sports.Config, event markets.CombinedMarket, team string) *float64 {
	if s.oddsCache == nil {
		return nil
	}
	record, found, err := s.oddsCache.Get(ctx, string(cfg.Sport))
	if err != nil || !found || !record.FreshFor(s.oddsMaxAge, time.Now().UTC()) {
		return nil
	}
	game := oddsfeed.FindGame(record.Events, event.Matchup.Away, event.Matchup.Home)
	if game == nil {
		return nil
	}
	consensus := odds.Aggregate(game.Quotes(event.Matchup.Away, event.Matchup.Home))
	if t := consensus.ForTeam(team); t != nil {
		p := t.Consensus
		return &p
	}
	return nil
}
