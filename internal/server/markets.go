package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calebrosario/pregame/internal/cache"
	"github.com/calebrosario/pregame/internal/kalshi"
	"github.com/calebrosario/pregame/internal/logging"
	"github.com/calebrosario/pregame/internal/markets"
	"github.com/calebrosario/pregame/internal/sports"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100

	candleInterval = time.Hour
	candleLookback = 7 * 24 * time.Hour
	orderbookDepth = 10
)

// quality is the odds-quality annotation attached to every listed market.
type quality struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// qualityFor grades a contract probability for display. Nil means the
// market has published no usable price yet.
func qualityFor(p *float64) quality {
	if p == nil {
		return quality{Label: "Unknown", Description: "No data"}
	}
	pct := *p * 100
	switch {
	case pct >= 75:
		return quality{Label: "Strong Favorite", Description: fmt.Sprintf("Heavy favorite at %.0f%%", pct)}
	case pct >= 60:
		return quality{Label: "Favorite", Description: fmt.Sprintf("Favored to win at %.0f%%", pct)}
	case pct >= 40:
		return quality{Label: "Toss-Up", Description: fmt.Sprintf("Close race at %.0f%%", pct)}
	case pct >= 25:
		return quality{Label: "Underdog", Description: fmt.Sprintf("Underdog with value at %.0f%%", pct)}
	default:
		return quality{Label: "Long Shot", Description: fmt.Sprintf("Upset potential at %.0f%%", pct)}
	}
}

// primarySide picks the contract the UI leads with, home side preferred.
func primarySide(m markets.CombinedMarket) markets.Side {
	if m.Home.Ticker != "" {
		return m.Home
	}
	return m.Away
}

// timeRemaining renders how long until the market closes.
func timeRemaining(closeTime, now time.Time) string {
	if closeTime.IsZero() {
		return "unknown"
	}
	left := closeTime.Sub(now)
	if left <= 0 {
		return "closed"
	}
	hours := int(left.Hours())
	if hours >= 48 {
		return fmt.Sprintf("%d days", hours/24)
	}
	if hours < 1 {
		return fmt.Sprintf("%d minutes", int(left.Minutes()))
	}
	return fmt.Sprintf("%d hours", hours)
}

type marketView struct {
	markets.CombinedMarket
	Quality quality `json:"quality"`
}

func (s *Server) handleSports(w http.ResponseWriter, r *http.Request) {
	type sportView struct {
		Sport        string `json:"sport"`
		DisplayName  string `json:"display_name"`
		SeriesTicker string `json:"series_ticker"`
		Teams        int    `json:"teams"`
	}

	all := sports.All()
	views := make([]sportView, 0, len(all))
	for _, cfg := range all {
		views = append(views, sportView{
			Sport:        string(cfg.Sport),
			DisplayName:  cfg.DisplayName,
			SeriesTicker: cfg.SeriesTicker,
			Teams:        len(cfg.Teams),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sports": views,
		"count":  len(views),
	})
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.sportConfig(w, r)
	if !ok {
		return
	}

	page := parseIntParam(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := parseIntParam(r, "per_page", defaultPerPage)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	combined, updatedAt, err := s.combinedMarkets(r.Context(), cfg)
	if err != nil {
		respondError(w, http.StatusBadGateway, "market feed unavailable", err)
		return
	}

	if q != "" {
		filtered := make([]markets.CombinedMarket, 0, len(combined))
		for _, m := range combined {
			if matchesQuery(m, q) {
				filtered = append(filtered, m)
			}
		}
		combined = filtered
	}

	total := len(combined)
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	views := make([]marketView, 0, end-start)
	for _, m := range combined[start:end] {
		views = append(views, marketView{
			CombinedMarket: m,
			Quality:        qualityFor(primarySide(m).Probability),
		})
	}

	resp := map[string]interface{}{
		"sport":    string(cfg.Sport),
		"markets":  views,
		"total":    total,
		"page":     page,
		"pages":    pages,
		"per_page": perPage,
	}
	if !updatedAt.IsZero() {
		resp["updated_at"] = updatedAt
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEventDetail(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.sportConfig(w, r)
	if !ok {
		return
	}
	eventTicker := chi.URLParam(r, "eventTicker")

	var event *markets.CombinedMarket
	var contracts []markets.NormalizedMarket

	normalized, combined, err := s.liveMarkets(r.Context(), cfg)
	if err != nil {
		logging.Warnf("[server] live markets for %s: %v", cfg.Sport, err)
		// Serve the last cached copy if there is one.
		cached, _, cerr := s.combinedMarkets(r.Context(), cfg)
		if cerr != nil {
			respondError(w, http.StatusBadGateway, "market feed unavailable", err)
			return
		}
		event = findByTicker(cached, eventTicker)
	} else {
		event = findByTicker(combined, eventTicker)
		for _, m := range normalized {
			if m.EventTicker == eventTicker {
				contracts = append(contracts, m)
			}
		}
	}

	if event == nil {
		respondError(w, http.StatusNotFound, "event not found (may have closed)", nil)
		return
	}

	volume, openInterest := eventTotals(*event, contracts)
	primary := primarySide(*event)

	var candles []kalshi.Candlestick
	var book *kalshi.Orderbook
	if primary.Ticker != "" && s.kalshi != nil {
		var err error
		candles, err = s.kalshi.Candlesticks(r.Context(), cfg.SeriesTicker, primary.Ticker, candleInterval, candleLookback)
		if err != nil {
			logging.Warnf("[server] candlesticks for %s: %v", primary.Ticker, err)
			candles = nil
		}
		book, err = s.kalshi.OrderbookForMarket(r.Context(), primary.Ticker, orderbookDepth)
		if err != nil {
			logging.Warnf("[server] orderbook for %s: %v", primary.Ticker, err)
			book = nil
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sport":          string(cfg.Sport),
		"event_ticker":   eventTicker,
		"market":         event,
		"quality":        qualityFor(primary.Probability),
		"volume_24h":     volume,
		"open_interest":  openInterest,
		"time_remaining": timeRemaining(event.CloseTime, time.Now().UTC()),
		"contracts":      contracts,
		"candlesticks":   candles,
		"orderbook":      book,
	})
}

// combinedMarkets returns the sport's current market list, cache first.
// A live fetch on cache miss warms the cache for the next request.
func (s *Server) combinedMarkets(ctx context.Context, cfg *sports.Config) ([]markets.CombinedMarket, time.Time, error) {
	if s.markets != nil {
		record, ok, err := s.markets.Get(ctx, string(cfg.Sport))
		if err != nil {
			logging.Warnf("[server] market cache get %s: %v", cfg.Sport, err)
		} else if ok {
			return record.Markets, record.UpdatedAt, nil
		}
	}

	_, combined, err := s.liveMarkets(ctx, cfg)
	if err != nil {
		return nil, time.Time{}, err
	}
	return combined, time.Now().UTC(), nil
}

// liveMarkets fetches and runs the full pipeline for one sport, warming the
// market cache on the way out.
func (s *Server) liveMarkets(ctx context.Context, cfg *sports.Config) ([]markets.NormalizedMarket, []markets.CombinedMarket, error) {
	if s.kalshi == nil {
		return nil, nil, errors.New("market feed not configured")
	}
	raw, err := s.kalshi.OpenMarkets(ctx, cfg.SeriesTicker)
	if err != nil {
		return nil, nil, err
	}

	n := markets.NewNormalizer(cfg)
	normalized := make([]markets.NormalizedMarket, 0, len(raw))
	for _, rm := range raw {
		normalized = append(normalized, n.Normalize(rm))
	}
	combined := markets.CombinePairs(normalized)

	if s.markets != nil {
		record := cache.MarketRecord{
			Sport:     string(cfg.Sport),
			Markets:   combined,
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.markets.Set(ctx, string(cfg.Sport), record); err != nil {
			logging.Warnf("[server] market cache set %s: %v", cfg.Sport, err)
		}
	}
	return normalized, combined, nil
}

// findEvent resolves one combined market by event ticker, cache first. A
// nil result with nil error means the event is unknown.
func (s *Server) findEvent(ctx context.Context, cfg *sports.Config, eventTicker string) (*markets.CombinedMarket, error) {
	combined, _, err := s.combinedMarkets(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return findByTicker(combined, eventTicker), nil
}

func findByTicker(ms []markets.CombinedMarket, eventTicker string) *markets.CombinedMarket {
	for i := range ms {
		if ms[i].EventTicker == eventTicker {
			return &ms[i]
		}
	}
	return nil
}

func matchesQuery(m markets.CombinedMarket, q string) bool {
	for _, field := range []string{m.DisplayName, m.Matchup.Away, m.Matchup.Home, m.Category, m.Away.Team, m.Home.Team} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// eventTotals sums contract volume and open interest for the detail view,
// falling back to the pair's own figures when no contract list is on hand.
func eventTotals(event markets.CombinedMarket, contracts []markets.NormalizedMarket) (*float64, *float64) {
	if len(contracts) == 0 {
		return event.Volume, event.OpenInterest
	}
	var volume, openInterest *float64
	for _, c := range contracts {
		volume = addFloat(volume, c.Volume)
		openInterest = addFloat(openInterest, c.OpenInterest)
	}
	return volume, openInterest
}

func addFloat(acc, v *float64) *float64 {
	if v == nil {
		return acc
	}
	if acc == nil {
		out := *v
		return &out
	}
	out := *acc + *v
	return &out
}
