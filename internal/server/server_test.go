package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/calebrosario/pregame/internal/cache"
	"github.com/calebrosario/pregame/internal/espn"
	"github.com/calebrosario/pregame/internal/kalshi"
	"github.com/calebrosario/pregame/internal/markets"
	"github.com/calebrosario/pregame/internal/odds"
	"github.com/calebrosario/pregame/internal/oddsfeed"
	"github.com/calebrosario/pregame/internal/server"
	"github.com/calebrosario/pregame/internal/sports"
	"github.com/calebrosario/pregame/internal/storage"
	"github.com/calebrosario/pregame/internal/summary"
)

func fp(v float64) *float64 { return &v }

// memMarketCache implements cache.MarketCache in memory.
type memMarketCache struct {
	records map[string]cache.MarketRecord
}

func (c *memMarketCache) Get(ctx context.Context, sport string) (*cache.MarketRecord, bool, error) {
	r, ok := c.records[sport]
	if !ok {
		return nil, false, nil
	}
	out := r
	out.Markets = append([]markets.CombinedMarket(nil), r.Markets...)
	return &out, true, nil
}

func (c *memMarketCache) Set(ctx context.Context, sport string, record cache.MarketRecord) error {
	c.records[sport] = record
	return nil
}

func (c *memMarketCache) Close() error { return nil }

// memSummaryCache implements cache.SummaryCache in memory.
type memSummaryCache struct {
	records map[string]cache.SummaryRecord
}

func (c *memSummaryCache) Get(ctx context.Context, eventTicker string) (*cache.SummaryRecord, bool, error) {
	r, ok := c.records[eventTicker]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *memSummaryCache) Set(ctx context.Context, eventTicker string, record cache.SummaryRecord) error {
	c.records[eventTicker] = record
	return nil
}

func (c *memSummaryCache) Close() error { return nil }

// mockStore implements storage.Store for handler tests.
type mockStore struct {
	saved     []storage.PredictionInput
	rows      []storage.PredictionWithGame
	consensus *storage.Consensus
	stats     *storage.Stats
	err       error
}

func (m *mockStore) Init(ctx context.Context) error { return m.err }

func (m *mockStore) TouchSession(ctx context.Context, sessionID string) (*storage.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &storage.Session{SessionID: sessionID}, nil
}

func (m *mockStore) UpsertGame(ctx context.Context, game storage.Game) (*storage.Game, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &game, nil
}

func (m *mockStore) SavePrediction(ctx context.Context, in storage.PredictionInput) (*storage.Prediction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.saved = append(m.saved, in)
	return &storage.Prediction{
		ID:                int64(len(m.saved)),
		PredictedWinner:   in.PredictedWinner,
		Confidence:        in.Confidence,
		MarketProbability: in.MarketProbability,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

func (m *mockStore) PredictionFor(ctx context.Context, sessionID, eventTicker string) (*storage.Prediction, bool, error) {
	return nil, false, m.err
}

func (m *mockStore) PredictionsBySession(ctx context.Context, sessionID string) ([]storage.PredictionWithGame, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func (m *mockStore) Consensus(ctx context.Context, eventTicker string) (*storage.Consensus, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.consensus, m.consensus != nil, nil
}

func (m *mockStore) PendingGames(ctx context.Context) ([]storage.Game, error) {
	return nil, m.err
}

func (m *mockStore) SettleGame(ctx context.Context, eventTicker, winner string, homeScore, awayScore int) error {
	return m.err
}

func (m *mockStore) Stats(ctx context.Context) (*storage.Stats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func (m *mockStore) Close() error { return nil }

type testEnv struct {
	handler      http.Handler
	store        *mockStore
	marketCache  *memMarketCache
	summaryCache *memSummaryCache
}

func newTestEnv(store *mockStore, opts ...func(*server.Config)) *testEnv {
	if store == nil {
		store = &mockStore{}
	}
	mc := &memMarketCache{records: map[string]cache.MarketRecord{}}
	sc := &memSummaryCache{records: map[string]cache.SummaryRecord{}}
	cfg := server.Config{
		Markets:      mc,
		SummaryCache: sc,
		Summaries:    summary.NewService(),
		Store:        store,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	srv := server.New(cfg)
	return &testEnv{handler: srv.Router(), store: store, marketCache: mc, summaryCache: sc}
}

func (e *testEnv) warmMarkets(sport string, ms []markets.CombinedMarket) {
	e.marketCache.records[sport] = cache.MarketRecord{
		Sport:     sport,
		Markets:   ms,
		UpdatedAt: time.Now().UTC(),
	}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func testNFLMarkets() []markets.CombinedMarket {
	return []markets.CombinedMarket{
		{
			EventTicker: "KXNFLGAME-25NOV10MINLAC",
			Category:    "Games",
			Matchup:     markets.Matchup{Away: "Minnesota Vikings", Home: "Los Angeles Chargers"},
			DisplayName: "Minnesota Vikings at Los Angeles Chargers",
			Away:        markets.Side{Team: "Minnesota Vikings", Ticker: "KXNFLGAME-25NOV10MINLAC-MIN", Probability: fp(0.22)},
			Home:        markets.Side{Team: "Los Angeles Chargers", Ticker: "KXNFLGAME-25NOV10MINLAC-LAC", Probability: fp(0.78)},
			Volume:      fp(150000),
			GameDate:    time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC),
			CloseTime:   time.Date(2025, 11, 11, 1, 0, 0, 0, time.UTC),
		},
		{
			EventTicker: "KXNFLGAME-25NOV10BUFKC",
			Category:    "Games",
			Matchup:     markets.Matchup{Away: "Buffalo Bills", Home: "Kansas City Chiefs"},
			DisplayName: "Buffalo Bills at Kansas City Chiefs",
			Away:        markets.Side{Team: "Buffalo Bills", Ticker: "KXNFLGAME-25NOV10BUFKC-BUF", Probability: fp(0.69)},
			Home:        markets.Side{Team: "Kansas City Chiefs", Ticker: "KXNFLGAME-25NOV10BUFKC-KC", Probability: fp(0.31)},
		},
		{
			EventTicker: "KXNFLGAME-25NOV16DETPHI",
			Category:    "Games",
			Matchup:     markets.Matchup{Away: "Detroit Lions", Home: "Philadelphia Eagles"},
			DisplayName: "Detroit Lions at Philadelphia Eagles",
			Away:        markets.Side{Team: "Detroit Lions", Ticker: "KXNFLGAME-25NOV16DETPHI-DET"},
			Home:        markets.Side{Team: "Philadelphia Eagles", Ticker: "KXNFLGAME-25NOV16DETPHI-PHI"},
		},
		{
			EventTicker: "KXNFLTIE-25",
			Category:    "Other",
			DisplayName: "Will any game end in a tie this season?",
			Away:        markets.Side{Ticker: "KXNFLTIE-25", Probability: fp(0.05)},
			SingleSided: true,
		},
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(nil)

	w := env.get(t, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	decode(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", resp["status"])
	}
	if resp["service"] != "pregame-api" {
		t.Errorf("expected service 'pregame-api', got %v", resp["service"])
	}
}

func TestListSports(t *testing.T) {
	env := newTestEnv(nil)

	w := env.get(t, "/api/v1/sports")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Sports []struct {
			Sport        string `json:"sport"`
			DisplayName  string `json:"display_name"`
			SeriesTicker string `json:"series_ticker"`
			Teams        int    `json:"teams"`
		} `json:"sports"`
		Count int `json:"count"`
	}
	decode(t, w, &resp)

	if resp.Count != len(sports.All()) {
		t.Fatalf("expected %d sports, got %d", len(sports.All()), resp.Count)
	}
	if resp.Sports[0].Sport != "nfl" {
		t.Errorf("expected first sport nfl, got %s", resp.Sports[0].Sport)
	}
	nfl, err := sports.ForSport(sports.NFL)
	if err != nil {
		t.Fatalf("ForSport: %v", err)
	}
	if resp.Sports[0].Teams != len(nfl.Teams) {
		t.Errorf("expected %d NFL teams, got %d", len(nfl.Teams), resp.Sports[0].Teams)
	}
}

func TestMarketsFromCache(t *testing.T) {
	env := newTestEnv(nil)
	env.warmMarkets("nfl", testNFLMarkets())

	w := env.get(t, "/api/v1/sports/nfl/markets?per_page=2")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Sport   string `json:"sport"`
		Markets []struct {
			EventTicker string `json:"event_ticker"`
			Quality     struct {
				Label       string `json:"label"`
				Description string `json:"description"`
			} `json:"quality"`
		} `json:"markets"`
		Total   int `json:"total"`
		Page    int `json:"page"`
		Pages   int `json:"pages"`
		PerPage int `json:"per_page"`
	}
	decode(t, w, &resp)

	if resp.Total != 4 || resp.Pages != 2 || resp.Page != 1 || resp.PerPage != 2 {
		t.Fatalf("unexpected paging: total=%d pages=%d page=%d per_page=%d", resp.Total, resp.Pages, resp.Page, resp.PerPage)
	}
	if len(resp.Markets) != 2 {
		t.Fatalf("expected 2 markets on page, got %d", len(resp.Markets))
	}
	if resp.Markets[0].Quality.Label != "Strong Favorite" {
		t.Errorf("expected Strong Favorite for 0.78, got %s", resp.Markets[0].Quality.Label)
	}
	if resp.Markets[1].Quality.Label != "Underdog" {
		t.Errorf("expected Underdog for 0.31, got %s", resp.Markets[1].Quality.Label)
	}

	// Second page carries the no-data and long-shot markets.
	w = env.get(t, "/api/v1/sports/nfl/markets?per_page=2&page=2")
	decode(t, w, &resp)
	if len(resp.Markets) != 2 {
		t.Fatalf("expected 2 markets on page 2, got %d", len(resp.Markets))
	}
	if resp.Markets[0].Quality.Label != "Unknown" || resp.Markets[0].Quality.Description != "No data" {
		t.Errorf("expected Unknown/No data for nil probability, got %+v", resp.Markets[0].Quality)
	}
	if resp.Markets[1].Quality.Label != "Long Shot" {
		t.Errorf("expected Long Shot for 0.05, got %s", resp.Markets[1].Quality.Label)
	}
}

func TestMarketsSearch(t *testing.T) {
	env := newTestEnv(nil)
	env.warmMarkets("nfl", testNFLMarkets())

	w := env.get(t, "/api/v1/sports/nfl/markets?q=vikings")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Markets []struct {
			EventTicker string `json:"event_ticker"`
		} `json:"markets"`
		Total int `json:"total"`
	}
	decode(t, w, &resp)

	if resp.Total != 1 || len(resp.Markets) != 1 {
		t.Fatalf("expected 1 match, got total=%d len=%d", resp.Total, len(resp.Markets))
	}
	if resp.Markets[0].EventTicker != "KXNFLGAME-25NOV10MINLAC" {
		t.Errorf("unexpected match: %s", resp.Markets[0].EventTicker)
	}

	// Search should not disturb the cached list.
	w = env.get(t, "/api/v1/sports/nfl/markets")
	decode(t, w, &resp)
	if resp.Total != 4 {
		t.Errorf("expected full list after search, got %d", resp.Total)
	}
}

func TestMarketsUnknownSport(t *testing.T) {
	env := newTestEnv(nil)

	w := env.get(t, "/api/v1/sports/cricket/markets")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func kalshiFixture(t *testing.T) *httptest.Server {
	t.Helper()
	closeTime := time.Now().UTC().Add(30*time.Hour + 30*time.Minute).Format(time.RFC3339)
	marketsBody := fmt.Sprintf(`{
	  "markets": [
	    {
	      "ticker": "KXNFLGAME-25NOV10MINLAC-MIN",
	      "event_ticker": "KXNFLGAME-25NOV10MINLAC",
	      "title": "Pro Football: Vikings at Chargers",
	      "yes_sub_title": "Minnesota",
	      "status": "active",
	      "yes_bid": 22, "yes_ask": 26, "last_price": 23,
	      "volume_24h": 84512, "open_interest": 112000,
	      "close_time": %q
	    },
	    {
	      "ticker": "KXNFLGAME-25NOV10MINLAC-LAC",
	      "event_ticker": "KXNFLGAME-25NOV10MINLAC",
	      "title": "Pro Football: Vikings at Chargers",
	      "yes_sub_title": "Los Angeles",
	      "status": "active",
	      "yes_bid": 76, "yes_ask": 80, "last_price": 77,
	      "volume_24h": 65100, "open_interest": 98000,
	      "close_time": %q
	    }
	  ],
	  "cursor": ""
	}`, closeTime, closeTime)

	mux := http.NewServeMux()
	mux.HandleFunc("/markets", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("series_ticker"); got != "KXNFLGAME" {
			t.Errorf("unexpected series_ticker %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, marketsBody)
	})
	mux.HandleFunc("/series/KXNFLGAME/markets/KXNFLGAME-25NOV10MINLAC-LAC/candlesticks", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candlesticks": [
		  {"end_period_ts": %d, "price": {"open": 70, "high": 75, "low": 69, "close": 74}, "volume": 1200, "open_interest": 90000}
		]}`, time.Now().Add(-time.Hour).Unix())
	})
	mux.HandleFunc("/markets/KXNFLGAME-25NOV10MINLAC-LAC/orderbook", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"orderbook": {"yes": [[75, 100], [74, 50]], "no": [[24, 80]]}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestEventDetail(t *testing.T) {
	fixture := kalshiFixture(t)
	env := newTestEnv(nil, func(cfg *server.Config) {
		cfg.Kalshi = kalshi.NewClient(kalshi.Config{BaseURL: fixture.URL})
	})

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10MINLAC")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		EventTicker string                 `json:"event_ticker"`
		Market      markets.CombinedMarket `json:"market"`
		Quality     struct {
			Label string `json:"label"`
		} `json:"quality"`
		Volume24h     *float64                   `json:"volume_24h"`
		OpenInterest  *float64                   `json:"open_interest"`
		TimeRemaining string                     `json:"time_remaining"`
		Contracts     []markets.NormalizedMarket `json:"contracts"`
		Candlesticks  []kalshi.Candlestick       `json:"candlesticks"`
		Orderbook     *kalshi.Orderbook          `json:"orderbook"`
	}
	decode(t, w, &resp)

	if resp.Market.Matchup.Away != "Minnesota Vikings" || resp.Market.Matchup.Home != "Los Angeles Chargers" {
		t.Errorf("unexpected matchup: %+v", resp.Market.Matchup)
	}
	if resp.Quality.Label != "Strong Favorite" {
		t.Errorf("expected Strong Favorite for 0.76 home side, got %s", resp.Quality.Label)
	}
	if resp.Volume24h == nil || *resp.Volume24h != 149612 {
		t.Errorf("expected summed volume 149612, got %v", resp.Volume24h)
	}
	if resp.OpenInterest == nil || *resp.OpenInterest != 210000 {
		t.Errorf("expected summed open interest 210000, got %v", resp.OpenInterest)
	}
	if len(resp.Contracts) != 2 {
		t.Errorf("expected 2 contracts, got %d", len(resp.Contracts))
	}
	if len(resp.Candlesticks) != 1 {
		t.Fatalf("expected 1 candlestick, got %d", len(resp.Candlesticks))
	}
	if resp.Candlesticks[0].Close == nil || *resp.Candlesticks[0].Close != 0.74 {
		t.Errorf("expected candle close 0.74, got %v", resp.Candlesticks[0].Close)
	}
	if resp.Orderbook == nil || len(resp.Orderbook.Yes) != 2 || resp.Orderbook.Yes[0].Price != 0.75 {
		t.Errorf("unexpected orderbook: %+v", resp.Orderbook)
	}
	if !strings.Contains(resp.TimeRemaining, "hours") {
		t.Errorf("expected hours remaining, got %q", resp.TimeRemaining)
	}
}

func TestEventDetailNotFound(t *testing.T) {
	fixture := kalshiFixture(t)
	env := newTestEnv(nil, func(cfg *server.Config) {
		cfg.Kalshi = kalshi.NewClient(kalshi.Config{BaseURL: fixture.URL})
	})

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10ARIATL")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestEventOddsNotConfigured(t *testing.T) {
	env := newTestEnv(nil)
	env.warmMarkets("nfl", testNFLMarkets())

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10MINLAC/odds")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Available bool `json:"available"`
	}
	decode(t, w, &resp)
	if resp.Available {
		t.Error("expected available=false without an odds client")
	}
}

func TestEventOddsGeneralMarket(t *testing.T) {
	env := newTestEnv(nil)
	env.warmMarkets("nfl", testNFLMarkets())

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLTIE-25/odds")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Matched bool   `json:"matched"`
		Reason  string `json:"reason"`
	}
	decode(t, w, &resp)
	if resp.Matched {
		t.Error("expected matched=false for a general market")
	}
	if resp.Reason != "market has no team matchup" {
		t.Errorf("unexpected reason %q", resp.Reason)
	}
}

func TestEventOdds(t *testing.T) {
	fixture := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
		  "success": true,
		  "data": [
		    {
		      "eventID": "evt1",
		      "teams": {
		        "away": {"names": {"short": "MIN", "medium": "Vikings", "long": "Minnesota Vikings"}},
		        "home": {"names": {"short": "LAC", "medium": "Chargers", "long": "Los Angeles Chargers"}}
		      },
		      "odds": {"byBookmaker": {
		        "draftkings": {"moneyline": {"away": 210, "home": -250}},
		        "bet_mgm": {"moneyline": {"away": 205, "home": -245}}
		      }}
		    }
		  ]
		}`)
	}))
	t.Cleanup(fixture.Close)

	env := newTestEnv(nil, func(cfg *server.Config) {
		cfg.Odds = oddsfeed.NewClient(oddsfeed.Config{BaseURL: fixture.URL, APIKey: "test-key"})
	})
	env.warmMarkets("nfl", testNFLMarkets())

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10MINLAC/odds")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Available bool               `json:"available"`
		Matched   bool               `json:"matched"`
		Consensus odds.ConsensusOdds `json:"consensus"`
		Quotes    []odds.Quote       `json:"quotes"`
	}
	decode(t, w, &resp)

	if !resp.Available || !resp.Matched {
		t.Fatalf("expected available and matched, got %+v", resp)
	}
	if len(resp.Quotes) != 4 {
		t.Fatalf("expected 4 quotes, got %d", len(resp.Quotes))
	}
	if len(resp.Consensus.Teams) != 2 {
		t.Fatalf("expected 2 consensus teams, got %d", len(resp.Consensus.Teams))
	}
	vikings := resp.Consensus.Teams[0]
	if vikings.Team != "Minnesota Vikings" || vikings.BestPrice != 210 || vikings.BestBookmaker != "Draftkings" {
		t.Errorf("unexpected away aggregate: %+v", vikings)
	}
	chargers := resp.Consensus.Teams[1]
	if chargers.BestPrice != -245 || chargers.BestBookmaker != "Bet Mgm" {
		t.Errorf("unexpected home aggregate: %+v", chargers)
	}
	if math.Abs(chargers.Consensus-0.7122) > 0.001 {
		t.Errorf("unexpected home consensus %f", chargers.Consensus)
	}
}

func TestEventStats(t *testing.T) {
	fixture := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
		  "events": [
		    {
		      "id": "401547402",
		      "name": "Minnesota Vikings at Los Angeles Chargers",
		      "shortName": "MIN @ LAC",
		      "date": "2025-11-10T01:20Z",
		      "status": {"type": {"completed": true, "description": "Final", "state": "post"}},
		      "competitions": [
		        {
		          "competitors": [
		            {"id": "24", "homeAway": "home", "score": "27", "winner": true,
		             "team": {"displayName": "Los Angeles Chargers", "abbreviation": "LAC"}},
		            {"id": "16", "homeAway": "away", "score": "24", "winner": false,
		             "team": {"displayName": "Minnesota Vikings", "abbreviation": "MIN"}}
		          ]
		        }
		      ]
		    }
		  ]
		}`)
	}))
	t.Cleanup(fixture.Close)

	env := newTestEnv(nil, func(cfg *server.Config) {
		cfg.ESPN = espn.NewClient(espn.Config{BaseURL: fixture.URL})
	})
	env.warmMarkets("nfl", testNFLMarkets())

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10MINLAC/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Matched bool      `json:"matched"`
		Game    espn.Game `json:"game"`
	}
	decode(t, w, &resp)

	if !resp.Matched {
		t.Fatal("expected a matched game")
	}
	if !resp.Game.Status.Completed || resp.Game.Winner != "home" {
		t.Errorf("unexpected game result: %+v", resp.Game.Status)
	}
	if resp.Game.Home == nil || resp.Game.Home.Score == nil || *resp.Game.Home.Score != 27 {
		t.Errorf("unexpected home score: %+v", resp.Game.Home)
	}
}

func TestEventSummaryFallbackAndCache(t *testing.T) {
	env := newTestEnv(nil)
	env.warmMarkets("nfl", testNFLMarkets())

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10MINLAC/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Summary  string `json:"summary"`
		Provider string `json:"provider"`
		Cached   bool   `json:"cached"`
	}
	decode(t, w, &resp)

	want := "Minnesota Vikings at Los Angeles Chargers: implied 78.0%, 24h vol 150,000."
	if resp.Summary != want {
		t.Errorf("summary = %q, want %q", resp.Summary, want)
	}
	if resp.Provider != "fallback" || resp.Cached {
		t.Errorf("expected fresh fallback answer, got provider=%s cached=%v", resp.Provider, resp.Cached)
	}

	w = env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10MINLAC/summary")
	decode(t, w, &resp)
	if !resp.Cached {
		t.Error("expected second request to hit the summary cache")
	}
	if resp.Summary != want {
		t.Errorf("cached summary = %q, want %q", resp.Summary, want)
	}
}

func TestCreatePrediction(t *testing.T) {
	env := newTestEnv(nil)
	env.warmMarkets("nfl", testNFLMarkets())

	w := env.post(t, "/api/v1/predictions", map[string]interface{}{
		"sport":            "nfl",
		"event_ticker":     "KXNFLGAME-25NOV10MINLAC",
		"predicted_winner": "Minnesota Vikings",
		"confidence":       72,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID  string `json:"session_id"`
		Prediction struct {
			PredictedWinner string  `json:"predicted_winner"`
			Confidence      float64 `json:"confidence"`
		} `json:"prediction"`
	}
	decode(t, w, &resp)

	if len(resp.SessionID) != 36 {
		t.Errorf("expected generated UUID session, got %q", resp.SessionID)
	}
	if resp.Prediction.PredictedWinner != "Minnesota Vikings" || resp.Prediction.Confidence != 72 {
		t.Errorf("unexpected prediction echo: %+v", resp.Prediction)
	}

	if len(env.store.saved) != 1 {
		t.Fatalf("expected 1 saved prediction, got %d", len(env.store.saved))
	}
	saved := env.store.saved[0]
	if saved.Game.EventTicker != "KXNFLGAME-25NOV10MINLAC" || saved.Game.Sport != "nfl" {
		t.Errorf("unexpected saved game: %+v", saved.Game)
	}
	if saved.MarketProbability == nil || *saved.MarketProbability != 0.22 {
		t.Errorf("expected captured market probability 0.22, got %v", saved.MarketProbability)
	}

	// Reusing a session keeps the caller's ID.
	w = env.post(t, "/api/v1/predictions", map[string]interface{}{
		"session_id":       resp.SessionID,
		"sport":            "nfl",
		"event_ticker":     "KXNFLGAME-25NOV10BUFKC",
		"predicted_winner": "Buffalo Bills",
		"confidence":       60,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	var second struct {
		SessionID string `json:"session_id"`
	}
	decode(t, w, &second)
	if second.SessionID != resp.SessionID {
		t.Errorf("expected session %q to stick, got %q", resp.SessionID, second.SessionID)
	}
}

func TestCreatePredictionValidation(t *testing.T) {
	env := newTestEnv(nil)
	env.warmMarkets("nfl", testNFLMarkets())

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{
			"missing winner",
			map[string]interface{}{"sport": "nfl", "event_ticker": "KXNFLGAME-25NOV10MINLAC", "confidence": 70},
			http.StatusBadRequest,
		},
		{
			"winner not in matchup",
			map[string]interface{}{"sport": "nfl", "event_ticker": "KXNFLGAME-25NOV10MINLAC", "predicted_winner": "Green Bay Packers", "confidence": 70},
			http.StatusBadRequest,
		},
		{
			"confidence too high",
			map[string]interface{}{"sport": "nfl", "event_ticker": "KXNFLGAME-25NOV10MINLAC", "predicted_winner": "Minnesota Vikings", "confidence": 130},
			http.StatusBadRequest,
		},
		{
			"confidence missing",
			map[string]interface{}{"sport": "nfl", "event_ticker": "KXNFLGAME-25NOV10MINLAC", "predicted_winner": "Minnesota Vikings"},
			http.StatusBadRequest,
		},
		{
			"unknown sport",
			map[string]interface{}{"sport": "cricket", "event_ticker": "KXNFLGAME-25NOV10MINLAC", "predicted_winner": "Minnesota Vikings", "confidence": 70},
			http.StatusBadRequest,
		},
		{
			"unknown event",
			map[string]interface{}{"sport": "nfl", "event_ticker": "KXNFLGAME-25NOV10SEASF", "predicted_winner": "Minnesota Vikings", "confidence": 70},
			http.StatusNotFound,
		},
		{
			"general market",
			map[string]interface{}{"sport": "nfl", "event_ticker": "KXNFLTIE-25", "predicted_winner": "Minnesota Vikings", "confidence": 70},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.post(t, "/api/v1/predictions", tt.body)
			if w.Code != tt.code {
				t.Errorf("expected status %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}

	if len(env.store.saved) != 0 {
		t.Errorf("expected no saved predictions, got %d", len(env.store.saved))
	}
}

func TestSessionPredictions(t *testing.T) {
	correct := true
	store := &mockStore{
		rows: []storage.PredictionWithGame{
			{
				Prediction: storage.Prediction{ID: 1, PredictedWinner: "Minnesota Vikings", Confidence: 72, IsCorrect: &correct},
				Game:       storage.Game{EventTicker: "KXNFLGAME-25NOV10MINLAC", IsCompleted: true, Winner: "Minnesota Vikings"},
			},
			{
				Prediction: storage.Prediction{ID: 2, PredictedWinner: "Buffalo Bills", Confidence: 55},
				Game:       storage.Game{EventTicker: "KXNFLGAME-25NOV10BUFKC"},
			},
		},
	}
	env := newTestEnv(store)

	w := env.get(t, "/api/v1/predictions/11111111-2222-3333-4444-555555555555")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		SessionID   string                       `json:"session_id"`
		Predictions []storage.PredictionWithGame `json:"predictions"`
		Total       int                          `json:"total"`
		Record      struct {
			Settled int `json:"settled"`
			Correct int `json:"correct"`
		} `json:"record"`
	}
	decode(t, w, &resp)

	if resp.Total != 2 || len(resp.Predictions) != 2 {
		t.Fatalf("expected 2 predictions, got total=%d len=%d", resp.Total, len(resp.Predictions))
	}
	if resp.Record.Settled != 1 || resp.Record.Correct != 1 {
		t.Errorf("unexpected record: %+v", resp.Record)
	}
}

func TestSessionPredictionsError(t *testing.T) {
	env := newTestEnv(&mockStore{err: context.DeadlineExceeded})

	w := env.get(t, "/api/v1/predictions/some-session")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}

func TestEventConsensus(t *testing.T) {
	store := &mockStore{
		consensus: &storage.Consensus{
			TotalPredictions:  3,
			HomeTeam:          "Los Angeles Chargers",
			AwayTeam:          "Minnesota Vikings",
			HomeCount:         2,
			AwayCount:         1,
			HomePercentage:    200.0 / 3,
			AwayPercentage:    100.0 / 3,
			AverageConfidence: 60,
		},
	}
	env := newTestEnv(store)

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10MINLAC/consensus")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		EventTicker string             `json:"event_ticker"`
		Consensus   *storage.Consensus `json:"consensus"`
	}
	decode(t, w, &resp)

	if resp.Consensus == nil || resp.Consensus.TotalPredictions != 3 || resp.Consensus.HomeCount != 2 {
		t.Errorf("unexpected consensus: %+v", resp.Consensus)
	}
}

func TestEventConsensusEmpty(t *testing.T) {
	env := newTestEnv(&mockStore{})

	w := env.get(t, "/api/v1/sports/nfl/events/KXNFLGAME-25NOV10MINLAC/consensus")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Consensus *storage.Consensus `json:"consensus"`
	}
	decode(t, w, &resp)
	if resp.Consensus != nil {
		t.Errorf("expected null consensus, got %+v", resp.Consensus)
	}
}

func TestPlatformStats(t *testing.T) {
	env := newTestEnv(&mockStore{
		stats: &storage.Stats{Sessions: 5, Games: 12, Predictions: 31, SettledPredictions: 9, CorrectPredictions: 6},
	})

	w := env.get(t, "/api/v1/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp storage.Stats
	decode(t, w, &resp)
	if resp.Sessions != 5 || resp.Predictions != 31 || resp.CorrectPredictions != 6 {
		t.Errorf("unexpected stats: %+v", resp)
	}
}
