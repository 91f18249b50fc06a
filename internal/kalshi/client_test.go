package kalshi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/calebrosario/pregame/internal/kalshi"
)

const marketsPage1 = `{
  "cursor": "next-1",
  "markets": [
    {
      "ticker": "KXNFLGAME-25NOV10MINLAC-LAC",
      "event_ticker": "KXNFLGAME-25NOV10MINLAC",
      "title": "Vikings at Chargers Winner?",
      "subtitle": "Chargers",
      "status": "open",
      "yes_bid": 75,
      "yes_ask": 77,
      "volume_24h": 84512,
      "open_interest": 112000,
      "close_time": "2025-11-11T01:00:00Z"
    }
  ]
}`

const marketsPage2 = `{
  "cursor": "",
  "markets": [
    {
      "ticker": "KXNFLGAME-25NOV10MINLAC-MIN",
      "event_ticker": "KXNFLGAME-25NOV10MINLAC",
      "title": "Vikings at Chargers Winner?",
      "yes_sub_title": "Vikings",
      "status": "open",
      "yes_bid": 22,
      "yes_ask": 24,
      "volume": 65100
    }
  ]
}`

func TestOpenMarketsPagination(t *testing.T) {
	var cursors []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("path = %q, want /markets", r.URL.Path)
		}
		q := r.URL.Query()
		cursors = append(cursors, q.Get("cursor"))
		if q.Get("series_ticker") != "KXNFLGAME" {
			t.Errorf("series_ticker = %q, want KXNFLGAME", q.Get("series_ticker"))
		}
		if q.Get("status") != "open" {
			t.Errorf("status = %q, want open", q.Get("status"))
		}
		if q.Get("limit") != "200" {
			t.Errorf("limit = %q, want 200", q.Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		if q.Get("cursor") == "" {
			io.WriteString(w, marketsPage1)
		} else {
			io.WriteString(w, marketsPage2)
		}
	}))
	t.Cleanup(srv.Close)

	client := kalshi.NewClient(kalshi.Config{BaseURL: srv.URL})
	raw, err := client.OpenMarkets(context.Background(), "KXNFLGAME")
	if err != nil {
		t.Fatalf("OpenMarkets: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("len(raw) = %d, want 2", len(raw))
	}
	if len(cursors) != 2 || cursors[0] != "" || cursors[1] != "next-1" {
		t.Errorf("cursors = %v, want [\"\" next-1]", cursors)
	}

	lac := raw[0]
	if lac.Subtitle != "Chargers" {
		t.Errorf("Subtitle = %q, want Chargers", lac.Subtitle)
	}
	if lac.Midpoint == nil || *lac.Midpoint != 76 {
		t.Errorf("Midpoint = %v, want 76", lac.Midpoint)
	}
	if !lac.CloseTime.Equal(time.Date(2025, 11, 11, 1, 0, 0, 0, time.UTC)) {
		t.Errorf("CloseTime = %v, want 2025-11-11T01:00:00Z", lac.CloseTime)
	}

	// The second market carries its side only in the legacy field.
	min := raw[1]
	if min.Subtitle != "Vikings" {
		t.Errorf("Subtitle = %q, want Vikings", min.Subtitle)
	}
	if !min.CloseTime.IsZero() {
		t.Errorf("CloseTime = %v, want zero", min.CloseTime)
	}
}

func TestCandlesticks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/series/KXNFLGAME/markets/KXNFLGAME-25NOV10MINLAC-LAC/candlesticks"
		if r.URL.Path != want {
			t.Errorf("path = %q, want %s", r.URL.Path, want)
		}
		q := r.URL.Query()
		if q.Get("period_interval") != "60" {
			t.Errorf("period_interval = %q, want 60", q.Get("period_interval"))
		}
		if q.Get("start_ts") == "" || q.Get("end_ts") == "" {
			t.Errorf("missing start_ts/end_ts in %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
  "candlesticks": [
    {"end_period_ts": 1762736400, "price": {"open": 70, "high": 76, "low": 69, "close": 74}, "volume": 1200, "open_interest": 9000},
    {"end_period_ts": 1762740000, "price": {}, "volume": 0, "open_interest": 9000}
  ]
}`)
	}))
	t.Cleanup(srv.Close)

	client := kalshi.NewClient(kalshi.Config{BaseURL: srv.URL})
	bars, err := client.Candlesticks(context.Background(), "KXNFLGAME", "KXNFLGAME-25NOV10MINLAC-LAC", 0, 0)
	if err != nil {
		t.Fatalf("Candlesticks: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d, want 2", len(bars))
	}
	if bars[0].Close == nil || *bars[0].Close != 0.74 {
		t.Errorf("Close = %v, want 0.74", bars[0].Close)
	}
	if !bars[0].Time.Equal(time.Unix(1762736400, 0).UTC()) {
		t.Errorf("Time = %v, want %v", bars[0].Time, time.Unix(1762736400, 0).UTC())
	}
	if bars[0].Volume != 1200 {
		t.Errorf("Volume = %v, want 1200", bars[0].Volume)
	}
	// Bars with no trades keep nil prices instead of zeroes.
	if bars[1].Close != nil {
		t.Errorf("empty bar Close = %v, want nil", bars[1].Close)
	}
}

func TestOrderbook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/markets/KXNFLGAME-25NOV10MINLAC-LAC/orderbook"
		if r.URL.Path != want {
			t.Errorf("path = %q, want %s", r.URL.Path, want)
		}
		if r.URL.Query().Get("depth") != "5" {
			t.Errorf("depth = %q, want 5", r.URL.Query().Get("depth"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"orderbook": {"yes": [[75, 100], [74, 50], [73]], "no": [[25, 200]]}}`)
	}))
	t.Cleanup(srv.Close)

	client := kalshi.NewClient(kalshi.Config{BaseURL: srv.URL})
	book, err := client.OrderbookForMarket(context.Background(), "KXNFLGAME-25NOV10MINLAC-LAC", 5)
	if err != nil {
		t.Fatalf("OrderbookForMarket: %v", err)
	}
	if len(book.Yes) != 2 {
		t.Fatalf("len(Yes) = %d, want 2 (short level dropped)", len(book.Yes))
	}
	if book.Yes[0].Price != 0.75 || book.Yes[0].Quantity != 100 {
		t.Errorf("Yes[0] = %+v, want 0.75 x 100", book.Yes[0])
	}
	if len(book.No) != 1 || book.No[0].Price != 0.25 {
		t.Errorf("No = %+v, want one level at 0.25", book.No)
	}
}

func TestMarketsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client := kalshi.NewClient(kalshi.Config{BaseURL: srv.URL})
	_, err := client.Markets(context.Background(), "KXNFLGAME", "open", 0, "")
	if err == nil {
		t.Fatal("Markets err = nil, want error")
	}
	if !strings.Contains(err.Error(), "kalshi API") {
		t.Errorf("err = %v, want kalshi API status error", err)
	}
}
