package markets_test

import (
	"testing"
	"time"

	"github.com/calebrosario/pregame/internal/markets"
	"github.com/calebrosario/pregame/internal/sports"
)

func nflCfg(t *testing.T) *sports.Config {
	t.Helper()
	cfg, err := sports.ForSport(sports.NFL)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestParseTicker(t *testing.T) {
	cfg := nflCfg(t)

	tests := []struct {
		name     string
		ticker   string
		ok       bool
		category string
		date     time.Time
		codes    []string
		subject  string
	}{
		{
			name:     "event ticker",
			ticker:   "KXNFLGAME-25NOV10MINLAC",
			ok:       true,
			category: "GAME",
			date:     time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC),
			codes:    []string{"MIN", "LAC"},
		},
		{
			name:     "market ticker with subject",
			ticker:   "KXNFLGAME-25NOV10MINLAC-MIN",
			ok:       true,
			category: "GAME",
			date:     time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC),
			codes:    []string{"MIN", "LAC"},
			subject:  "MIN",
		},
		{
			name:     "two letter codes need the greedy fallback",
			ticker:   "KXNFLGAME-25SEP04KCGB",
			ok:       true,
			category: "GAME",
			date:     time.Date(2025, time.September, 4, 0, 0, 0, 0, time.UTC),
			codes:    []string{"KC", "GB"},
		},
		{
			name:     "mixed width codes",
			ticker:   "KXNFLGAME-25DEC25NOLAC",
			ok:       true,
			category: "GAME",
			date:     time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC),
			codes:    []string{"NO", "LAC"},
		},
		{
			name:     "lowercase input",
			ticker:   "kxnflgame-25nov10minlac",
			ok:       true,
			category: "GAME",
			date:     time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC),
			codes:    []string{"MIN", "LAC"},
		},
		{
			name:     "date only segment",
			ticker:   "KXNFLPASSYDS-25NOV10",
			ok:       true,
			category: "PASSYDS",
			date:     time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC),
		},
		{name: "random string", ticker: "XYZ123", ok: false},
		{name: "empty", ticker: "", ok: false},
		{name: "wrong sport prefix", ticker: "KXNBAGAME-25NOV10MINLAC", ok: false},
		{name: "no series prefix", ticker: "NFLGAME-25NOV10MINLAC", ok: false},
		{name: "garbled date", ticker: "KXNFLGAME-NOVEMBER10MINLAC", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := markets.ParseTicker(tt.ticker, cfg)
			if ok != tt.ok {
				t.Fatalf("ParseTicker(%q) ok = %v, want %v", tt.ticker, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.CategoryCode != tt.category {
				t.Errorf("category = %q, want %q", got.CategoryCode, tt.category)
			}
			if !got.Date.Equal(tt.date) {
				t.Errorf("date = %v, want %v", got.Date, tt.date)
			}
			if len(got.TeamCodes) != len(tt.codes) {
				t.Fatalf("codes = %v, want %v", got.TeamCodes, tt.codes)
			}
			for i := range tt.codes {
				if got.TeamCodes[i] != tt.codes[i] {
					t.Errorf("codes = %v, want %v", got.TeamCodes, tt.codes)
					break
				}
			}
			if got.Subject != tt.subject {
				t.Errorf("subject = %q, want %q", got.Subject, tt.subject)
			}
		})
	}
}

func TestParseTickerUnknownCodesKeepDate(t *testing.T) {
	cfg := nflCfg(t)
	got, ok := markets.ParseTicker("KXNFLGAME-25NOV10QQRR", cfg)
	if !ok {
		t.Fatal("expected parseable ticker")
	}
	if len(got.TeamCodes) != 0 {
		t.Errorf("codes = %v, want none for unknown run", got.TeamCodes)
	}
	if got.Date.IsZero() {
		t.Error("date should survive an unknown code run")
	}
}
