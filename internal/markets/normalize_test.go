package markets_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/calebrosario/pregame/internal/markets"
)

func TestNormalizeGameMarket(t *testing.T) {
	n := markets.NewNormalizer(nflCfg(t))

	raw := markets.RawMarket{
		Ticker:      "KXNFLGAME-25NOV10MINLAC-MIN",
		EventTicker: "KXNFLGAME-25NOV10MINLAC",
		Subtitle:    "Minnesota",
		LastPrice:   fp(62),
		Volume24h:   fp(5400),
		CloseTime:   time.Date(2025, time.November, 11, 4, 0, 0, 0, time.UTC),
	}

	got := n.Normalize(raw)

	if got.Category != "Games" {
		t.Errorf("category = %q, want Games", got.Category)
	}
	if got.Matchup.Away != "Minnesota Vikings" || got.Matchup.Home != "Los Angeles Chargers" {
		t.Errorf("matchup = %+v, want Vikings at Chargers", got.Matchup)
	}
	if got.SubjectTeam != "Minnesota Vikings" {
		t.Errorf("subject = %q, want Minnesota Vikings", got.SubjectTeam)
	}
	if got.DisplayName != "Minnesota Vikings at Los Angeles Chargers" {
		t.Errorf("display = %q", got.DisplayName)
	}
	if got.Probability == nil || math.Abs(*got.Probability-0.62) > 1e-9 {
		t.Errorf("probability = %v, want 0.62", got.Probability)
	}
	if got.Volume == nil || *got.Volume != 5400 {
		t.Errorf("volume = %v, want 5400", got.Volume)
	}
	if want := time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC); !got.GameDate.Equal(want) {
		t.Errorf("game date = %v, want %v", got.GameDate, want)
	}
}

func TestNormalizeExpandsTitle(t *testing.T) {
	n := markets.NewNormalizer(nflCfg(t))

	raw := markets.RawMarket{
		Ticker:      "KXNFLGAME-25NOV10MINLAC",
		EventTicker: "KXNFLGAME-25NOV10MINLAC",
		Title:       "MIN at LAC Winner?",
	}

	got := n.Normalize(raw)
	if got.DisplayName != "Minnesota Vikings at Los Angeles Chargers Winner?" {
		t.Errorf("display = %q", got.DisplayName)
	}
}

func TestNormalizeUnparseableTicker(t *testing.T) {
	n := markets.NewNormalizer(nflCfg(t))

	got := n.Normalize(markets.RawMarket{Ticker: "XYZ123"})

	if got.Category != markets.CategoryOther {
		t.Errorf("category = %q, want %q", got.Category, markets.CategoryOther)
	}
	if got.DisplayName != "XYZ123" {
		t.Errorf("display = %q, want raw ticker", got.DisplayName)
	}
	if !got.Matchup.IsGeneral() {
		t.Errorf("matchup = %+v, want General", got.Matchup)
	}
	if got.Matchup.Label() != "General" {
		t.Errorf("label = %q, want General", got.Matchup.Label())
	}
	if got.Probability != nil || got.Volume != nil {
		t.Errorf("expected nil price fields, got %v / %v", got.Probability, got.Volume)
	}
}

func TestNormalizeParlayFallback(t *testing.T) {
	n := markets.NewNormalizer(nflCfg(t))

	known := n.Normalize(markets.RawMarket{Ticker: "KXNFLSGP-25NOV10MINLAC-MINLACWIN"})
	if known.Category != "Same Game Parlays" {
		t.Errorf("SGP series category = %q", known.Category)
	}

	multi := n.Normalize(markets.RawMarket{Ticker: "KXNFLCOMBO-25NOV10MINLAC-LEG1-LEG2"})
	if multi.Category != markets.CategoryParlay {
		t.Errorf("multi-leg category = %q, want %q", multi.Category, markets.CategoryParlay)
	}

	plain := n.Normalize(markets.RawMarket{Ticker: "KXNFLMYSTERY-25NOV10MINLAC"})
	if plain.Category != markets.CategoryOther {
		t.Errorf("unknown series category = %q, want %q", plain.Category, markets.CategoryOther)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := markets.NewNormalizer(nflCfg(t))

	raw := markets.RawMarket{
		Ticker:      "KXNFLGAME-25NOV10MINLAC-LAC",
		EventTicker: "KXNFLGAME-25NOV10MINLAC",
		YesBid:      fp(38),
		Volume:      fp(900),
	}

	first := n.Normalize(raw)
	second := n.Normalize(raw)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalize not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}
