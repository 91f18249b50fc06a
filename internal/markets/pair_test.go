package markets_test

import (
	"testing"

	"github.com/calebrosario/pregame/internal/markets"
)

func vikingsChargers() markets.Matchup {
	return markets.Matchup{Away: "Minnesota Vikings", Home: "Los Angeles Chargers"}
}

func TestCombinePairs(t *testing.T) {
	away := markets.NormalizedMarket{
		Ticker:      "KXNFLGAME-25NOV10MINLAC-MIN",
		EventTicker: "E1",
		Category:    "Games",
		Matchup:     vikingsChargers(),
		SubjectTeam: "Minnesota Vikings",
		Probability: fp(0.62),
		Volume:      fp(150),
	}
	home := markets.NormalizedMarket{
		Ticker:      "KXNFLGAME-25NOV10MINLAC-LAC",
		EventTicker: "E1",
		Category:    "Games",
		Matchup:     vikingsChargers(),
		SubjectTeam: "Los Angeles Chargers",
		Probability: fp(0.41),
		Volume:      fp(90),
	}

	got := markets.CombinePairs([]markets.NormalizedMarket{home, away})
	if len(got) != 1 {
		t.Fatalf("CombinePairs returned %d records, want 1", len(got))
	}
	cm := got[0]

	if cm.SingleSided {
		t.Error("paired market flagged single sided")
	}
	if cm.Away.Team != "Minnesota Vikings" || cm.Away.Ticker != away.Ticker {
		t.Errorf("away side = %+v", cm.Away)
	}
	if cm.Home.Team != "Los Angeles Chargers" || cm.Home.Ticker != home.Ticker {
		t.Errorf("home side = %+v", cm.Home)
	}
	if cm.Away.Probability == nil || *cm.Away.Probability != 0.62 {
		t.Errorf("away probability = %v", cm.Away.Probability)
	}
	if cm.Home.Probability == nil || *cm.Home.Probability != 0.41 {
		t.Errorf("home probability = %v", cm.Home.Probability)
	}
	if cm.Volume == nil || *cm.Volume != 150 {
		t.Errorf("combined volume = %v, want max side volume 150", cm.Volume)
	}
	if cm.DisplayName != "Minnesota Vikings at Los Angeles Chargers" {
		t.Errorf("display = %q", cm.DisplayName)
	}
}

func TestCombinePairsSubjectBeatsLexicalOrder(t *testing.T) {
	// Lexical ticker order would put the LAC contract first; the subject
	// assignment must still land it on the home side.
	a := markets.NormalizedMarket{
		Ticker:      "KXNFLGAME-25NOV10MINLAC-LAC",
		EventTicker: "E1",
		Matchup:     vikingsChargers(),
		SubjectTeam: "Los Angeles Chargers",
	}
	b := markets.NormalizedMarket{
		Ticker:      "KXNFLGAME-25NOV10MINLAC-MIN",
		EventTicker: "E1",
		Matchup:     vikingsChargers(),
		SubjectTeam: "Minnesota Vikings",
	}

	got := markets.CombinePairs([]markets.NormalizedMarket{a, b})
	if len(got) != 1 {
		t.Fatalf("CombinePairs returned %d records, want 1", len(got))
	}
	if got[0].Away.Ticker != b.Ticker || got[0].Home.Ticker != a.Ticker {
		t.Errorf("sides = away %q / home %q", got[0].Away.Ticker, got[0].Home.Ticker)
	}
}

func TestCombinePairsLexicalFallback(t *testing.T) {
	a := markets.NormalizedMarket{Ticker: "T-B", EventTicker: "E1", Volume: fp(10)}
	b := markets.NormalizedMarket{Ticker: "T-A", EventTicker: "E1", Volume: fp(20)}

	got := markets.CombinePairs([]markets.NormalizedMarket{a, b})
	if len(got) != 1 {
		t.Fatalf("CombinePairs returned %d records, want 1", len(got))
	}
	if got[0].Away.Ticker != "T-A" || got[0].Home.Ticker != "T-B" {
		t.Errorf("lexical fallback sides = away %q / home %q", got[0].Away.Ticker, got[0].Home.Ticker)
	}
	if got[0].Volume == nil || *got[0].Volume != 20 {
		t.Errorf("combined volume = %v, want 20", got[0].Volume)
	}
}

func TestCombinePairsUnbalancedGroups(t *testing.T) {
	lone := markets.NormalizedMarket{
		Ticker:      "KXNFLGAME-25NOV10MINLAC-LAC",
		EventTicker: "E1",
		Matchup:     vikingsChargers(),
		SubjectTeam: "Los Angeles Chargers",
		Probability: fp(0.41),
	}
	triple := []markets.NormalizedMarket{
		{Ticker: "X-1", EventTicker: "E2"},
		{Ticker: "X-2", EventTicker: "E2"},
		{Ticker: "X-3", EventTicker: "E2"},
	}

	got := markets.CombinePairs(append([]markets.NormalizedMarket{lone}, triple...))
	if len(got) != 4 {
		t.Fatalf("CombinePairs returned %d records, want 4 (1 + 3 single-sided)", len(got))
	}
	for i, cm := range got {
		if !cm.SingleSided {
			t.Errorf("record %d not flagged single sided", i)
		}
	}
	if got[0].Home.Ticker != lone.Ticker {
		t.Errorf("home-subject lone contract landed on %+v", got[0])
	}
	if got[0].Home.Probability == nil || *got[0].Home.Probability != 0.41 {
		t.Errorf("lone probability = %v", got[0].Home.Probability)
	}
}

func TestCombinePairsKeepsInputOrder(t *testing.T) {
	ms := []markets.NormalizedMarket{
		{Ticker: "B-1", EventTicker: "E2"},
		{Ticker: "A-1", EventTicker: "E1"},
		{Ticker: "A-2", EventTicker: "E1"},
	}

	got := markets.CombinePairs(ms)
	if len(got) != 2 {
		t.Fatalf("CombinePairs returned %d records, want 2", len(got))
	}
	if got[0].EventTicker != "E2" || got[1].EventTicker != "E1" {
		t.Errorf("order = %q, %q; want first-appearance order", got[0].EventTicker, got[1].EventTicker)
	}
}
