// Package markets holds the normalization pipeline that turns raw exchange
// market records into display-ready, paired game markets. Everything here is
// a pure function of its inputs plus the static sport configuration.
package markets

import (
	"time"
)

// RawMarket is one market record as returned by the exchange feed. Numeric
// fields are pointers so an absent field is distinguishable from zero. The
// record is treated as immutable.
type RawMarket struct {
	Ticker       string     `json:"ticker"`
	EventTicker  string     `json:"event_ticker"`
	Title        string     `json:"title,omitempty"`
	Subtitle     string     `json:"subtitle,omitempty"`
	YesBid       *float64   `json:"yes_bid,omitempty"`
	YesAsk       *float64   `json:"yes_ask,omitempty"`
	LastPrice    *float64   `json:"last_price,omitempty"`
	Midpoint     *float64   `json:"midpoint,omitempty"`
	Volume       *float64   `json:"volume,omitempty"`
	Volume24h    *float64   `json:"volume_24h,omitempty"`
	Liquidity    *float64   `json:"liquidity,omitempty"`
	OpenInterest *float64   `json:"open_interest,omitempty"`
	Status       string     `json:"status,omitempty"`
	CloseTime    time.Time  `json:"close_time"`
}

// Matchup is the ordered away/home pairing for one game. The zero Matchup is
// the General sentinel used when a market has no team pairing.
type Matchup struct {
	Away string `json:"away,omitempty"`
	Home string `json:"home,omitempty"`
}

func (m Matchup) IsGeneral() bool {
	return m.Away == "" && m.Home == ""
}

// Label renders the matchup for display, "General" for the sentinel.
func (m Matchup) Label() string {
	if m.IsGeneral() {
		return "General"
	}
	return m.Away + " at " + m.Home
}

// NormalizedMarket is the display-ready form of one RawMarket. Nil pointer
// fields mean "no data", never an error.
type NormalizedMarket struct {
	Ticker       string    `json:"ticker"`
	EventTicker  string    `json:"event_ticker"`
	Category     string    `json:"category"`
	Matchup      Matchup   `json:"matchup"`
	DisplayName  string    `json:"display_name"`
	SubjectTeam  string    `json:"subject_team,omitempty"`
	Probability  *float64  `json:"probability"`
	Volume       *float64  `json:"volume"`
	OpenInterest *float64  `json:"open_interest"`
	GameDate     time.Time `json:"game_date"`
	CloseTime    time.Time `json:"close_time"`
}

// Side is one team's contract inside a CombinedMarket.
type Side struct {
	Team        string   `json:"team,omitempty"`
	Ticker      string   `json:"ticker,omitempty"`
	Probability *float64 `json:"probability"`
}

// CombinedMarket merges the two opposing contracts of one game event. A
// single-sided record carries only one populated side and is flagged, never
// dropped.
type CombinedMarket struct {
	EventTicker  string    `json:"event_ticker"`
	Category     string    `json:"category"`
	Matchup      Matchup   `json:"matchup"`
	DisplayName  string    `json:"display_name"`
	Away         Side      `json:"away"`
	Home         Side      `json:"home"`
	Volume       *float64  `json:"volume"`
	OpenInterest *float64  `json:"open_interest"`
	GameDate     time.Time `json:"game_date"`
	CloseTime    time.Time `json:"close_time"`
	SingleSided  bool      `json:"single_sided,omitempty"`
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
