package markets

import (
	"strings"

	"github.com/calebrosario/pregame/internal/sports"
)

// CategoryOther is the category for tickers that fit no known series.
const CategoryOther = "Other"

// CategoryParlay is the category for multi-leg tickers with no series match.
const CategoryParlay = "Same Game Parlays"

// Normalizer converts raw exchange records into NormalizedMarket values for
// one sport. It is stateless beyond the sport configuration and safe for
// concurrent use.
type Normalizer struct {
	cfg *sports.Config
}

func NewNormalizer(cfg *sports.Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize is best-effort and never fails: fields that cannot be derived
// are left nil or empty and consumers treat them as "no data".
func (n *Normalizer) Normalize(raw RawMarket) NormalizedMarket {
	nm := NormalizedMarket{
		Ticker:       raw.Ticker,
		EventTicker:  raw.EventTicker,
		Probability:  ResolveProbability(&raw),
		Volume:       ResolveVolume(&raw),
		OpenInterest: copyFloat(raw.OpenInterest),
		CloseTime:    raw.CloseTime,
	}

	parsed, ok := ParseTicker(raw.Ticker, n.cfg)
	if !ok {
		nm.Category = CategoryOther
		nm.DisplayName = n.displayName(raw, nm.Matchup)
		return nm
	}

	nm.Category = n.category(parsed)
	nm.GameDate = parsed.Date
	nm.Matchup = n.matchup(parsed.TeamCodes)
	nm.SubjectTeam = n.subjectTeam(parsed, raw, nm.Matchup)
	nm.DisplayName = n.displayName(raw, nm.Matchup)
	return nm
}

func (n *Normalizer) category(p ParsedTicker) string {
	if name, ok := n.cfg.CategoryName(p.CategoryCode); ok {
		return name
	}
	if p.Segments > 3 {
		return CategoryParlay
	}
	return CategoryOther
}

// matchup resolves the embedded team codes to canonical names; the last two
// codes are away then home. Codes missing from the registry pass through as
// raw strings rather than failing the record.
func (n *Normalizer) matchup(codes []string) Matchup {
	if len(codes) < 2 {
		return Matchup{}
	}
	return Matchup{
		Away: n.teamName(codes[len(codes)-2]),
		Home: n.teamName(codes[len(codes)-1]),
	}
}

func (n *Normalizer) teamName(code string) string {
	if name, ok := n.cfg.TeamByCode(code); ok {
		return name
	}
	return code
}

// subjectTeam identifies which team the YES side of the contract refers to:
// the trailing ticker code when it resolves, then the subtitle (upstream
// labels the YES outcome there), then whichever matchup side appears alone
// in the title.
func (n *Normalizer) subjectTeam(p ParsedTicker, raw RawMarket, m Matchup) string {
	if p.Subject != "" {
		if name, ok := n.cfg.TeamByCode(p.Subject); ok {
			return name
		}
	}
	if sub := strings.TrimSpace(raw.Subtitle); sub != "" {
		if name, ok := n.cfg.ResolveTeam(sub); ok {
			return name
		}
	}
	if m.IsGeneral() {
		return ""
	}
	text := strings.ToLower(raw.Title)
	awayHit := m.Away != "" && strings.Contains(text, strings.ToLower(m.Away))
	homeHit := m.Home != "" && strings.Contains(text, strings.ToLower(m.Home))
	switch {
	case awayHit && !homeHit:
		return m.Away
	case homeHit && !awayHit:
		return m.Home
	}
	return ""
}

// displayName prefers the upstream title with partial team names expanded,
// then a matchup-derived name, then the raw ticker.
func (n *Normalizer) displayName(raw RawMarket, m Matchup) string {
	if title := strings.TrimSpace(raw.Title); title != "" {
		return n.cfg.ExpandTeamNames(title)
	}
	if !m.IsGeneral() {
		return m.Label()
	}
	return raw.Ticker
}
