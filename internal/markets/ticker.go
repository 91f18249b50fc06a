package markets

import (
	"strings"
	"time"

	"github.com/calebrosario/pregame/internal/sports"
)

// ParsedTicker is the decomposition of an exchange ticker such as
// KXNFLGAME-25NOV10MINLAC-MIN: series code, category suffix, game date, the
// embedded team codes in ticker order, and the trailing subject code on
// market tickers.
type ParsedTicker struct {
	Series       string
	CategoryCode string
	Date         time.Time
	TeamCodes    []string
	Subject      string
	Segments     int
}

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseTicker decomposes ticker against one sport's configuration. It
// reports false when the ticker does not follow the series-date-teams shape;
// callers then fall back to the raw string.
func ParseTicker(ticker string, cfg *sports.Config) (ParsedTicker, bool) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return ParsedTicker{}, false
	}
	parts := strings.Split(t, "-")
	p := ParsedTicker{Series: parts[0], Segments: len(parts)}
	if len(parts) < 2 {
		return ParsedTicker{}, false
	}

	sportToken := strings.ToUpper(string(cfg.Sport))
	body := strings.TrimPrefix(p.Series, "KX")
	if body == p.Series || !strings.HasPrefix(body, sportToken) {
		return ParsedTicker{}, false
	}
	p.CategoryCode = strings.TrimPrefix(body, sportToken)
	if p.CategoryCode == "" {
		return ParsedTicker{}, false
	}

	date, codes, ok := splitEventSegment(parts[1], cfg)
	if !ok {
		return ParsedTicker{}, false
	}
	p.Date = date
	p.TeamCodes = codes

	if len(parts) >= 3 {
		if sub := parts[len(parts)-1]; isAlpha(sub) && len(sub) >= 2 && len(sub) <= 3 {
			p.Subject = sub
		}
	}
	return p, true
}

// splitEventSegment parses a 25NOV10MINLAC-style segment into a date and the
// trailing run of team codes.
func splitEventSegment(seg string, cfg *sports.Config) (time.Time, []string, bool) {
	i := 0
	year := scanDigits(seg, &i, 2)
	if year < 0 || i+3 > len(seg) {
		return time.Time{}, nil, false
	}
	month, ok := months[seg[i:i+3]]
	if !ok {
		return time.Time{}, nil, false
	}
	i += 3
	day := scanDigits(seg, &i, 2)
	if day < 1 || day > 31 {
		return time.Time{}, nil, false
	}
	date := time.Date(2000+year, month, day, 0, 0, 0, 0, time.UTC)

	rest := seg[i:]
	if rest == "" {
		return date, nil, true
	}
	if !isAlpha(rest) {
		return time.Time{}, nil, false
	}
	codes, ok := splitTeamCodes(rest, cfg)
	if !ok {
		// Date parsed but the trailing run is not a clean code sequence;
		// keep the date and let the caller treat the matchup as unknown.
		return date, nil, true
	}
	return date, codes, true
}

// splitTeamCodes cuts a run like MINLAC or KCGB into team codes by matching
// greedily from the end of the string, longest code first. Codes are two or
// three letters and not fixed width, so scanning from the front would be
// ambiguous; the per-sport code sets are collision-checked at build time,
// which makes the backward greedy scan deterministic.
func splitTeamCodes(s string, cfg *sports.Config) ([]string, bool) {
	var rev []string
	for len(s) > 0 {
		matched := false
		for _, n := range []int{3, 2} {
			if len(s) < n {
				continue
			}
			if cfg.IsTeamCode(s[len(s)-n:]) {
				rev = append(rev, s[len(s)-n:])
				s = s[:len(s)-n]
				matched = true
				break
			}
		}
		if !matched {
			return nil, false
		}
	}
	codes := make([]string, len(rev))
	for i, c := range rev {
		codes[len(rev)-1-i] = c
	}
	return codes, true
}

// scanDigits reads up to max digits at *i, returning -1 when none found.
func scanDigits(s string, i *int, max int) int {
	start := *i
	v := 0
	for *i < len(s) && *i-start < max && s[*i] >= '0' && s[*i] <= '9' {
		v = v*10 + int(s[*i]-'0')
		*i++
	}
	if *i == start {
		return -1
	}
	return v
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
