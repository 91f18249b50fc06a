package sports

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sport identifies one supported league.
type Sport string

const (
	NFL    Sport = "nfl"
	NBA    Sport = "nba"
	NHL    Sport = "nhl"
	Soccer Sport = "soccer"
)

var ErrUnknownSport = errors.New("sports: unknown sport")

// Team is one registry entry: canonical name, exchange code, and the
// alternate spellings seen in upstream titles and odds feeds.
type Team struct {
	Name     string
	Code     string
	Variants []string
}

// Config is the immutable per-sport configuration. Values are built once at
// process start; callers receive shared read-only pointers.
type Config struct {
	Sport          Sport
	DisplayName    string
	SeriesTicker   string
	OddsKey        string
	ESPNSport      string
	ESPNLeague     string
	StatCategories []string
	StatLabels     []string
	Teams          []Team

	// Categories maps series-code suffixes (series ticker minus the
	// KX+sport prefix) to display categories, e.g. GAME -> "Games".
	Categories map[string]string

	variants map[string]string
	codes    map[string]string
	names    []string
	expand   []expandEntry
}

type expandEntry struct {
	lower     string
	canonical string
}

var configs = map[Sport]*Config{}

var order = []Sport{NFL, NBA, NHL, Soccer}

func init() {
	for _, c := range []*Config{nflConfig(), nbaConfig(), nhlConfig(), soccerConfig()} {
		c.build()
		configs[c.Sport] = c
	}
}

// ParseSport normalizes a user-supplied sport string.
func ParseSport(s string) (Sport, error) {
	sp := Sport(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := configs[sp]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSport, s)
	}
	return sp, nil
}

// ForSport returns the configuration for one sport.
func ForSport(s Sport) (*Config, error) {
	cfg, ok := configs[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSport, s)
	}
	return cfg, nil
}

// All returns every configured sport in stable order.
func All() []*Config {
	out := make([]*Config, 0, len(order))
	for _, s := range order {
		out = append(out, configs[s])
	}
	return out
}

// build derives the lookup maps. Duplicate variants pointing at different
// teams are a table bug and panic here rather than resolving arbitrarily at
// request time.
func (c *Config) build() {
	c.variants = make(map[string]string)
	c.codes = make(map[string]string, len(c.Teams))
	c.names = make([]string, 0, len(c.Teams))
	for _, t := range c.Teams {
		c.names = append(c.names, t.Name)
		c.addVariant(t.Name, t.Name)
		c.addVariant(t.Code, t.Name)
		for _, v := range t.Variants {
			c.addVariant(v, t.Name)
		}
		code := strings.ToUpper(t.Code)
		if prev, ok := c.codes[code]; ok && prev != t.Name {
			panic(fmt.Sprintf("sports: %s code %q maps to both %q and %q", c.Sport, code, prev, t.Name))
		}
		c.codes[code] = t.Name
	}
	c.expand = make([]expandEntry, 0, len(c.variants))
	for v, name := range c.variants {
		c.expand = append(c.expand, expandEntry{lower: v, canonical: name})
	}
	sort.Slice(c.expand, func(i, j int) bool {
		if len(c.expand[i].lower) != len(c.expand[j].lower) {
			return len(c.expand[i].lower) > len(c.expand[j].lower)
		}
		return c.expand[i].lower < c.expand[j].lower
	})
}

func (c *Config) addVariant(v, canonical string) {
	key := strings.ToLower(strings.TrimSpace(v))
	if key == "" {
		return
	}
	if prev, ok := c.variants[key]; ok && prev != canonical {
		panic(fmt.Sprintf("sports: %s variant %q maps to both %q and %q", c.Sport, v, prev, canonical))
	}
	c.variants[key] = canonical
}

// ResolveTeam maps a name variant to the canonical team name. Exact
// case-insensitive lookup first, then a containment pass against canonical
// names for partial names embedded in longer strings. A miss reports false;
// callers keep the raw string.
func (c *Config) ResolveTeam(variant string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(variant))
	if q == "" {
		return "", false
	}
	if name, ok := c.variants[q]; ok {
		return name, true
	}
	if len(q) < 3 {
		return "", false
	}
	for _, name := range c.names {
		ln := strings.ToLower(name)
		if strings.Contains(ln, q) || strings.Contains(q, ln) {
			return name, true
		}
	}
	return "", false
}

// TeamByCode maps an exchange team code (e.g. MIN) to the canonical name.
func (c *Config) TeamByCode(code string) (string, bool) {
	name, ok := c.codes[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// IsTeamCode reports whether code is a known exchange code for this sport.
func (c *Config) IsTeamCode(code string) bool {
	_, ok := c.codes[strings.ToUpper(code)]
	return ok
}

// CategoryName maps a series-code suffix to its display category.
func (c *Config) CategoryName(code string) (string, bool) {
	name, ok := c.Categories[strings.ToUpper(code)]
	return name, ok
}

// TeamNames returns the canonical names in registry order.
func (c *Config) TeamNames() []string {
	return c.names
}

// ExpandTeamNames rewrites known abbreviations and partial team names inside
// text to canonical full names. Matching is case-insensitive on word
// boundaries, longest variant first, single left-to-right pass so already
// expanded names are not expanded again. Short codes must appear uppercase
// and longer variants capitalized, so prose words like "was" or "no" that
// collide with codes are left alone.
func (c *Config) ExpandTeamNames(text string) string {
	if text == "" {
		return text
	}
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(text) + 32)
	i := 0
	for i < len(text) {
		if !wordStart(lower, i) {
			b.WriteByte(text[i])
			i++
			continue
		}
		matched := false
		for _, e := range c.expand {
			end := i + len(e.lower)
			if end > len(lower) || lower[i:end] != e.lower {
				continue
			}
			if !wordEnd(lower, end) || !expandable(text[i:end]) {
				continue
			}
			b.WriteString(e.canonical)
			i = end
			matched = true
			break
		}
		if !matched {
			b.WriteByte(text[i])
			i++
		}
	}
	return b.String()
}

func expandable(orig string) bool {
	if len(orig) <= 3 {
		for i := 0; i < len(orig); i++ {
			b := orig[i]
			if b >= 'a' && b <= 'z' {
				return false
			}
		}
		return true
	}
	first := orig[0]
	return first >= 'A' && first <= 'Z' || first >= '0' && first <= '9'
}

func wordStart(s string, i int) bool {
	if i == 0 {
		return isWordByte(s[i])
	}
	return isWordByte(s[i]) && !isWordByte(s[i-1])
}

func wordEnd(s string, end int) bool {
	return end == len(s) || !isWordByte(s[end])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// NamesMatch reports whether two team name strings plausibly refer to the
// same team: exact match, containment either way, or matching nickname
// (last word). Used when joining odds-feed and stats-feed team names.
func NamesMatch(a, b string) bool {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return lastWord(na) == lastWord(nb)
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
