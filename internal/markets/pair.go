package markets

import "time"

// CombinePairs groups normalized markets by parent event and merges each
// two-contract group into one CombinedMarket. Groups of any other size pass
// through as flagged single-sided records. Output order follows the first
// appearance of each event in the input and is stable across refetches.
func CombinePairs(ms []NormalizedMarket) []CombinedMarket {
	groups := make(map[string][]NormalizedMarket)
	var eventOrder []string
	for _, m := range ms {
		key := m.EventTicker
		if key == "" {
			key = m.Ticker
		}
		if _, ok := groups[key]; !ok {
			eventOrder = append(eventOrder, key)
		}
		groups[key] = append(groups[key], m)
	}

	out := make([]CombinedMarket, 0, len(eventOrder))
	for _, key := range eventOrder {
		group := groups[key]
		if len(group) == 2 {
			out = append(out, combine(group[0], group[1]))
			continue
		}
		for _, m := range group {
			out = append(out, singleSided(m))
		}
	}
	return out
}

func combine(a, b NormalizedMarket) CombinedMarket {
	matchup := a.Matchup
	if matchup.IsGeneral() {
		matchup = b.Matchup
	}
	away, home := orderSides(a, b, matchup)

	category := a.Category
	if category == CategoryOther && b.Category != CategoryOther && b.Category != "" {
		category = b.Category
	}

	cm := CombinedMarket{
		EventTicker:  a.EventTicker,
		Category:     category,
		Matchup:      matchup,
		DisplayName:  a.DisplayName,
		Away:         sideFor(away, matchup.Away),
		Home:         sideFor(home, matchup.Home),
		Volume:       maxFloat(a.Volume, b.Volume),
		OpenInterest: sumFloat(a.OpenInterest, b.OpenInterest),
		GameDate:     a.GameDate,
		CloseTime:    earliest(a.CloseTime, b.CloseTime),
	}
	if !matchup.IsGeneral() {
		cm.DisplayName = matchup.Label()
	}
	if cm.GameDate.IsZero() {
		cm.GameDate = b.GameDate
	}
	return cm
}

// orderSides decides which contract is the away side. The subject team wins
// when it identifies a side; otherwise ticker lexical order keeps the
// assignment deterministic across refetches.
func orderSides(a, b NormalizedMarket, m Matchup) (NormalizedMarket, NormalizedMarket) {
	if !m.IsGeneral() {
		switch {
		case a.SubjectTeam == m.Away && b.SubjectTeam != m.Away:
			return a, b
		case b.SubjectTeam == m.Away && a.SubjectTeam != m.Away:
			return b, a
		case a.SubjectTeam == m.Home && b.SubjectTeam != m.Home:
			return b, a
		case b.SubjectTeam == m.Home && a.SubjectTeam != m.Home:
			return a, b
		}
	}
	if a.Ticker <= b.Ticker {
		return a, b
	}
	return b, a
}

func sideFor(m NormalizedMarket, team string) Side {
	if team == "" {
		team = m.SubjectTeam
	}
	return Side{
		Team:        team,
		Ticker:      m.Ticker,
		Probability: copyFloat(m.Probability),
	}
}

func singleSided(m NormalizedMarket) CombinedMarket {
	cm := CombinedMarket{
		EventTicker:  m.EventTicker,
		Category:     m.Category,
		Matchup:      m.Matchup,
		DisplayName:  m.DisplayName,
		Volume:       copyFloat(m.Volume),
		OpenInterest: copyFloat(m.OpenInterest),
		GameDate:     m.GameDate,
		CloseTime:    m.CloseTime,
		SingleSided:  true,
	}
	side := Side{Team: m.SubjectTeam, Ticker: m.Ticker, Probability: copyFloat(m.Probability)}
	if side.Team == "" && !m.Matchup.IsGeneral() {
		side.Team = m.Matchup.Away
	}
	if side.Team != "" && side.Team == m.Matchup.Home {
		cm.Home = side
	} else {
		cm.Away = side
	}
	return cm
}

func maxFloat(a, b *float64) *float64 {
	switch {
	case a == nil:
		return copyFloat(b)
	case b == nil:
		return copyFloat(a)
	case *a >= *b:
		return copyFloat(a)
	}
	return copyFloat(b)
}

func sumFloat(a, b *float64) *float64 {
	switch {
	case a == nil:
		return copyFloat(b)
	case b == nil:
		return copyFloat(a)
	}
	v := *a + *b
	return &v
}

func earliest(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	if b.IsZero() || a.Before(b) {
		return a
	}
	return b
}
