package odds

// Quote is one bookmaker's moneyline price for one team in one matchup.
type Quote struct {
	Bookmaker string `json:"bookmaker"`
	Team      string `json:"team"`
	Price     int    `json:"price"`
}

// TeamOdds is the aggregate view of one team's quotes: the plain arithmetic
// mean of implied probabilities (no vig adjustment) and the single best
// price for a bettor with its source book.
type TeamOdds struct {
	Team            string  `json:"team"`
	Consensus       float64 `json:"consensus_probability"`
	Bookmakers      int     `json:"num_bookmakers"`
	BestPrice       int     `json:"best_price"`
	BestBookmaker   string  `json:"best_bookmaker"`
	BestProbability float64 `json:"best_probability"`
}

// ConsensusOdds aggregates a set of quotes for one matchup. Teams appear in
// first-quote order. Quotes that fail conversion are excluded from the mean
// and surfaced in Rejected instead of corrupting it.
type ConsensusOdds struct {
	Teams    []TeamOdds `json:"teams"`
	Rejected []Quote    `json:"rejected,omitempty"`
}

// Aggregate computes per-team consensus and best-price discovery over a
// quote set. The best price is the numerically largest American value for
// the team: -140 beats -160, +210 beats +190, any positive beats any
// negative, matching the price a bettor would take.
func Aggregate(quotes []Quote) ConsensusOdds {
	type acc struct {
		sum     float64
		n       int
		best    Quote
		bestSet bool
	}

	accs := make(map[string]*acc)
	var order []string
	var rejected []Quote

	for _, q := range quotes {
		p, err := AmericanToProbability(q.Price)
		if err != nil {
			rejected = append(rejected, q)
			continue
		}
		a, ok := accs[q.Team]
		if !ok {
			a = &acc{}
			accs[q.Team] = a
			order = append(order, q.Team)
		}
		a.sum += p
		a.n++
		if !a.bestSet || q.Price > a.best.Price {
			a.best = q
			a.bestSet = true
		}
	}

	out := ConsensusOdds{Rejected: rejected}
	for _, team := range order {
		a := accs[team]
		bestProb, _ := AmericanToProbability(a.best.Price)
		out.Teams = append(out.Teams, TeamOdds{
			Team:            team,
			Consensus:       a.sum / float64(a.n),
			Bookmakers:      a.n,
			BestPrice:       a.best.Price,
			BestBookmaker:   a.best.Bookmaker,
			BestProbability: bestProb,
		})
	}
	return out
}

// ForTeam returns the aggregate for one team by name, nil when absent.
func (c ConsensusOdds) ForTeam(team string) *TeamOdds {
	for i := range c.Teams {
		if c.Teams[i].Team == team {
			return &c.Teams[i]
		}
	}
	return nil
}
