package sports

func nflConfig() *Config {
	return &Config{
		Sport:          NFL,
		DisplayName:    "NFL",
		SeriesTicker:   "KXNFLGAME",
		OddsKey:        "AMERICANFOOTBALL_NFL",
		ESPNSport:      "football",
		ESPNLeague:     "nfl",
		StatCategories: []string{"passing", "rushing", "receiving"},
		StatLabels:     []string{"Passing", "Rushing", "Receiving"},
		Categories: map[string]string{
			"GAME":    "Games",
			"SGP":     "Same Game Parlays",
			"PASSYDS": "Passing Yards",
			"RUSHYDS": "Rushing Yards",
			"RECYDS":  "Receiving Yards",
			"PASSTDS": "Passing Touchdowns",
		},
		Teams: []Team{
			{Name: "Arizona Cardinals", Code: "ARI", Variants: []string{"Arizona", "Cardinals"}},
			{Name: "Atlanta Falcons", Code: "ATL", Variants: []string{"Atlanta", "Falcons"}},
			{Name: "Baltimore Ravens", Code: "BAL", Variants: []string{"Baltimore", "Ravens"}},
			{Name: "Buffalo Bills", Code: "BUF", Variants: []string{"Buffalo", "Bills"}},
			{Name: "Carolina Panthers", Code: "CAR", Variants: []string{"Carolina", "Panthers"}},
			{Name: "Chicago Bears", Code: "CHI", Variants: []string{"Chicago", "Bears"}},
			{Name: "Cincinnati Bengals", Code: "CIN", Variants: []string{"Cincinnati", "Bengals"}},
			{Name: "Cleveland Browns", Code: "CLE", Variants: []string{"Cleveland", "Browns"}},
			{Name: "Dallas Cowboys", Code: "DAL", Variants: []string{"Dallas", "Cowboys"}},
			{Name: "Denver Broncos", Code: "DEN", Variants: []string{"Denver", "Broncos"}},
			{Name: "Detroit Lions", Code: "DET", Variants: []string{"Detroit", "Lions"}},
			{Name: "Green Bay Packers", Code: "GB", Variants: []string{"Green Bay", "Packers", "GNB"}},
			{Name: "Houston Texans", Code: "HOU", Variants: []string{"Houston", "Texans"}},
			{Name: "Indianapolis Colts", Code: "IND", Variants: []string{"Indianapolis", "Colts"}},
			{Name: "Jacksonville Jaguars", Code: "JAX", Variants: []string{"Jacksonville", "Jaguars", "JAC"}},
			{Name: "Kansas City Chiefs", Code: "KC", Variants: []string{"Kansas City", "Chiefs", "KAN"}},
			{Name: "Las Vegas Raiders", Code: "LV", Variants: []string{"Las Vegas", "Raiders", "Oakland", "LVR"}},
			{Name: "Los Angeles Chargers", Code: "LAC", Variants: []string{"Los Angeles Chargers", "LA Chargers", "Chargers"}},
			{Name: "Los Angeles Rams", Code: "LAR", Variants: []string{"Los Angeles Rams", "LA Rams", "Rams"}},
			{Name: "Miami Dolphins", Code: "MIA", Variants: []string{"Miami", "Dolphins"}},
			{Name: "Minnesota Vikings", Code: "MIN", Variants: []string{"Minnesota", "Vikings"}},
			{Name: "New England Patriots", Code: "NE", Variants: []string{"New England", "Patriots", "NWE"}},
			{Name: "New Orleans Saints", Code: "NO", Variants: []string{"New Orleans", "Saints", "NOR"}},
			{Name: "New York Giants", Code: "NYG", Variants: []string{"New York Giants", "NY Giants", "Giants"}},
			{Name: "New York Jets", Code: "NYJ", Variants: []string{"New York Jets", "NY Jets", "Jets"}},
			{Name: "Philadelphia Eagles", Code: "PHI", Variants: []string{"Philadelphia", "Eagles"}},
			{Name: "Pittsburgh Steelers", Code: "PIT", Variants: []string{"Pittsburgh", "Steelers"}},
			{Name: "San Francisco 49ers", Code: "SF", Variants: []string{"San Francisco", "49ers", "SFO"}},
			{Name: "Seattle Seahawks", Code: "SEA", Variants: []string{"Seattle", "Seahawks"}},
			{Name: "Tampa Bay Buccaneers", Code: "TB", Variants: []string{"Tampa Bay", "Buccaneers", "TAM"}},
			{Name: "Tennessee Titans", Code: "TEN", Variants: []string{"Tennessee", "Titans"}},
			{Name: "Washington Commanders", Code: "WAS", Variants: []string{"Washington", "Commanders", "Washington Football Team"}},
		},
	}
}
