package sports

func nbaConfig() *Config {
	return &Config{
		Sport:          NBA,
		DisplayName:    "NBA",
		SeriesTicker:   "KXNBAGAME",
		OddsKey:        "BASKETBALL_NBA",
		ESPNSport:      "basketball",
		ESPNLeague:     "nba",
		StatCategories: []string{"points", "rebounds", "assists"},
		StatLabels:     []string{"Points", "Rebounds", "Assists"},
		Categories: map[string]string{
			"GAME": "Games",
			"SGP":  "Same Game Parlays",
			"PTS":  "Points",
			"REB":  "Rebounds",
			"AST":  "Assists",
		},
		Teams: []Team{
			{Name: "Atlanta Hawks", Code: "ATL", Variants: []string{"Atlanta", "Hawks"}},
			{Name: "Boston Celtics", Code: "BOS", Variants: []string{"Boston", "Celtics"}},
			{Name: "Brooklyn Nets", Code: "BKN", Variants: []string{"Brooklyn", "Nets"}},
			{Name: "Charlotte Hornets", Code: "CHA", Variants: []string{"Charlotte", "Hornets"}},
			{Name: "Chicago Bulls", Code: "CHI", Variants: []string{"Chicago", "Bulls"}},
			{Name: "Cleveland Cavaliers", Code: "CLE", Variants: []string{"Cleveland", "Cavaliers", "Cavs"}},
			{Name: "Dallas Mavericks", Code: "DAL", Variants: []string{"Dallas", "Mavericks", "Mavs"}},
			{Name: "Denver Nuggets", Code: "DEN", Variants: []string{"Denver", "Nuggets"}},
			{Name: "Detroit Pistons", Code: "DET", Variants: []string{"Detroit", "Pistons"}},
			{Name: "Golden State Warriors", Code: "GSW", Variants: []string{"Golden State", "Warriors", "GS"}},
			{Name: "Houston Rockets", Code: "HOU", Variants: []string{"Houston", "Rockets"}},
			{Name: "Indiana Pacers", Code: "IND", Variants: []string{"Indiana", "Pacers"}},
			{Name: "Los Angeles Clippers", Code: "LAC", Variants: []string{"Los Angeles Clippers", "LA Clippers", "Clippers"}},
			{Name: "Los Angeles Lakers", Code: "LAL", Variants: []string{"Los Angeles Lakers", "LA Lakers", "Lakers"}},
			{Name: "Memphis Grizzlies", Code: "MEM", Variants: []string{"Memphis", "Grizzlies"}},
			{Name: "Miami Heat", Code: "MIA", Variants: []string{"Miami", "Heat"}},
			{Name: "Milwaukee Bucks", Code: "MIL", Variants: []string{"Milwaukee", "Bucks"}},
			{Name: "Minnesota Timberwolves", Code: "MIN", Variants: []string{"Minnesota", "Timberwolves", "Wolves"}},
			{Name: "New Orleans Pelicans", Code: "NOP", Variants: []string{"New Orleans", "Pelicans", "NO"}},
			{Name: "New York Knicks", Code: "NYK", Variants: []string{"New York Knicks", "NY Knicks", "Knicks"}},
			{Name: "Oklahoma City Thunder", Code: "OKC", Variants: []string{"Oklahoma City", "Thunder"}},
			{Name: "Orlando Magic", Code: "ORL", Variants: []string{"Orlando", "Magic"}},
			{Name: "Philadelphia 76ers", Code: "PHI", Variants: []string{"Philadelphia", "76ers", "Sixers"}},
			{Name: "Phoenix Suns", Code: "PHX", Variants: []string{"Phoenix", "Suns"}},
			{Name: "Portland Trail Blazers", Code: "POR", Variants: []string{"Portland", "Trail Blazers", "Blazers"}},
			{Name: "Sacramento Kings", Code: "SAC", Variants: []string{"Sacramento", "Kings"}},
			{Name: "San Antonio Spurs", Code: "SAS", Variants: []string{"San Antonio", "Spurs"}},
			{Name: "Toronto Raptors", Code: "TOR", Variants: []string{"Toronto", "Raptors"}},
			{Name: "Utah Jazz", Code: "UTA", Variants: []string{"Utah", "Jazz"}},
			{Name: "Washington Wizards", Code: "WAS", Variants: []string{"Washington", "Wizards"}},
		},
	}
}
