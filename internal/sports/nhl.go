package sports

func nhlConfig() *Config {
	return &Config{
		Sport:          NHL,
		DisplayName:    "NHL",
		SeriesTicker:   "KXNHLGAME",
		OddsKey:        "ICEHOCKEY_NHL",
		ESPNSport:      "hockey",
		ESPNLeague:     "nhl",
		StatCategories: []string{"goals", "assists", "points"},
		StatLabels:     []string{"Goals", "Assists", "Points"},
		Categories: map[string]string{
			"GAME":  "Games",
			"SGP":   "Same Game Parlays",
			"GOALS": "Goals",
			"SAVES": "Saves",
		},
		Teams: []Team{
			{Name: "Anaheim Ducks", Code: "ANA", Variants: []string{"Anaheim", "Ducks"}},
			{Name: "Arizona Coyotes", Code: "ARI", Variants: []string{"Arizona", "Coyotes"}},
			{Name: "Boston Bruins", Code: "BOS", Variants: []string{"Boston", "Bruins"}},
			{Name: "Buffalo Sabres", Code: "BUF", Variants: []string{"Buffalo", "Sabres"}},
			{Name: "Calgary Flames", Code: "CGY", Variants: []string{"Calgary", "Flames"}},
			{Name: "Carolina Hurricanes", Code: "CAR", Variants: []string{"Carolina", "Hurricanes", "Canes"}},
			{Name: "Chicago Blackhawks", Code: "CHI", Variants: []string{"Chicago", "Blackhawks"}},
			{Name: "Colorado Avalanche", Code: "COL", Variants: []string{"Colorado", "Avalanche", "Avs"}},
			{Name: "Columbus Blue Jackets", Code: "CBJ", Variants: []string{"Columbus", "Blue Jackets"}},
			{Name: "Dallas Stars", Code: "DAL", Variants: []string{"Dallas", "Stars"}},
			{Name: "Detroit Red Wings", Code: "DET", Variants: []string{"Detroit", "Red Wings"}},
			{Name: "Edmonton Oilers", Code: "EDM", Variants: []string{"Edmonton", "Oilers"}},
			{Name: "Florida Panthers", Code: "FLA", Variants: []string{"Florida", "Panthers"}},
			{Name: "Los Angeles Kings", Code: "LAK", Variants: []string{"Los Angeles Kings", "LA Kings", "Kings"}},
			{Name: "Minnesota Wild", Code: "MIN", Variants: []string{"Minnesota", "Wild"}},
			{Name: "Montreal Canadiens", Code: "MTL", Variants: []string{"Montreal", "Canadiens", "Habs"}},
			{Name: "Nashville Predators", Code: "NSH", Variants: []string{"Nashville", "Predators", "Preds"}},
			{Name: "New Jersey Devils", Code: "NJD", Variants: []string{"New Jersey", "Devils", "NJ"}},
			{Name: "New York Islanders", Code: "NYI", Variants: []string{"New York Islanders", "NY Islanders", "Islanders"}},
			{Name: "New York Rangers", Code: "NYR", Variants: []string{"New York Rangers", "NY Rangers", "Rangers"}},
			{Name: "Ottawa Senators", Code: "OTT", Variants: []string{"Ottawa", "Senators", "Sens"}},
			{Name: "Philadelphia Flyers", Code: "PHI", Variants: []string{"Philadelphia", "Flyers"}},
			{Name: "Pittsburgh Penguins", Code: "PIT", Variants: []string{"Pittsburgh", "Penguins", "Pens"}},
			{Name: "San Jose Sharks", Code: "SJS", Variants: []string{"San Jose", "Sharks", "SJ"}},
			{Name: "Seattle Kraken", Code: "SEA", Variants: []string{"Seattle", "Kraken"}},
			{Name: "St. Louis Blues", Code: "STL", Variants: []string{"St. Louis", "St Louis", "Blues"}},
			{Name: "Tampa Bay Lightning", Code: "TBL", Variants: []string{"Tampa Bay", "Lightning", "TB"}},
			{Name: "Toronto Maple Leafs", Code: "TOR", Variants: []string{"Toronto", "Maple Leafs", "Leafs"}},
			{Name: "Vancouver Canucks", Code: "VAN", Variants: []string{"Vancouver", "Canucks"}},
			{Name: "Vegas Golden Knights", Code: "VGK", Variants: []string{"Vegas", "Golden Knights", "Knights"}},
			{Name: "Washington Capitals", Code: "WSH", Variants: []string{"Washington", "Capitals", "Caps"}},
			{Name: "Winnipeg Jets", Code: "WPG", Variants: []string{"Winnipeg", "Jets"}},
		},
	}
}
