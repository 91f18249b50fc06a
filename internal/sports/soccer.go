package sports

func soccerConfig() *Config {
	return &Config{
		Sport:          Soccer,
		DisplayName:    "Soccer",
		SeriesTicker:   "KXSOCCERGAME",
		OddsKey:        "SOCCER_EPL",
		ESPNSport:      "soccer",
		ESPNLeague:     "eng.1",
		StatCategories: []string{"goals", "assists", "saves"},
		StatLabels:     []string{"Goals", "Assists", "Saves"},
		Categories: map[string]string{
			"GAME":  "Games",
			"SGP":   "Same Game Parlays",
			"GOALS": "Goals",
		},
		Teams: []Team{
			{Name: "Arsenal", Code: "ARS", Variants: []string{"Arsenal"}},
			{Name: "Aston Villa", Code: "AVL", Variants: []string{"Aston Villa", "Villa"}},
			{Name: "Bournemouth", Code: "BOU", Variants: []string{"Bournemouth", "AFC Bournemouth"}},
			{Name: "Brentford", Code: "BRE", Variants: []string{"Brentford"}},
			{Name: "Brighton", Code: "BHA", Variants: []string{"Brighton", "Brighton & Hove Albion"}},
			{Name: "Chelsea", Code: "CHE", Variants: []string{"Chelsea"}},
			{Name: "Crystal Palace", Code: "CRY", Variants: []string{"Crystal Palace", "Palace"}},
			{Name: "Everton", Code: "EVE", Variants: []string{"Everton"}},
			{Name: "Fulham", Code: "FUL", Variants: []string{"Fulham"}},
			{Name: "Ipswich Town", Code: "IPS", Variants: []string{"Ipswich", "Ipswich Town"}},
			{Name: "Leicester City", Code: "LEI", Variants: []string{"Leicester", "Leicester City"}},
			{Name: "Liverpool", Code: "LIV", Variants: []string{"Liverpool"}},
			{Name: "Manchester City", Code: "MCI", Variants: []string{"Manchester City", "Man City"}},
			{Name: "Manchester United", Code: "MUN", Variants: []string{"Manchester United", "Man United", "Man Utd"}},
			{Name: "Newcastle", Code: "NEW", Variants: []string{"Newcastle", "Newcastle United"}},
			{Name: "Nottingham Forest", Code: "NFO", Variants: []string{"Nottingham Forest", "Forest"}},
			{Name: "Southampton", Code: "SOU", Variants: []string{"Southampton"}},
			{Name: "Tottenham", Code: "TOT", Variants: []string{"Tottenham", "Tottenham Hotspur", "Spurs"}},
			{Name: "West Ham", Code: "WHU", Variants: []string{"West Ham", "West Ham United"}},
			{Name: "Wolverhampton", Code: "WOL", Variants: []string{"Wolverhampton", "Wolves", "Wolverhampton Wanderers"}},
		},
	}
}
