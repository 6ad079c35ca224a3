package vocab

// DefaultRules returns the built-in rule tables for the album vocabulary.
// This is the engine's baseline knowledge; deployments extend it through
// the JSON rule files loaded by the config package.
func DefaultRules() *Rules {
	return &Rules{
		Substitutions: []Substitution{
			{Pattern: "&", Replacement: " and ", Literal: true},
			{Pattern: `\bn'?\b`, Replacement: " and "}, // "rock n roll", "rock n' roll"
		},

		// Aliases map cleaned raw forms to canonical forms. Keys are
		// matched both as written and separator-insensitively, so one
		// entry covers "Black-Metal", "black_metal" and "BLACKMETAL".
		Aliases: map[string]string{
			// Run-together spellings.
			"blackmetal":  "black metal",
			"deathmetal":  "death metal",
			"doommetal":   "doom metal",
			"thrashmetal": "thrash metal",
			"heavymetal":  "heavy metal",
			"speedmetal":  "speed metal",
			"powermetal":  "power metal",
			"progrock":    "prog rock",
			"postrock":    "post rock",
			"postpunk":    "post punk",
			"hardrock":    "hard rock",

			// Abbreviations and variants.
			"nwobhm":        "new wave of british heavy metal",
			"prog metal":    "prog metal",
			"sympho metal":  "symphonic metal",
			"avantgarde":    "avant garde",
			"electro":       "electronic",
			"ebm":           "electronic body music",
			"idm":           "intelligent dance music",
			"dnb":           "drum and bass",
			"drumnbass":     "drum and bass",
			"rocknroll":     "rock and roll",
			"rock and roll": "rock and roll",

			// Broad umbrella strings seen in source data.
			"atmospheric black metal": "black metal",
			"true norwegian black metal": "black metal",
		},

		// Long-form tokens shorten inside compounds only; a standalone
		// "progressive" passes through untouched.
		Prefixes: []PrefixRule{
			{From: "progressive", To: "prog"},
			{From: "psychedelic", To: "psych"},
			{From: "alternative", To: "alt"},
			{From: "traditional", To: "trad"},
		},

		StopWords: []string{"music", "genre", "style"},

		Categories: []CategoryRule{
			{Keyword: "metal", Category: "metal"},
			{Keyword: "grindcore", Category: "metal"},
			{Keyword: "rock", Category: "rock"},
			{Keyword: "punk", Category: "rock"},
			{Keyword: "fusion", Category: "fusion"},
			{Keyword: "jazz", Category: "fusion"},
			{Keyword: "experimental", Category: "experimental"},
			{Keyword: "avant", Category: "experimental"},
			{Keyword: "noise", Category: "experimental"},
			{Keyword: "electronic", Category: "electronic"},
			{Keyword: "industrial", Category: "electronic"},
			{Keyword: "ambient", Category: "electronic"},
			{Keyword: "techno", Category: "electronic"},
		},

		Decompositions: []DecompositionRule{
			{Pattern: "blackened death metal", Components: []string{"black metal", "death metal"}},
			{Pattern: "blackened thrash metal", Components: []string{"black metal", "thrash metal"}},
			{Pattern: "melodic death metal", Components: []string{"death metal", "melodic metal"}},
			{Pattern: "prog death metal", Components: []string{"prog metal", "death metal"}},
			{Pattern: "symphonic black metal", Components: []string{"symphonic metal", "black metal"}},
			{Pattern: "jazz fusion", Components: []string{"jazz", "fusion"}},
			{Pattern: "folk metal", Components: []string{"folk", "metal"}},
		},

		AtomicTags: []string{
			"black metal", "death metal", "doom metal", "thrash metal",
			"heavy metal", "speed metal", "power metal", "melodic metal",
			"prog metal", "symphonic metal", "metal",
			"prog rock", "post rock", "hard rock", "rock", "punk", "post punk",
			"jazz", "fusion", "folk", "ambient", "electronic", "industrial",
			"experimental", "noise", "avant garde",
		},
	}
}
