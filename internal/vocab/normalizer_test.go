package vocab

import "testing"

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(DefaultRules())
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	return n
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		input    string
		expected string
	}{
		// Case and separator variants collapse to one canonical form.
		{"Black-Metal", "black metal"},
		{"black_metal", "black metal"},
		{"BLACKMETAL", "black metal"},
		{"black metal", "black metal"},
		{"  Black Metal  ", "black metal"},
		// Alias resolution.
		{"atmospheric black metal", "black metal"},
		{"Prog-Rock", "prog rock"},
		{"progrock", "prog rock"},
		// Prefix standardization inside compounds only.
		{"progressive rock", "prog rock"},
		{"Progressive Metal", "prog metal"},
		{"progressive", "progressive"},
		{"psychedelic rock", "psych rock"},
		// Substitutions.
		{"Rock & Roll", "rock and roll"},
		// Stop words.
		{"metal music", "metal"},
		// Edge cases.
		{"", ""},
		{"   ", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := n.Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := newTestNormalizer(t)

	inputs := []string{
		"Black-Metal", "BLACKMETAL", "progressive rock", "Rock & Roll",
		"atmospheric black metal", "metal music", "doom metal",
	}

	for _, input := range inputs {
		once := n.Normalize(input)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize(%q): not idempotent: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeCaching(t *testing.T) {
	n := newTestNormalizer(t)

	first := n.Normalize("Black-Metal")
	second := n.Normalize("Black-Metal")
	if first != second {
		t.Fatalf("cached result differs: %q != %q", first, second)
	}

	n.ClearCache()
	third := n.Normalize("Black-Metal")
	if first != third {
		t.Fatalf("result changed after ClearCache: %q != %q", first, third)
	}
}

func TestReload(t *testing.T) {
	n := newTestNormalizer(t)

	if got := n.Normalize("kvlt"); got != "kvlt" {
		t.Fatalf("Normalize(kvlt) = %q before reload, want passthrough", got)
	}

	rules := DefaultRules()
	rules.Aliases["kvlt"] = "black metal"
	if err := n.Reload(rules); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if got := n.Normalize("kvlt"); got != "black metal" {
		t.Errorf("Normalize(kvlt) = %q after reload, want %q", got, "black metal")
	}
}

func TestReloadRejectsBadRules(t *testing.T) {
	n := newTestNormalizer(t)

	bad := DefaultRules()
	bad.Substitutions = append(bad.Substitutions, Substitution{Pattern: "[unclosed"})
	if err := n.Reload(bad); err == nil {
		t.Fatal("Reload accepted invalid substitution pattern")
	}

	// Previous rules stay active.
	if got := n.Normalize("BLACKMETAL"); got != "black metal" {
		t.Errorf("Normalize(BLACKMETAL) = %q after failed reload", got)
	}
}

func TestNewNormalizerBadConfig(t *testing.T) {
	tests := []struct {
		name  string
		rules *Rules
	}{
		{"bad regex", &Rules{Substitutions: []Substitution{{Pattern: "("}}}},
		{"empty alias key", &Rules{Aliases: map[string]string{"": "metal"}}},
		{"empty alias value", &Rules{Aliases: map[string]string{"metal": ""}}},
		{"empty prefix", &Rules{Prefixes: []PrefixRule{{From: "", To: "x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewNormalizer(tt.rules); err == nil {
				t.Error("expected configuration error, got nil")
			}
		})
	}
}

func TestCategory(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"black metal", "metal"},
		{"Blackened Death Metal", "metal"},
		{"prog rock", "rock"},
		{"post punk", "rock"},
		{"jazz fusion", "fusion"},
		{"dark ambient", "electronic"},
		{"free improvisation", "other"},
		{"unknown tag", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := n.Category(tt.input); string(got) != tt.expected {
				t.Errorf("Category(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Black-Metal", "black metal"},
		{"Sludge/Doom", "sludge doom"},
		{"Métal Noir", "metal noir"},
		{"prog.rock", "prog rock"},
		{"a    b", "a b"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Clean(tt.input); got != tt.expected {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
