package vocab

import (
	"regexp"

	"github.com/albumatlas/albumatlas-server/internal/errors"
)

// Substitution is one entry in the ordered substitution table applied
// before alias resolution. Literal entries are replaced verbatim; the
// rest are treated as regular expressions.
type Substitution struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Literal     bool   `json:"literal,omitempty"`
}

// PrefixRule standardizes a long-form token to its abbreviated canonical
// prefix inside compound tags ("progressive metal" -> "prog metal").
// Rules are matched longest-pattern-first so partial prefixes never
// shadow longer ones.
type PrefixRule struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CategoryRule assigns a category when the keyword occurs in the
// normalized tag. Rules are evaluated in order; first match wins.
type CategoryRule struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// DecompositionRule expands a compound tag into its atomic components,
// in rule order ("blackened death metal" -> ["black metal", "death metal"]).
type DecompositionRule struct {
	Pattern    string   `json:"pattern"`
	Components []string `json:"components"`
}

// Rules bundles every rule table the vocabulary engine consumes. Tables
// are loaded once (from JSON files or the embedded defaults) and treated
// as immutable afterwards; reloading swaps in a fresh Rules value.
type Rules struct {
	Substitutions  []Substitution      `json:"substitutions"`
	Aliases        map[string]string   `json:"aliases"` // cleaned raw form -> canonical form
	Prefixes       []PrefixRule        `json:"prefixes"`
	StopWords      []string            `json:"stop_words"`
	Categories     []CategoryRule      `json:"categories"`
	Decompositions []DecompositionRule `json:"decompositions"`
	AtomicTags     []string            `json:"atomic_tags"` // the "all valid tags" set
}

// Validate checks the rule tables for structural problems. Malformed
// configuration fails here, at load time, never per call.
func (r *Rules) Validate() error {
	for i, s := range r.Substitutions {
		if s.Pattern == "" {
			return errors.Configurationf("substitution %d: empty pattern", i)
		}
		if !s.Literal {
			if _, err := regexp.Compile(s.Pattern); err != nil {
				return errors.Wrapf(err, errors.CodeConfiguration, "substitution %d: bad pattern %q", i, s.Pattern)
			}
		}
	}
	for raw, canonical := range r.Aliases {
		if raw == "" {
			return errors.Configuration("alias table: empty raw key")
		}
		if canonical == "" {
			return errors.Configurationf("alias table: %q maps to empty canonical form", raw)
		}
	}
	for i, p := range r.Prefixes {
		if p.From == "" || p.To == "" {
			return errors.Configurationf("prefix rule %d: empty side", i)
		}
	}
	for i, c := range r.Categories {
		if c.Keyword == "" || c.Category == "" {
			return errors.Configurationf("category rule %d: empty keyword or category", i)
		}
	}
	for i, d := range r.Decompositions {
		if d.Pattern == "" {
			return errors.Configurationf("decomposition rule %d: empty pattern", i)
		}
		if len(d.Components) == 0 {
			return errors.Configurationf("decomposition rule %d (%q): no components", i, d.Pattern)
		}
		for _, c := range d.Components {
			if c == "" {
				return errors.Configurationf("decomposition rule %d (%q): empty component", i, d.Pattern)
			}
		}
	}
	return nil
}
