package vocab

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/albumatlas/albumatlas-server/internal/domain"
)

// Normalizer canonicalizes raw tag strings against a loaded rule set.
//
// The normalization pipeline, in order: lowercase and trim, ordered
// substitutions, alias resolution (exact then separator-insensitive),
// prefix standardization (compounds only, longest pattern first),
// stop-word stripping, whitespace collapse.
//
// Results are cached per raw input. The cache belongs to this instance
// and is dropped by ClearCache or Reload; no state is shared between
// instances.
type Normalizer struct {
	rules *Rules

	substitutions []compiledSubstitution
	aliasExact    map[string]string // cleaned form -> canonical
	aliasCollapse map[string]string // separator-insensitive key -> canonical
	prefixes      []PrefixRule      // sorted longest From first
	stopWords     map[string]bool

	mu    sync.RWMutex
	cache map[string]string
}

type compiledSubstitution struct {
	literal     string // non-empty for literal substitutions
	pattern     *regexp.Regexp
	replacement string
}

// NewNormalizer builds a Normalizer from the given rule tables.
// Malformed rules fail here with a configuration error.
func NewNormalizer(rules *Rules) (*Normalizer, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	n := &Normalizer{cache: make(map[string]string)}
	n.compile(rules)
	return n, nil
}

// compile builds the lookup structures for a validated rule set.
func (n *Normalizer) compile(rules *Rules) {
	subs := make([]compiledSubstitution, 0, len(rules.Substitutions))
	for _, s := range rules.Substitutions {
		if s.Literal {
			subs = append(subs, compiledSubstitution{literal: s.Pattern, replacement: s.Replacement})
			continue
		}
		// Validate already compiled these once.
		subs = append(subs, compiledSubstitution{
			pattern:     regexp.MustCompile(s.Pattern),
			replacement: s.Replacement,
		})
	}

	exact := make(map[string]string, len(rules.Aliases))
	collapse := make(map[string]string, len(rules.Aliases))
	for raw, canonical := range rules.Aliases {
		cleaned := Clean(raw)
		exact[cleaned] = canonical
		collapse[CollapseKey(raw)] = canonical
	}

	prefixes := make([]PrefixRule, len(rules.Prefixes))
	copy(prefixes, rules.Prefixes)
	sort.SliceStable(prefixes, func(i, j int) bool {
		return len(prefixes[i].From) > len(prefixes[j].From)
	})

	stop := make(map[string]bool, len(rules.StopWords))
	for _, w := range rules.StopWords {
		stop[strings.ToLower(w)] = true
	}

	n.rules = rules
	n.substitutions = subs
	n.aliasExact = exact
	n.aliasCollapse = collapse
	n.prefixes = prefixes
	n.stopWords = stop
}

// Normalize canonicalizes a raw tag string. Deterministic for a loaded
// rule set: the same input always yields the same output until Reload.
func (n *Normalizer) Normalize(raw string) string {
	n.mu.RLock()
	if cached, ok := n.cache[raw]; ok {
		n.mu.RUnlock()
		return cached
	}
	n.mu.RUnlock()

	result := n.normalize(raw)

	n.mu.Lock()
	n.cache[raw] = result
	n.mu.Unlock()

	return result
}

func (n *Normalizer) normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	// Ordered substitution table.
	for _, sub := range n.substitutions {
		if sub.literal != "" {
			s = strings.ReplaceAll(s, sub.literal, sub.replacement)
		} else {
			s = sub.pattern.ReplaceAllString(s, sub.replacement)
		}
	}

	s = Clean(s)
	if s == "" {
		return ""
	}

	// Alias resolution: the alias table is authoritative. Exact cleaned
	// match first, then the separator-insensitive key.
	if canonical, ok := n.aliasExact[s]; ok {
		s = canonical
	} else if canonical, ok := n.aliasCollapse[strings.ReplaceAll(s, " ", "")]; ok {
		s = canonical
	}

	// Prefix standardization runs after aliasing at lower priority, and
	// only inside compounds; standalone long forms survive.
	tokens := strings.Fields(s)
	if len(tokens) > 1 {
		for i, tok := range tokens {
			for _, p := range n.prefixes {
				if tok == p.From {
					tokens[i] = p.To
					break
				}
			}
		}
	}

	// Strip stop words token-wise.
	kept := tokens[:0]
	for _, tok := range tokens {
		if !n.stopWords[tok] {
			kept = append(kept, tok)
		}
	}

	return strings.Join(kept, " ")
}

// Category infers the coarse category for a tag from the ordered keyword
// table. Unknown tags fall back to CategoryOther.
func (n *Normalizer) Category(tag string) domain.Category {
	normalized := n.Normalize(tag)
	for _, rule := range n.rules.Categories {
		if strings.Contains(normalized, rule.Keyword) {
			return domain.Category(rule.Category)
		}
	}
	return domain.CategoryOther
}

// KnownAlias reports whether raw resolves through the alias table.
func (n *Normalizer) KnownAlias(raw string) bool {
	cleaned := Clean(raw)
	if _, ok := n.aliasExact[cleaned]; ok {
		return true
	}
	_, ok := n.aliasCollapse[strings.ReplaceAll(cleaned, " ", "")]
	return ok
}

// ClearCache drops all memoized normalization results.
func (n *Normalizer) ClearCache() {
	n.mu.Lock()
	n.cache = make(map[string]string)
	n.mu.Unlock()
}

// Reload replaces the rule tables and invalidates the cache.
// The previous rules stay active if the new set fails validation.
func (n *Normalizer) Reload(rules *Rules) error {
	if err := rules.Validate(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.compile(rules)
	n.cache = make(map[string]string)
	return nil
}

// Rules returns the active rule tables.
func (n *Normalizer) Rules() *Rules {
	return n.rules
}
