package vocab

import "strings"

// Decomposer expands compound tags into their atomic components using the
// configured decomposition rule table. Tags without a rule pass through
// cleaned but otherwise unchanged.
type Decomposer struct {
	rules  map[string][]string // separator-insensitive key -> components
	atomic map[string]bool
}

// NewDecomposer builds a Decomposer from the given rule tables.
func NewDecomposer(rules *Rules) (*Decomposer, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	byKey := make(map[string][]string, len(rules.Decompositions))
	for _, r := range rules.Decompositions {
		byKey[CollapseKey(r.Pattern)] = r.Components
	}

	atomic := make(map[string]bool, len(rules.AtomicTags))
	for _, t := range rules.AtomicTags {
		atomic[Clean(t)] = true
	}

	return &Decomposer{rules: byKey, atomic: atomic}, nil
}

// NormalizeTags expands every compound tag in the input, preserving order
// and deduplicating on first occurrence.
//
// ["blackened death metal", "black metal"] -> ["black metal", "death metal"].
func (d *Decomposer) NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))

	emit := func(tag string) {
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}

	for _, raw := range tags {
		cleaned := Clean(raw)
		if cleaned == "" {
			continue
		}
		components, ok := d.rules[strings.ReplaceAll(cleaned, " ", "")]
		if !ok {
			emit(cleaned)
			continue
		}
		for _, c := range components {
			emit(c)
		}
	}

	return out
}

// IsAtomicTag reports whether tag belongs to the configured set of valid
// atomic tags.
func (d *Decomposer) IsAtomicTag(tag string) bool {
	return d.atomic[Clean(tag)]
}

// Expand returns the atomic components for a single tag, or the cleaned
// tag itself when no rule applies.
func (d *Decomposer) Expand(tag string) []string {
	cleaned := Clean(tag)
	if components, ok := d.rules[strings.ReplaceAll(cleaned, " ", "")]; ok {
		result := make([]string, len(components))
		copy(result, components)
		return result
	}
	if cleaned == "" {
		return nil
	}
	return []string{cleaned}
}
