package vocab

import (
	"reflect"
	"testing"
)

func newTestDecomposer(t *testing.T) *Decomposer {
	t.Helper()
	d, err := NewDecomposer(DefaultRules())
	if err != nil {
		t.Fatalf("NewDecomposer: %v", err)
	}
	return d
}

func TestNormalizeTags(t *testing.T) {
	d := newTestDecomposer(t)

	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "compound expands and deduplicates",
			input:    []string{"blackened death metal", "black metal"},
			expected: []string{"black metal", "death metal"},
		},
		{
			name:     "order preserved",
			input:    []string{"doom metal", "blackened thrash metal"},
			expected: []string{"doom metal", "black metal", "thrash metal"},
		},
		{
			name:     "passthrough for unknown tags",
			input:    []string{"shoegaze", "dream pop"},
			expected: []string{"shoegaze", "dream pop"},
		},
		{
			name:     "separator-insensitive rule match",
			input:    []string{"Blackened-Death-Metal"},
			expected: []string{"black metal", "death metal"},
		},
		{
			name:     "duplicates collapse to first occurrence",
			input:    []string{"black metal", "BLACK METAL", "black metal"},
			expected: []string{"black metal"},
		},
		{
			name:     "empty strings dropped",
			input:    []string{"", "  ", "jazz fusion"},
			expected: []string{"jazz", "fusion"},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.NormalizeTags(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsAtomicTag(t *testing.T) {
	d := newTestDecomposer(t)

	tests := []struct {
		input    string
		expected bool
	}{
		{"black metal", true},
		{"Black-Metal", true},
		{"jazz", true},
		{"blackened death metal", false},
		{"shoegaze", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := d.IsAtomicTag(tt.input); got != tt.expected {
			t.Errorf("IsAtomicTag(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestExpand(t *testing.T) {
	d := newTestDecomposer(t)

	if got := d.Expand("blackened death metal"); !reflect.DeepEqual(got, []string{"black metal", "death metal"}) {
		t.Errorf("Expand(blackened death metal) = %v", got)
	}
	if got := d.Expand("Shoegaze"); !reflect.DeepEqual(got, []string{"shoegaze"}) {
		t.Errorf("Expand(Shoegaze) = %v", got)
	}
	if got := d.Expand(""); got != nil {
		t.Errorf("Expand(\"\") = %v, want nil", got)
	}
}
