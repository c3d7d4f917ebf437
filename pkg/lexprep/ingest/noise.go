package ingest

import "strings"

// DefaultNoiseWords returns the substrings that disqualify a token: the ten
// decimal digits plus the dollar and percent signs.
func DefaultNoiseWords() []string {
	return []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "$", "%"}
}

// NoiseFilter drops tokens containing any configured substring.
type NoiseFilter struct {
	words []string
}

// NewNoiseFilter creates a filter for the given words. Empty words are
// ignored since every string contains them.
func NewNoiseFilter(words []string) *NoiseFilter {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			kept = append(kept, w)
		}
	}
	return &NoiseFilter{words: kept}
}

// Keep reports whether token contains none of the noise words. The check
// is case-sensitive.
func (f *NoiseFilter) Keep(token string) bool {
	for _, w := range f.words {
		if strings.Contains(token, w) {
			return false
		}
	}
	return true
}

// Filter returns the tokens that pass Keep, preserving order.
func (f *NoiseFilter) Filter(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if f.Keep(t) {
			out = append(out, t)
		}
	}
	return out
}
