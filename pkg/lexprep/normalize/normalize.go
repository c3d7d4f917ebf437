// Package normalize holds the codepoint-level transforms applied to every
// token before it is re-split: full-width to half-width folding and emoji
// removal.
package normalize

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	ideographicSpace = 0x3000
	fullwidthFirst   = 0xFF01
	fullwidthLast    = 0xFF5E
	fullwidthOffset  = 0xFEE0
)

// EmojiTable lists the emoji blocks stripped from tokens: regional
// indicator flags, symbols & pictographs, emoticons, transport & map.
var EmojiTable = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
	},
}

// Both transformers are stateless, so a single value may be shared by
// concurrent callers. Do not wrap them in transform.Chain for shared use:
// a chain carries buffers.
var (
	// HalfwidthTransformer folds full-width ASCII and the ideographic space.
	HalfwidthTransformer transform.Transformer = runes.Map(ToHalfwidth)

	// EmojiTransformer drops every rune in EmojiTable.
	EmojiTransformer transform.Transformer = runes.Remove(runes.In(EmojiTable))
)

// ToHalfwidth maps a single rune to its half-width equivalent.
func ToHalfwidth(r rune) rune {
	switch {
	case r == ideographicSpace:
		return ' '
	case r >= fullwidthFirst && r <= fullwidthLast:
		return r - fullwidthOffset
	default:
		return r
	}
}

// IsEmoji reports whether r falls inside EmojiTable.
func IsEmoji(r rune) bool {
	return unicode.Is(EmojiTable, r)
}

// Halfwidth replaces full-width characters with their half-width forms.
// The rune count is unchanged.
func Halfwidth(s string) string {
	if !needsHalfwidth(s) {
		return s
	}
	out, _, _ := transform.String(HalfwidthTransformer, s)
	return out
}

// StripEmoji removes emoji runes; nothing is inserted in their place.
func StripEmoji(s string) string {
	if !hasEmoji(s) {
		return s
	}
	out, _, _ := transform.String(EmojiTransformer, s)
	return out
}

// Token applies Halfwidth then StripEmoji.
func Token(s string) string {
	return StripEmoji(Halfwidth(s))
}

func needsHalfwidth(s string) bool {
	for _, r := range s {
		if ToHalfwidth(r) != r {
			return true
		}
	}
	return false
}

func hasEmoji(s string) bool {
	for _, r := range s {
		if IsEmoji(r) {
			return true
		}
	}
	return false
}
