package normalize

import (
	"testing"
	"unicode/utf8"
)

func TestHalfwidthExamples(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"fullwidth letters", "ＨＥＬＬＯ", "HELLO"},
		{"fullwidth digits", "１２３", "123"},
		{"fullwidth punctuation", "，！？", ",!?"},
		{"ideographic space", "a　b", "a b"},
		{"mixed cjk", "學生（Ｌｕｋｅ）", "學生(Luke)"},
		{"already halfwidth", "hello, world", "hello, world"},
		{"empty", "", ""},
		{"tilde boundary", "～｟", "~｟"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Halfwidth(tt.input); got != tt.want {
				t.Errorf("Halfwidth(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHalfwidthRangeCorrectness(t *testing.T) {
	for c := rune(0xFF01); c <= 0xFF5E; c++ {
		if got := ToHalfwidth(c); got != c-0xFEE0 {
			t.Fatalf("ToHalfwidth(%U) = %U, want %U", c, got, c-0xFEE0)
		}
	}

	if got := ToHalfwidth(0x3000); got != 0x20 {
		t.Errorf("ToHalfwidth(U+3000) = %U, want U+0020", got)
	}

	for _, c := range []rune{0x20, 'a', 0x2FFF, 0x3001, 0xFF00, 0xFF5F, 0xFFE5, '是', 0x1F600} {
		if got := ToHalfwidth(c); got != c {
			t.Errorf("ToHalfwidth(%U) = %U, want unchanged", c, got)
		}
	}
}

func TestHalfwidthIdempotent(t *testing.T) {
	inputs := []string{
		"ＡＢＣ　ｄｅｆ",
		"Luke是一位罹患精神疾病的學生１２３",
		"plain ascii",
		"％＄",
	}

	for _, in := range inputs {
		once := Halfwidth(in)
		twice := Halfwidth(once)
		if once != twice {
			t.Errorf("Halfwidth not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestHalfwidthPreservesRuneCount(t *testing.T) {
	in := "ＡＢ　學生😀"
	out := Halfwidth(in)
	if utf8.RuneCountInString(in) != utf8.RuneCountInString(out) {
		t.Errorf("rune count changed: %d -> %d", utf8.RuneCountInString(in), utf8.RuneCountInString(out))
	}
}

func TestStripEmojiExamples(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"emoticon", "happy😀", "happy"},
		{"pictograph", "🌍earth", "earth"},
		{"transport", "go🚀go", "gogo"},
		{"flag", "🇹🇼台灣", "台灣"},
		{"run of emoji", "a😀😁😂b", "ab"},
		{"outside ranges kept", "ok✔", "ok✔"},
		{"no emoji", "學生", "學生"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripEmoji(tt.input); got != tt.want {
				t.Errorf("StripEmoji(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripEmojiTotality(t *testing.T) {
	ranges := [][2]rune{
		{0x1F600, 0x1F64F},
		{0x1F300, 0x1F5FF},
		{0x1F680, 0x1F6FF},
		{0x1F1E0, 0x1F1FF},
	}

	var all []rune
	for _, r := range ranges {
		for c := r[0]; c <= r[1]; c++ {
			if !IsEmoji(c) {
				t.Fatalf("IsEmoji(%U) = false, want true", c)
			}
			all = append(all, c)
		}
		if IsEmoji(r[0] - 1) && r[0]-1 != 0x1F5FF {
			t.Errorf("IsEmoji(%U) = true, want false", r[0]-1)
		}
	}

	if got := StripEmoji(string(all)); got != "" {
		t.Errorf("expected empty string, got %d runes", utf8.RuneCountInString(got))
	}
}

func TestStripEmojiBoundaries(t *testing.T) {
	for _, c := range []rune{0x1F1DF, 0x1F650, 0x1F67F, 0x1F700} {
		if IsEmoji(c) {
			t.Errorf("IsEmoji(%U) = true, want false", c)
		}
	}
}

func TestToken(t *testing.T) {
	if got := Token("ｈｅｌｌｏ😀　ｗｏｒｌｄ"); got != "hello world" {
		t.Errorf("Token = %q, want %q", got, "hello world")
	}
}
