package stem

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

func TestPorterEnglish(t *testing.T) {
	s := Porter()
	tests := map[string]string{
		"running":  "run",
		"jumps":    "jump",
		"caresses": "caress",
		"ponies":   "poni",
		"hello":    "hello",
	}

	for in, want := range tests {
		got, err := s.Stem(in)
		if err != nil {
			t.Fatalf("Stem(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPorterPassesThroughNonLatin(t *testing.T) {
	s := Porter()
	for _, in := range []string{"學生", "luke是一位", "精神疾病", "αβγ", "++", "-"} {
		got, err := s.Stem(in)
		if err != nil {
			t.Fatalf("Stem(%q): %v", in, err)
		}
		if got != in {
			t.Errorf("Stem(%q) = %q, want pass-through", in, got)
		}
	}
}

func TestPorterStemsLatinWithPunctuationAndAccents(t *testing.T) {
	s := Porter()
	tests := map[string]string{
		"e-mails": "e-mail",
		"cafés":   "café",
	}

	for in, want := range tests {
		got, err := s.Stem(in)
		if err != nil {
			t.Fatalf("Stem(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsLatinWord(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"running", true},
		{"e-mails", true},
		{"luke's", true},
		{"naïve", true},
		{"", false},
		{"++", false},
		{"學生", false},
		{"luke是", false},
		{"ελλάδα", false},
	}

	for _, tt := range tests {
		if got := isLatinWord(tt.in); got != tt.want {
			t.Errorf("isLatinWord(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSnowballEnglish(t *testing.T) {
	s, err := Snowball("english")
	if err != nil {
		t.Fatalf("Snowball: %v", err)
	}

	got, err := s.Stem("running")
	if err != nil {
		t.Fatalf("Stem: %v", err)
	}
	if got != "run" {
		t.Errorf("Stem(running) = %q, want run", got)
	}

	got, err = s.Stem("疾病")
	if err != nil {
		t.Fatalf("Stem: %v", err)
	}
	if got != "疾病" {
		t.Errorf("CJK token should pass through, got %q", got)
	}
}

func TestSnowballUnknownLanguage(t *testing.T) {
	_, err := Snowball("klingon")
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "porter", "Porter", "snowball", "none"} {
		if _, err := ByName(name, "english"); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}

	if _, err := ByName("lancaster", ""); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown stemmer, got %v", err)
	}

	s, _ := ByName("none", "")
	if got, _ := s.Stem("running"); got != "running" {
		t.Errorf("identity stemmer changed token: %q", got)
	}
}

func TestCachedMemoizes(t *testing.T) {
	var calls atomic.Int64
	inner := Func(func(token string) (string, error) {
		calls.Add(1)
		return token + "!", nil
	})
	s := Cached(inner, 16)

	for i := 0; i < 5; i++ {
		got, err := s.Stem("a")
		if err != nil || got != "a!" {
			t.Fatalf("Stem = %q, %v", got, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 underlying call, got %d", calls.Load())
	}
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int64
	inner := Func(func(token string) (string, error) {
		calls.Add(1)
		return "", internalerr.ErrStemming
	})
	s := Cached(inner, 16)

	for i := 0; i < 3; i++ {
		if _, err := s.Stem("x"); !errors.Is(err, internalerr.ErrStemming) {
			t.Fatalf("expected ErrStemming, got %v", err)
		}
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 underlying calls, got %d", calls.Load())
	}
}

func TestCachedZeroSizeReturnsInner(t *testing.T) {
	inner := Identity()
	if s := Cached(inner, 0); s == nil {
		t.Fatal("expected stemmer")
	}
}

func TestCachedConcurrent(t *testing.T) {
	s := Cached(Porter(), 8)
	words := []string{"running", "jumps", "falls", "學生"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := words[i%len(words)]
			if _, err := s.Stem(w); err != nil {
				t.Errorf("Stem(%q): %v", w, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestRecoverStem(t *testing.T) {
	s := Func(func(token string) (out string, err error) {
		defer recoverStem(token, &err)
		panic("boom")
	})

	_, err := s.Stem("x")
	if !errors.Is(err, internalerr.ErrStemming) {
		t.Errorf("expected ErrStemming from recovered panic, got %v", err)
	}
}
