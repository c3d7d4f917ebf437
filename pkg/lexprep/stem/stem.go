// Package stem provides the stemming capability consumed by the document
// processor.
//
// The library-backed stemmers only touch Latin-script words: tokens with at
// least one Latin letter and no letter from any other script. Punctuation
// and accented Latin letters are allowed ("e-mails", "cafés"). Every other
// token (CJK, mixed script, bare symbols) is returned unchanged, so the
// behavior on Chinese text is an explicit pass-through rather than whatever
// an English algorithm happens to do to it.
package stem

import (
	"fmt"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kljensen/snowball"
	porterstemmer "github.com/reiver/go-porterstemmer"

	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

// Stemmer reduces a token to its stem.
type Stemmer interface {
	Stem(token string) (string, error)
}

// Func adapts a plain function to Stemmer.
type Func func(token string) (string, error)

// Stem implements Stemmer.
func (f Func) Stem(token string) (string, error) { return f(token) }

// Identity returns a stemmer that leaves every token unchanged.
func Identity() Stemmer {
	return Func(func(token string) (string, error) { return token, nil })
}

// Porter returns the classic Porter stemmer.
func Porter() Stemmer {
	return Func(func(token string) (s string, err error) {
		if !isLatinWord(token) {
			return token, nil
		}
		defer recoverStem(token, &err)
		return porterstemmer.StemString(token), nil
	})
}

// Snowball returns a Snowball stemmer for the given language
// (english, spanish, french, russian, swedish, norwegian, hungarian).
func Snowball(language string) (Stemmer, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = "english"
	}
	if _, err := snowball.Stem("test", language, false); err != nil {
		return nil, fmt.Errorf("snowball language %q: %v: %w", language, err, internalerr.ErrInvalidConfig)
	}

	return Func(func(token string) (s string, err error) {
		if !isLatinWord(token) {
			return token, nil
		}
		defer recoverStem(token, &err)
		stemmed, err := snowball.Stem(token, language, true)
		if err != nil {
			return "", fmt.Errorf("stem %q: %v: %w", token, err, internalerr.ErrStemming)
		}
		return stemmed, nil
	}), nil
}

// ByName resolves a stemmer from configuration: "porter" (default),
// "snowball" or "none".
func ByName(name, language string) (Stemmer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "porter":
		return Porter(), nil
	case "snowball":
		return Snowball(language)
	case "none", "identity":
		return Identity(), nil
	default:
		return nil, fmt.Errorf("unknown stemmer %q: %w", name, internalerr.ErrInvalidConfig)
	}
}

type cached struct {
	next  Stemmer
	cache *lru.Cache[string, string]
}

// Cached memoizes successful results of s in an LRU of the given size.
// Non-positive sizes return s unchanged.
func Cached(s Stemmer, size int) Stemmer {
	if size <= 0 {
		return s
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return s
	}
	return &cached{next: s, cache: cache}
}

func (c *cached) Stem(token string) (string, error) {
	if v, ok := c.cache.Get(token); ok {
		return v, nil
	}
	v, err := c.next.Stem(token)
	if err != nil {
		return "", err
	}
	c.cache.Add(token, v)
	return v, nil
}

func isLatinWord(s string) bool {
	latin := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.Is(unicode.Latin, r) {
			return false
		}
		latin = true
	}
	return latin
}

// recoverStem turns a panic inside a stemming library into ErrStemming.
func recoverStem(token string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("stem %q: panic: %v: %w", token, r, internalerr.ErrStemming)
	}
}
