package sanitizer

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reSeparators = regexp.MustCompile(`[\s()'’.\-/]+`)

	// NFD, drop combining marks, NFC. Transformers keep state, so each caller
	// borrows its own chain.
	foldPool = sync.Pool{
		New: func() any {
			return transform.Chain(
				norm.NFD,
				runes.Remove(runes.In(unicode.Mn)),
				norm.NFC,
			)
		},
	}

	lookupKeyPipeline = Pipeline{
		strings.ToLower,
		StripDiacritics,
		collapseSeparators,
		strings.TrimSpace,
	}
)

// Normalize canonicalizes a free-text lookup key for name matching.
func Normalize(s string) string {
	return lookupKeyPipeline.Apply(s)
}

// StripDiacritics removes combining marks left after canonical decomposition.
// Letters without a decomposition (ø, ß, ł) are kept as they are.
func StripDiacritics(s string) string {
	if isASCII(s) {
		return s
	}

	t := foldPool.Get().(transform.Transformer)
	defer func() {
		t.Reset()
		foldPool.Put(t)
	}()

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func collapseSeparators(s string) string {
	return reSeparators.ReplaceAllString(s, " ")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
