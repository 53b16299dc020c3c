// Package match decides whether a business is mentioned in free-form AI
// answer text. It bundles the name normalizer, the fuzzy matcher and the
// entity extractor used by the test runner.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// legalForms matches company legal-form tokens that carry no identity signal.
// Applied after lowercasing and accent folding, so accented variants appear
// in their folded form.
var legalForms = regexp.MustCompile(
	`\b(sarl|sas|eurl|srl|snc|sa|spa|ltd|llc|gmbh|inc|cie|co|groupe|group|et fils|et associes)\b`)

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// foldAccents strips combining marks after NFD decomposition, so "Étanchéité"
// becomes "Etancheite".
func foldAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize canonicalizes a business name (or answer text) for matching:
// lowercase, accent fold, legal forms removed, punctuation collapsed to
// spaces, whitespace squeezed. Empty input yields "".
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	s := strings.ToLower(name)
	s = foldAccents(s)
	s = legalForms.ReplaceAllString(s, " ")
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ExtractDomain returns the second-level label of a URL's host: no scheme,
// no leading www, no TLD. A single-label host is returned whole.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	s := strings.ToLower(rawURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?"); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return s
}
