package match

import (
	"strings"
)

// SimilarityThreshold is the fixed Ratcliff/Obershelp cutoff for fuzzy
// window matching. Do not tune per sector; determinism matters for
// reproducible runs.
const SimilarityThreshold = 0.82

// Mentioned reports whether the prospect appears in the answer text.
// Four signals, any one suffices:
//  1. normalized name is a substring of the normalized text;
//  2. every significant token (len > 2) of the name appears in the text;
//  3. a sliding window of the text is fuzzy-similar to the name;
//  4. the website's domain label appears in the lowercased raw text.
//
// An empty name never matches.
func Mentioned(text, name, website string) bool {
	normText := Normalize(text)
	normName := Normalize(name)
	if normName == "" {
		return false
	}

	if strings.Contains(normText, normName) {
		return true
	}

	nameTokens := strings.Fields(normName)
	var sig []string
	for _, w := range nameTokens {
		if len(w) > 2 {
			sig = append(sig, w)
		}
	}
	if len(sig) > 0 {
		all := true
		for _, w := range sig {
			if !strings.Contains(normText, w) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}

	textTokens := strings.Fields(normText)
	window := len(nameTokens) + 3
	if window < 5 {
		window = 5
	}
	for i := range textTokens {
		end := i + window
		if end > len(textTokens) {
			end = len(textTokens)
		}
		chunk := strings.Join(textTokens[i:end], " ")
		if Ratio(normName, chunk) >= SimilarityThreshold {
			return true
		}
	}

	if website != "" {
		domain := ExtractDomain(website)
		if len(domain) > 2 && strings.Contains(strings.ToLower(text), domain) {
			return true
		}
	}

	return false
}
