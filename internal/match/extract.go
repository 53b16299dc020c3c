package match

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/eurkai/prospecting/internal/domain"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// companyPattern matches 1–4 capitalized words, accented uppercase included.
var companyPattern = regexp.MustCompile(
	`(?:[A-ZÀÁÂÃÄÅÆÇÈÉÊËÌÍÎÏÐÑÒÓÔÕÖØÙÚÛÜÝ][a-zàáâãäåæçèéêëìíîïðñòóôõöøùúûüý]+\s?){1,4}`)

// ExtractEntities pulls candidate company names and URLs out of an AI answer.
// Duplicates are removed case-insensitively on value, first occurrence wins.
func ExtractEntities(text string) []domain.Entity {
	var entities []domain.Entity

	for _, u := range urlPattern.FindAllString(text, -1) {
		d := ExtractDomain(u)
		if d != "" {
			entities = append(entities, domain.Entity{Type: "url", Value: u, Domain: d})
		}
	}

	for _, m := range companyPattern.FindAllString(text, -1) {
		name := strings.TrimSpace(m)
		if utf8.RuneCountInString(name) > 3 {
			entities = append(entities, domain.Entity{Type: "company", Value: name})
		}
	}

	seen := make(map[string]bool, len(entities))
	unique := entities[:0]
	for _, e := range entities {
		key := strings.ToLower(e.Value)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, e)
	}
	return unique
}

// ExtractCompetitors filters out the target prospect from extracted entities,
// returning the values that name somebody else.
func ExtractCompetitors(entities []domain.Entity, targetName, targetWebsite string) []string {
	normTarget := Normalize(targetName)
	targetDomain := ExtractDomain(targetWebsite)

	var competitors []string
	for _, e := range entities {
		normVal := Normalize(e.Value)
		if normTarget != "" && strings.Contains(normVal, normTarget) {
			continue
		}
		if targetDomain != "" && strings.Contains(strings.ToLower(e.Value), targetDomain) {
			continue
		}
		competitors = append(competitors, e.Value)
	}
	return competitors
}
