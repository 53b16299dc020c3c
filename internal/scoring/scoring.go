// Package scoring evaluates prospect eligibility and computes the
// invisibility score over a prospect's accumulated test runs.
//
// EMAIL_OK holds when the prospect is never cited on at least 2 of 3 models
// AND never cited on at least 4 of 5 queries AND at least one competitor is
// cited stably across runs.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eurkai/prospecting/internal/domain"
)

const (
	// MinCompetitorRuns is how many runs must cite a competitor for it to
	// count as stable.
	MinCompetitorRuns = 2
	// ModelsRequired is the minimum number of fully invisible models.
	ModelsRequired = 2
	// QueriesRequired is the minimum number of fully invisible queries.
	QueriesRequired = 4
	// MaxStableCompetitors caps the competitor list stored on the prospect.
	MaxStableCompetitors = 5
)

// competitorCounts tallies lowercased competitor citations across runs,
// remembering first-seen order for deterministic ties.
type competitorCounts struct {
	counts map[string]int
	order  []string
}

func countCompetitors(runs []*domain.TestRun) competitorCounts {
	cc := competitorCounts{counts: make(map[string]int)}
	for _, r := range runs {
		for _, c := range r.CompetitorsEntities {
			key := strings.ToLower(c)
			if _, seen := cc.counts[key]; !seen {
				cc.order = append(cc.order, key)
			}
			cc.counts[key]++
		}
	}
	return cc
}

// stable returns every stable competitor ordered by citation count
// descending. Callers cap the list before persisting it; the eligibility
// justification reports the uncapped count.
func (cc competitorCounts) stable() []string {
	ranked := append([]string(nil), cc.order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return cc.counts[ranked[i]] > cc.counts[ranked[j]]
	})
	var out []string
	for _, name := range ranked {
		if cc.counts[name] >= MinCompetitorRuns {
			out = append(out, name)
		}
	}
	return out
}

func check(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// EmailOK evaluates the eligibility rule over a prospect's runs and returns
// the verdict plus a human-readable justification.
func EmailOK(runs []*domain.TestRun) (bool, string) {
	if len(runs) == 0 {
		return false, "Aucun run disponible"
	}

	byModel := make(map[domain.AIModel][]*domain.TestRun)
	for _, r := range runs {
		byModel[r.Model] = append(byModel[r.Model], r)
	}

	byQuery := make([][]bool, domain.QueriesPerRun)
	for _, r := range runs {
		for qi, mentioned := range r.MentionPerQuery {
			if qi < domain.QueriesPerRun {
				byQuery[qi] = append(byQuery[qi], mentioned)
			}
		}
	}

	invisibleModels := 0
	for _, modelRuns := range byModel {
		invisible := true
		for _, r := range modelRuns {
			if r.MentionedTarget {
				invisible = false
				break
			}
		}
		if invisible {
			invisibleModels++
		}
	}

	invisibleQueries := 0
	for _, mentions := range byQuery {
		if len(mentions) == 0 {
			continue
		}
		invisible := true
		for _, m := range mentions {
			if m {
				invisible = false
				break
			}
		}
		if invisible {
			invisibleQueries++
		}
	}

	stable := countCompetitors(runs).stable()

	modelsOK := invisibleModels >= ModelsRequired
	queriesOK := invisibleQueries >= QueriesRequired
	competOK := len(stable) >= 1
	emailOK := modelsOK && queriesOK && competOK

	justification := strings.Join([]string{
		fmt.Sprintf("Modèles invisibles: %d/3 (%s)", invisibleModels, check(modelsOK)),
		fmt.Sprintf("Requêtes invisibles: %d/5 (%s)", invisibleQueries, check(queriesOK)),
		fmt.Sprintf("Concurrents stables: %d (%s)", len(stable), check(competOK)),
	}, " | ")
	return emailOK, justification
}

// ComputeScore computes the /10 invisibility score and returns it with its
// justification and the stable competitor list.
func ComputeScore(p *domain.Prospect, runs []*domain.TestRun, emailOK bool) (float64, string, []string) {
	score := 0.0
	var parts []string

	if emailOK {
		score += 4
		parts = append(parts, "+4 Invisibilité IA robuste confirmée")
	}

	stable := countCompetitors(runs).stable()
	if len(stable) > 0 {
		score += 2
		top := stable
		if len(top) > 2 {
			top = top[:2]
		}
		parts = append(parts, fmt.Sprintf("+2 Concurrents stables cités (%s)", strings.Join(top, ", ")))
	}

	if p.GoogleAdsActive != nil && *p.GoogleAdsActive {
		score += 1
		parts = append(parts, "+1 Google Ads actif (budget marketing existant)")
	}

	if p.ReviewsCount != nil && *p.ReviewsCount >= 20 {
		score += 1
		parts = append(parts, fmt.Sprintf("+1 %d avis (présence locale établie)", *p.ReviewsCount))
	}

	if p.Website != "" {
		score += 1
		parts = append(parts, "+1 Site web présent")
	}

	verdict := "NON"
	if emailOK {
		verdict = "OUI"
	}
	justification := fmt.Sprintf("Score %g/10 — EMAIL_OK: %s\n%s", score, verdict, strings.Join(parts, "\n"))
	return score, justification, stable
}
