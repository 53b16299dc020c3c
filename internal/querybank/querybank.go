// Package querybank holds the fixed per-profession query templates used to
// probe AI assistants. Queries are imposed, not generated: every run of a
// prospect asks the same five questions so results stay comparable over time.
package querybank

import (
	"strings"
)

// QueriesPerProfession is the fixed number of probe queries per prospect run.
const QueriesPerProfession = 5

var templatesByProfession = map[string][]string{
	"couvreur": {
		"Quel est le meilleur couvreur à {city} ?",
		"Couvreur recommandé à {city}",
		"Entreprise fiable pour réparation toiture {city}",
		"Qui contacter pour fuite toiture à {city} ?",
		"Couvreur urgent {city} avis",
	},
	"plombier": {
		"Meilleur plombier à {city} ?",
		"Plombier recommandé à {city}",
		"Dépannage plomberie urgence {city}",
		"Qui appeler pour fuite d'eau à {city} ?",
		"Plombier {city} avis fiable",
	},
	"electricien": {
		"Meilleur électricien à {city} ?",
		"Électricien recommandé {city}",
		"Dépannage électrique urgent {city}",
		"Qui contacter panne électrique {city} ?",
		"Électricien {city} avis certifié",
	},
}

var defaultTemplates = []string{
	"Meilleur {profession} à {city} ?",
	"{profession} recommandé à {city}",
	"Entreprise fiable {profession} {city}",
	"Qui contacter pour {profession} à {city} ?",
	"{profession} {city} avis",
}

// QueriesFor returns the five imposed queries for a profession and city.
// Professions without a dedicated bank fall back to generic templates that
// interpolate the profession verbatim.
func QueriesFor(profession, city string) []string {
	templates, ok := templatesByProfession[strings.ToLower(profession)]
	if !ok {
		templates = defaultTemplates
	}
	queries := make([]string, len(templates))
	for i, t := range templates {
		q := strings.ReplaceAll(t, "{profession}", profession)
		q = strings.ReplaceAll(q, "{city}", city)
		queries[i] = q
	}
	return queries
}
