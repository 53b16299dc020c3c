package querybank

import (
	"strings"
	"testing"
)

func TestQueriesFor_KnownProfession(t *testing.T) {
	queries := QueriesFor("couvreur", "Lyon")
	if len(queries) != QueriesPerProfession {
		t.Fatalf("got %d queries, want %d", len(queries), QueriesPerProfession)
	}
	if queries[0] != "Quel est le meilleur couvreur à Lyon ?" {
		t.Errorf("queries[0] = %q", queries[0])
	}
	for i, q := range queries {
		if strings.Contains(q, "{") {
			t.Errorf("queries[%d] contains unexpanded placeholder: %q", i, q)
		}
		if !strings.Contains(q, "Lyon") {
			t.Errorf("queries[%d] missing city: %q", i, q)
		}
	}
}

func TestQueriesFor_CaseInsensitiveProfession(t *testing.T) {
	a := QueriesFor("Plombier", "Nice")
	b := QueriesFor("plombier", "Nice")
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("queries differ at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestQueriesFor_DefaultFallback(t *testing.T) {
	queries := QueriesFor("menuisier", "Bordeaux")
	if len(queries) != QueriesPerProfession {
		t.Fatalf("got %d queries, want %d", len(queries), QueriesPerProfession)
	}
	if queries[0] != "Meilleur menuisier à Bordeaux ?" {
		t.Errorf("queries[0] = %q", queries[0])
	}
	for i, q := range queries {
		if !strings.Contains(q, "menuisier") {
			t.Errorf("queries[%d] missing profession: %q", i, q)
		}
	}
}

func TestQueriesFor_Deterministic(t *testing.T) {
	a := QueriesFor("electricien", "Paris")
	b := QueriesFor("electricien", "Paris")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("queries not deterministic at %d", i)
		}
	}
}
