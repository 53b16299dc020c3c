package scoring

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
)

func makeRun(model domain.AIModel, mentions []bool, competitors []string) *domain.TestRun {
	mentioned := false
	for _, m := range mentions {
		if m {
			mentioned = true
			break
		}
	}
	return &domain.TestRun{
		ID:                  uuid.New().String(),
		Model:               model,
		MentionPerQuery:     mentions,
		MentionedTarget:     mentioned,
		CompetitorsEntities: competitors,
		Timestamp:           time.Now().UTC(),
	}
}

func invisibleRuns(competitors []string) []*domain.TestRun {
	var runs []*domain.TestRun
	for _, model := range domain.AllModels() {
		for i := 0; i < 3; i++ {
			runs = append(runs, makeRun(model, []bool{false, false, false, false, false}, competitors))
		}
	}
	return runs
}

// === EmailOK ===

func TestEmailOK_InvisibleOnAllModels(t *testing.T) {
	eligible, justif := EmailOK(invisibleRuns([]string{"Toiture Martin"}))
	if !eligible {
		t.Error("fully invisible prospect with stable competitor should be eligible")
	}
	if !strings.Contains(justif, "Modèles invisibles: 3/3 (✓)") {
		t.Errorf("justif = %q", justif)
	}
	if !strings.Contains(justif, "Requêtes invisibles: 5/5 (✓)") {
		t.Errorf("justif = %q", justif)
	}
}

func TestEmailOK_AlwaysMentioned(t *testing.T) {
	var runs []*domain.TestRun
	for _, model := range domain.AllModels() {
		for i := 0; i < 3; i++ {
			runs = append(runs, makeRun(model, []bool{true, true, true, true, true}, nil))
		}
	}
	if eligible, _ := EmailOK(runs); eligible {
		t.Error("always-mentioned prospect must not be eligible")
	}
}

func TestEmailOK_OnlyOneModelInvisible(t *testing.T) {
	var runs []*domain.TestRun
	for i := 0; i < 3; i++ {
		runs = append(runs, makeRun(domain.ModelOpenAI, []bool{true, true, true, true, true}, nil))
	}
	for i := 0; i < 3; i++ {
		runs = append(runs, makeRun(domain.ModelAnthropic, []bool{true, false, false, false, false}, nil))
	}
	for i := 0; i < 3; i++ {
		runs = append(runs, makeRun(domain.ModelGemini, []bool{false, false, false, false, false}, []string{"Concurrent A"}))
	}
	if eligible, _ := EmailOK(runs); eligible {
		t.Error("1/3 invisible models is below the 2/3 threshold")
	}
}

func TestEmailOK_MissingStableCompetitor(t *testing.T) {
	eligible, justif := EmailOK(invisibleRuns(nil))
	if eligible {
		t.Error("invisible without a stable competitor must not be eligible")
	}
	if !strings.Contains(justif, "Concurrents stables: 0 (✗)") {
		t.Errorf("justif = %q", justif)
	}
}

func TestEmailOK_CompetitorCitedOnce(t *testing.T) {
	// One citation across all runs is not stable (needs >= 2).
	runs := invisibleRuns(nil)
	runs[0].CompetitorsEntities = []string{"Concurrent A"}
	if eligible, _ := EmailOK(runs); eligible {
		t.Error("a single citation must not count as stable")
	}
}

func TestEmailOK_CompetitorCaseInsensitive(t *testing.T) {
	runs := invisibleRuns(nil)
	runs[0].CompetitorsEntities = []string{"Toitures Bernard"}
	runs[1].CompetitorsEntities = []string{"TOITURES BERNARD"}
	eligible, _ := EmailOK(runs)
	if !eligible {
		t.Error("citation counting must be case-insensitive")
	}
}

func TestEmailOK_StableCountNotCapped(t *testing.T) {
	// Seven competitors each cited twice: the stored list is capped at 5 but
	// the justification reports all of them.
	runs := invisibleRuns(nil)
	names := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"}
	runs[0].CompetitorsEntities = names
	runs[1].CompetitorsEntities = names
	eligible, justif := EmailOK(runs)
	if !eligible {
		t.Error("seven stable competitors should be eligible")
	}
	if !strings.Contains(justif, "Concurrents stables: 7 (✓)") {
		t.Errorf("justif = %q", justif)
	}
}

func TestEmailOK_QueryThreshold(t *testing.T) {
	// Mentioned on Q1 and Q2 leaves only 3 invisible queries, need 4.
	var runs []*domain.TestRun
	for _, model := range domain.AllModels() {
		for i := 0; i < 3; i++ {
			runs = append(runs, makeRun(model, []bool{true, true, false, false, false}, []string{"Concurrent A"}))
		}
	}
	eligible, justif := EmailOK(runs)
	if eligible {
		t.Error("3/5 invisible queries is below the 4/5 threshold")
	}
	if !strings.Contains(justif, "Requêtes invisibles: 3/5 (✗)") {
		t.Errorf("justif = %q", justif)
	}
}

func TestEmailOK_NoRuns(t *testing.T) {
	eligible, justif := EmailOK(nil)
	if eligible {
		t.Error("no runs must not be eligible")
	}
	if justif != "Aucun run disponible" {
		t.Errorf("justif = %q", justif)
	}
}

// === ComputeScore ===

func TestComputeScore_Max(t *testing.T) {
	runs := invisibleRuns([]string{"concurrent a", "concurrent b"})
	reviews := 25
	ads := true
	p := &domain.Prospect{
		Name: "Test SARL", Website: "https://test.fr",
		ReviewsCount: &reviews, GoogleAdsActive: &ads,
	}
	score, justif, stable := ComputeScore(p, runs, true)
	if score != 9.0 {
		t.Errorf("score = %v, want 9 (4+2+1+1+1)", score)
	}
	if !strings.Contains(justif, "Score 9/10 — EMAIL_OK: OUI") {
		t.Errorf("justif = %q", justif)
	}
	if !strings.Contains(justif, "+1 25 avis (présence locale établie)") {
		t.Errorf("justif = %q", justif)
	}
	if len(stable) != 2 {
		t.Errorf("stable = %v", stable)
	}
}

func TestComputeScore_Zero(t *testing.T) {
	runs := []*domain.TestRun{makeRun(domain.ModelOpenAI, []bool{true, true, true, true, true}, nil)}
	p := &domain.Prospect{Name: "Test SARL"}
	score, justif, _ := ComputeScore(p, runs, false)
	if score != 0.0 {
		t.Errorf("score = %v, want 0", score)
	}
	if !strings.Contains(justif, "Score 0/10 — EMAIL_OK: NON") {
		t.Errorf("justif = %q", justif)
	}
}

func TestComputeScore_Partial(t *testing.T) {
	var runs []*domain.TestRun
	for _, model := range domain.AllModels() {
		runs = append(runs, makeRun(model, []bool{false, false, false, false, false}, []string{"concurrent a"}))
	}
	p := &domain.Prospect{Name: "Test SARL", Website: "https://example.fr"}
	score, _, _ := ComputeScore(p, runs, true)
	if score != 7.0 {
		t.Errorf("score = %v, want 7 (4+2+1)", score)
	}
}

func TestComputeScore_EligibleImpliesAtLeastSix(t *testing.T) {
	// EMAIL_OK requires a stable competitor, so +4 and +2 always combine.
	runs := invisibleRuns([]string{"concurrent a"})
	emailOK, _ := EmailOK(runs)
	if !emailOK {
		t.Fatal("setup: runs should be eligible")
	}
	p := &domain.Prospect{Name: "Test SARL"}
	score, _, _ := ComputeScore(p, runs, emailOK)
	if score < 6 {
		t.Errorf("score = %v, eligible prospects always score >= 6", score)
	}
}

func TestComputeScore_StableRankedByCount(t *testing.T) {
	runs := invisibleRuns(nil)
	// "beta" cited 3 times, "alpha" twice, "once" once.
	runs[0].CompetitorsEntities = []string{"alpha", "beta", "once"}
	runs[1].CompetitorsEntities = []string{"beta", "alpha"}
	runs[2].CompetitorsEntities = []string{"beta"}
	_, _, stable := ComputeScore(&domain.Prospect{}, runs, false)
	if len(stable) != 2 || stable[0] != "beta" || stable[1] != "alpha" {
		t.Errorf("stable = %v, want [beta alpha]", stable)
	}
}

// === Service ===

func TestServiceRun(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore("")

	c := &domain.Campaign{ID: "c1", Profession: "couvreur", City: "Lyon",
		Status: domain.CampaignActive, CreatedAt: time.Now()}
	store.CreateCampaign(ctx, c)

	eligible := &domain.Prospect{ID: "p1", CampaignID: "c1", Name: "Martin Couvreur",
		Website: "https://martin-couvreur.fr", Status: domain.StatusTested,
		LandingToken: domain.NewLandingToken(), UpdatedAt: time.Now()}
	store.CreateProspect(ctx, eligible)
	for _, r := range invisibleRuns([]string{"Toitures Bernard"}) {
		r.CampaignID = "c1"
		r.ProspectID = "p1"
		store.CreateRun(ctx, r)
	}

	noRuns := &domain.Prospect{ID: "p2", CampaignID: "c1", Name: "Sans Run",
		Status: domain.StatusTested, LandingToken: domain.NewLandingToken()}
	store.CreateProspect(ctx, noRuns)

	svc := NewService(store)
	result, err := svc.Run(ctx, "c1", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Total != 2 || result.Scored != 1 || result.Eligible != 1 {
		t.Errorf("result = %+v", result)
	}

	got, _ := store.GetProspect(ctx, "p1")
	if got.Status != domain.StatusScored {
		t.Errorf("status = %s, want SCORED", got.Status)
	}
	if !got.EligibilityFlag {
		t.Error("eligibility_flag should be set")
	}
	if got.Score() != 7 { // 4 + 2 + 1 website
		t.Errorf("score = %v, want 7", got.Score())
	}
	if len(got.CompetitorsCited) != 1 || got.CompetitorsCited[0] != "toitures bernard" {
		t.Errorf("competitors_cited = %v", got.CompetitorsCited)
	}
	if !strings.Contains(got.ScoreJustification, "Modèles invisibles") ||
		!strings.Contains(got.ScoreJustification, "Score 7/10") {
		t.Errorf("justification = %q", got.ScoreJustification)
	}

	skipped, _ := store.GetProspect(ctx, "p2")
	if skipped.Status != domain.StatusTested {
		t.Errorf("no-run prospect status = %s, want TESTED untouched", skipped.Status)
	}
}

func TestServiceRun_ExplicitIDsMixedStatuses(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore("")

	c := &domain.Campaign{ID: "c1", Profession: "couvreur", City: "Lyon",
		Status: domain.CampaignActive, CreatedAt: time.Now()}
	store.CreateCampaign(ctx, c)

	seed := func(id string, status domain.ProspectStatus, withRuns bool) {
		p := &domain.Prospect{ID: id, CampaignID: "c1", Name: "Prospect " + id,
			Status: status, LandingToken: domain.NewLandingToken(), UpdatedAt: time.Now()}
		store.CreateProspect(ctx, p)
		if withRuns {
			for _, r := range invisibleRuns([]string{"Toitures Bernard"}) {
				r.CampaignID = "c1"
				r.ProspectID = id
				store.CreateRun(ctx, r)
			}
		}
	}
	seed("pa", domain.StatusScored, true)   // re-scored after new runs
	seed("pb", domain.StatusTested, true)   // scored normally
	seed("pc", domain.StatusScanned, false) // never tested, left alone

	svc := NewService(store)
	result, err := svc.Run(ctx, "c1", []string{"pa", "pb", "pc"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Total != 3 || result.Scored != 2 || result.Skipped != 1 {
		t.Errorf("result = %+v, want 2 scored and 1 skipped", result)
	}

	rescored, _ := store.GetProspect(ctx, "pa")
	if rescored.Status != domain.StatusScored || rescored.IAVisibilityScore == nil {
		t.Errorf("re-scored prospect = %s score=%v", rescored.Status, rescored.IAVisibilityScore)
	}
	scored, _ := store.GetProspect(ctx, "pb")
	if scored.Status != domain.StatusScored {
		t.Errorf("tested prospect status = %s, want SCORED", scored.Status)
	}
	untouched, _ := store.GetProspect(ctx, "pc")
	if untouched.Status != domain.StatusScanned || untouched.IAVisibilityScore != nil {
		t.Errorf("scanned prospect must be left unchanged, got %s", untouched.Status)
	}
}
