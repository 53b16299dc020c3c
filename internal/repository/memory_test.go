package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eurkai/prospecting/internal/domain"
)

func newCampaign() *domain.Campaign {
	return &domain.Campaign{
		ID:            uuid.New().String(),
		Profession:    "couvreur",
		City:          "Lyon",
		Timezone:      domain.DefaultTimezone,
		ScheduleDays:  domain.DefaultScheduleDays(),
		ScheduleTimes: domain.DefaultScheduleTimes(),
		Mode:          domain.ModeAutoTest,
		Status:        domain.CampaignActive,
		MaxProspects:  30,
		CreatedAt:     time.Now().UTC(),
	}
}

func newProspect(campaignID string, score *float64) *domain.Prospect {
	return &domain.Prospect{
		ID:                uuid.New().String(),
		CampaignID:        campaignID,
		Name:              "Martin Couvreur",
		City:              "Lyon",
		Profession:        "couvreur",
		IAVisibilityScore: score,
		LandingToken:      domain.NewLandingToken(),
		Status:            domain.StatusScanned,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
}

func fptr(v float64) *float64 { return &v }

func TestMemoryStore_CampaignCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")

	c := newCampaign()
	if err := s.CreateCampaign(ctx, c); err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	got, err := s.GetCampaign(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if got.Profession != "couvreur" || got.City != "Lyon" {
		t.Errorf("got %+v", got)
	}

	got.Status = domain.CampaignPaused
	if err := s.UpdateCampaign(ctx, got); err != nil {
		t.Fatalf("UpdateCampaign: %v", err)
	}
	again, _ := s.GetCampaign(ctx, c.ID)
	if again.Status != domain.CampaignPaused {
		t.Errorf("status = %s, want paused", again.Status)
	}

	if _, err := s.GetCampaign(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCampaign(missing) = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ListProspectsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")
	c := newCampaign()
	s.CreateCampaign(ctx, c)

	low := newProspect(c.ID, fptr(3))
	high := newProspect(c.ID, fptr(9))
	unscored := newProspect(c.ID, nil)
	for _, p := range []*domain.Prospect{low, unscored, high} {
		if err := s.CreateProspect(ctx, p); err != nil {
			t.Fatalf("CreateProspect: %v", err)
		}
	}

	list, err := s.ListProspects(ctx, c.ID, "")
	if err != nil {
		t.Fatalf("ListProspects: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d prospects, want 3", len(list))
	}
	if list[0].ID != high.ID || list[1].ID != low.ID || list[2].ID != unscored.ID {
		t.Errorf("order = [%v %v %v], want high, low, unscored",
			list[0].Score(), list[1].Score(), list[2].IAVisibilityScore)
	}
}

func TestMemoryStore_ListProspectsByStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")
	c := newCampaign()
	s.CreateCampaign(ctx, c)

	p1 := newProspect(c.ID, nil)
	p2 := newProspect(c.ID, nil)
	p2.Status = domain.StatusScheduled
	s.CreateProspect(ctx, p1)
	s.CreateProspect(ctx, p2)

	list, err := s.ListProspects(ctx, c.ID, domain.StatusScheduled)
	if err != nil {
		t.Fatalf("ListProspects: %v", err)
	}
	if len(list) != 1 || list[0].ID != p2.ID {
		t.Errorf("filtered list = %v", list)
	}
}

func TestMemoryStore_CopySemantics(t *testing.T) {
	// Mutating a returned prospect must not leak into the store.
	ctx := context.Background()
	s := NewMemoryStore("")
	c := newCampaign()
	s.CreateCampaign(ctx, c)
	p := newProspect(c.ID, nil)
	s.CreateProspect(ctx, p)

	got, _ := s.GetProspect(ctx, p.ID)
	got.Status = domain.StatusSentManual

	again, _ := s.GetProspect(ctx, p.ID)
	if again.Status != domain.StatusScanned {
		t.Errorf("store mutated through returned copy: %s", again.Status)
	}
}

func TestMemoryStore_RunsChronological(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")
	c := newCampaign()
	s.CreateCampaign(ctx, c)
	p := newProspect(c.ID, nil)
	s.CreateProspect(ctx, p)

	old := &domain.TestRun{ID: "r1", CampaignID: c.ID, ProspectID: p.ID,
		Timestamp: time.Now().Add(-time.Hour), Model: domain.ModelOpenAI}
	recent := &domain.TestRun{ID: "r2", CampaignID: c.ID, ProspectID: p.ID,
		Timestamp: time.Now(), Model: domain.ModelGemini}
	// Inserted newest first: ListRuns must still come back oldest first.
	s.CreateRun(ctx, recent)
	s.CreateRun(ctx, old)

	runs, err := s.ListRuns(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "r1" || runs[1].ID != "r2" {
		t.Errorf("runs order wrong: %v", runs)
	}
}

func TestMemoryStore_UpdateRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")
	c := newCampaign()
	s.CreateCampaign(ctx, c)
	p := newProspect(c.ID, nil)
	p.UpdatedAt = time.Now().Add(-2 * time.Hour)
	s.CreateProspect(ctx, p)

	p.Status = domain.StatusScheduled
	if err := s.UpdateProspect(ctx, p); err != nil {
		t.Fatalf("UpdateProspect: %v", err)
	}

	got, _ := s.GetProspect(ctx, p.ID)
	if time.Since(got.UpdatedAt) > time.Minute {
		t.Errorf("UpdatedAt not refreshed on update: %s", got.UpdatedAt)
	}
}

func TestMemoryStore_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s := NewMemoryStore(path)
	c := newCampaign()
	s.CreateCampaign(ctx, c)
	p := newProspect(c.ID, fptr(7))
	s.CreateProspect(ctx, p)
	s.CreateRun(ctx, &domain.TestRun{ID: "r1", CampaignID: c.ID, ProspectID: p.ID,
		Timestamp: time.Now().UTC(), Model: domain.ModelOpenAI,
		Queries: []string{"q1"}, RawAnswers: []string{"a1"}})

	reloaded := NewMemoryStore(path)
	got, err := reloaded.GetProspect(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProspect after reload: %v", err)
	}
	if got.Score() != 7 {
		t.Errorf("score = %v, want 7", got.Score())
	}
	runs, _ := reloaded.ListRuns(ctx, p.ID)
	if len(runs) != 1 || runs[0].ID != "r1" {
		t.Errorf("runs after reload = %v", runs)
	}
}
