package assets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
)

func seed(t *testing.T, status domain.ProspectStatus, eligible bool) (*Service, *repository.MemoryStore, *domain.Prospect) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore("")
	p := &domain.Prospect{
		ID: "p1", CampaignID: "c1", Name: "Martin Couvreur",
		Status: status, EligibilityFlag: eligible,
		LandingToken: domain.NewLandingToken(),
		CreatedAt:    time.Now(), UpdatedAt: time.Now(),
	}
	if err := store.CreateProspect(ctx, p); err != nil {
		t.Fatal(err)
	}
	return NewService(store), store, p
}

func TestSetAssets_AdvancesScored(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := seed(t, domain.StatusScored, true)

	p, err := svc.SetAssets(ctx, "p1", " https://video.example/v1 ", "https://shots.example/s1")
	if err != nil {
		t.Fatalf("SetAssets: %v", err)
	}
	if p.VideoURL != "https://video.example/v1" {
		t.Errorf("video_url = %q, want trimmed", p.VideoURL)
	}
	if p.Status != domain.StatusReadyAssets {
		t.Errorf("status = %s, want READY_ASSETS", p.Status)
	}

	got, _ := store.GetProspect(ctx, "p1")
	if got.Status != domain.StatusReadyAssets || !got.HasAssets() {
		t.Errorf("persisted prospect = %+v", got)
	}
}

func TestSetAssets_KeepsNonScoredStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t, domain.StatusTested, false)

	p, err := svc.SetAssets(ctx, "p1", "v", "s")
	if err != nil {
		t.Fatalf("SetAssets: %v", err)
	}
	if p.Status != domain.StatusTested {
		t.Errorf("status = %s, want TESTED unchanged", p.Status)
	}
}

func TestSetAssets_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t, domain.StatusScored, true)

	if _, err := svc.SetAssets(ctx, "p1", "  ", "s"); !errors.Is(err, ErrMissingVideoURL) {
		t.Errorf("err = %v, want ErrMissingVideoURL", err)
	}
	if _, err := svc.SetAssets(ctx, "p1", "v", ""); !errors.Is(err, ErrMissingScreenshotURL) {
		t.Errorf("err = %v, want ErrMissingScreenshotURL", err)
	}
	if _, err := svc.SetAssets(ctx, "missing", "v", "s"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkReadyToSend_HappyPath(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := seed(t, domain.StatusScored, true)

	if _, err := svc.SetAssets(ctx, "p1", "v", "s"); err != nil {
		t.Fatal(err)
	}
	p, err := svc.MarkReadyToSend(ctx, "p1")
	if err != nil {
		t.Fatalf("MarkReadyToSend: %v", err)
	}
	if p.Status != domain.StatusReadyToSend {
		t.Errorf("status = %s", p.Status)
	}

	got, _ := store.GetProspect(ctx, "p1")
	if got.Status != domain.StatusReadyToSend {
		t.Errorf("persisted status = %s", got.Status)
	}
}

func TestMarkReadyToSend_GateListsAllReasons(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t, domain.StatusScored, false)

	_, err := svc.MarkReadyToSend(ctx, "p1")
	var gateErr *GateError
	if !errors.As(err, &gateErr) {
		t.Fatalf("err = %T %v, want *GateError", err, err)
	}
	msg := gateErr.Error()
	if !strings.HasPrefix(msg, "Gate READY_TO_SEND bloquée : ") {
		t.Errorf("msg = %q", msg)
	}
	for _, want := range []string{
		"video_url manquante",
		"screenshot_url manquante",
		"prospect non éligible (EMAIL_OK = False)",
		"statut actuel 'SCORED' — attendu READY_ASSETS",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("msg %q missing %q", msg, want)
		}
	}
	if strings.Count(msg, " | ") != 3 {
		t.Errorf("reasons not pipe-joined: %q", msg)
	}
}

func TestMarkReadyToSend_NotEligible(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t, domain.StatusScored, false)
	svc.SetAssets(ctx, "p1", "v", "s")

	_, err := svc.MarkReadyToSend(ctx, "p1")
	var gateErr *GateError
	if !errors.As(err, &gateErr) {
		t.Fatalf("err = %v", err)
	}
	if len(gateErr.Reasons) != 1 || !strings.Contains(gateErr.Reasons[0], "non éligible") {
		t.Errorf("reasons = %v", gateErr.Reasons)
	}
}

func TestMarkSentManual(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := seed(t, domain.StatusScored, true)
	svc.SetAssets(ctx, "p1", "v", "s")
	if _, err := svc.MarkReadyToSend(ctx, "p1"); err != nil {
		t.Fatal(err)
	}

	p, err := svc.MarkSentManual(ctx, "p1")
	if err != nil {
		t.Fatalf("MarkSentManual: %v", err)
	}
	if p.Status != domain.StatusSentManual {
		t.Errorf("status = %s", p.Status)
	}

	// Terminal state: nothing moves out of SENT_MANUAL.
	if _, err := svc.MarkSentManual(ctx, "p1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}
