package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eurkai/prospecting/internal/aiclient"
	"github.com/eurkai/prospecting/internal/assets"
	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
	"github.com/eurkai/prospecting/internal/runner"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(domain.DefaultTimezone)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// fixedNow returns a clock pinned to a known instant in Rome local time.
func fixedNow(t *testing.T, value string) func() time.Time {
	t.Helper()
	loc, err := time.LoadLocation(domain.DefaultTimezone)
	if err != nil {
		t.Fatal(err)
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, loc)
	if err != nil {
		t.Fatal(err)
	}
	return func() time.Time { return ts }
}

func TestRegister_Idempotent(t *testing.T) {
	s := newTestScheduler(t)
	job := &Job{ID: "j1", Weekday: time.Wednesday, Hour: 9, MisfireGrace: time.Minute, Run: func(context.Context) {}}
	s.Register(job)
	s.Register(job)
	if len(s.order) != 1 || len(s.jobs) != 1 {
		t.Errorf("duplicate registration: order=%v", s.order)
	}
}

func TestDueOccurrence(t *testing.T) {
	s := newTestScheduler(t)
	job := &Job{ID: "j1", Weekday: time.Wednesday, Hour: 9, Minute: 0,
		MisfireGrace: 300 * time.Second, Run: func(context.Context) {}}

	// 2026-08-26 is a Wednesday.
	tests := []struct {
		now  string
		want bool
	}{
		{"2026-08-26 09:00:00", true},  // exactly on time
		{"2026-08-26 09:04:59", true},  // inside grace
		{"2026-08-26 09:05:01", false}, // grace expired
		{"2026-08-26 08:59:00", false}, // not yet due
		{"2026-08-27 09:00:00", false}, // Thursday, long past grace
	}
	for _, tt := range tests {
		s.now = fixedNow(t, tt.now)
		_, got := s.dueOccurrence(job, s.now())
		if got != tt.want {
			t.Errorf("dueOccurrence at %s = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestDueOccurrence_Coalesce(t *testing.T) {
	s := newTestScheduler(t)
	job := &Job{ID: "j1", Weekday: time.Wednesday, Hour: 9, Minute: 0,
		MisfireGrace: 300 * time.Second, Run: func(context.Context) {}}

	s.now = fixedNow(t, "2026-08-26 09:01:00")
	occ, ok := s.dueOccurrence(job, s.now())
	if !ok {
		t.Fatal("expected due")
	}
	job.lastFired = occ

	// Same occurrence must not fire twice.
	if _, ok := s.dueOccurrence(job, s.now()); ok {
		t.Error("occurrence fired twice")
	}

	// Next week's occurrence fires again.
	s.now = fixedNow(t, "2026-09-02 09:01:00")
	if _, ok := s.dueOccurrence(job, s.now()); !ok {
		t.Error("next week's occurrence should be due")
	}
}

func TestSchedulerFiresDueJob(t *testing.T) {
	s := newTestScheduler(t)
	s.interval = 10 * time.Millisecond
	s.now = fixedNow(t, "2026-08-26 09:00:30")

	var fired atomic.Int32
	s.Register(&Job{ID: "j1", Weekday: time.Wednesday, Hour: 9, Minute: 0,
		MisfireGrace: 300 * time.Second,
		Run:          func(context.Context) { fired.Add(1) }})

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}
	// Coalesced: with a frozen clock the same occurrence fires exactly once.
	time.Sleep(50 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("fired %d times, want 1", n)
	}
}

func TestStartStop_Idempotent(t *testing.T) {
	s := newTestScheduler(t)
	s.interval = 10 * time.Millisecond
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
	if st := s.Status(); st.Running {
		t.Error("scheduler reports running after Stop")
	}
}

func TestStatus(t *testing.T) {
	store := repository.NewMemoryStore("")
	r := runner.New(store, aiclient.NewRegistryWith(), nil, nil)
	assetSvc := assets.NewService(store)

	s := newTestScheduler(t)
	s.now = fixedNow(t, "2026-08-25 12:00:00") // Tuesday
	RegisterPipelineJobs(s, store, r, assetSvc)

	st := s.Status()
	if st.Running {
		t.Error("should not be running before Start")
	}
	if len(st.Jobs) != 0 {
		t.Errorf("stopped scheduler must not expose next runs: %v", st.Jobs)
	}

	s.Start()
	defer s.Stop()
	st = s.Status()
	if !st.Running {
		t.Fatal("should be running")
	}
	if len(st.Jobs) != 10 {
		t.Fatalf("got %d jobs, want 9 sweeps + monday", len(st.Jobs))
	}

	byID := map[string]JobStatus{}
	for _, j := range st.Jobs {
		byID[j.ID] = j
	}
	for _, id := range []string{
		"ia_run_wed_0900", "ia_run_wed_1300", "ia_run_wed_2030",
		"ia_run_fri_0900", "ia_run_fri_1300", "ia_run_fri_2030",
		"ia_run_sun_0900", "ia_run_sun_1300", "ia_run_sun_2030",
		"monday_ready_to_send",
	} {
		if _, ok := byID[id]; !ok {
			t.Errorf("missing job %s", id)
		}
	}

	// Tuesday noon: next wed 09:00 is tomorrow morning.
	next := byID["ia_run_wed_0900"].NextRun
	if next == nil {
		t.Fatal("next_run missing")
	}
	if next.Weekday() != time.Wednesday || next.Hour() != 9 {
		t.Errorf("next_run = %s", next)
	}
	if byID["monday_ready_to_send"].Trigger != "cron[mon 09:00 Europe/Rome]" {
		t.Errorf("trigger = %q", byID["monday_ready_to_send"].Trigger)
	}
}

func TestPromoteReadyToSend(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore("")

	c := &domain.Campaign{ID: "c1", Profession: "couvreur", City: "Lyon",
		Status: domain.CampaignActive, CreatedAt: time.Now()}
	store.CreateCampaign(ctx, c)

	ready := &domain.Prospect{ID: "p1", CampaignID: "c1", Name: "A",
		Status: domain.StatusReadyAssets, EligibilityFlag: true,
		VideoURL: "v", ScreenshotURL: "s", LandingToken: domain.NewLandingToken()}
	store.CreateProspect(ctx, ready)

	notEligible := &domain.Prospect{ID: "p2", CampaignID: "c1", Name: "B",
		Status: domain.StatusReadyAssets, EligibilityFlag: false,
		VideoURL: "v", ScreenshotURL: "s", LandingToken: domain.NewLandingToken()}
	store.CreateProspect(ctx, notEligible)

	promoteReadyToSend(ctx, store, assets.NewService(store))

	got, _ := store.GetProspect(ctx, "p1")
	if got.Status != domain.StatusReadyToSend {
		t.Errorf("p1 status = %s, want READY_TO_SEND", got.Status)
	}
	left, _ := store.GetProspect(ctx, "p2")
	if left.Status != domain.StatusReadyAssets {
		t.Errorf("p2 status = %s, want READY_ASSETS untouched", left.Status)
	}
}
