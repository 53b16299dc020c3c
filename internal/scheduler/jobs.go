package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/eurkai/prospecting/internal/assets"
	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
	"github.com/eurkai/prospecting/internal/runner"
)

const (
	sweepMisfireGrace  = 300 * time.Second
	mondayMisfireGrace = 600 * time.Second
)

var sweepSlots = []struct {
	day    time.Weekday
	short  string
	hour   int
	minute int
}{
	{time.Wednesday, "wed", 9, 0}, {time.Wednesday, "wed", 13, 0}, {time.Wednesday, "wed", 20, 30},
	{time.Friday, "fri", 9, 0}, {time.Friday, "fri", 13, 0}, {time.Friday, "fri", 20, 30},
	{time.Sunday, "sun", 9, 0}, {time.Sunday, "sun", 13, 0}, {time.Sunday, "sun", 20, 30},
}

// RegisterPipelineJobs wires the weekly sweep slots and the Monday promotion
// job. Registration is idempotent: calling it again replaces the jobs.
func RegisterPipelineJobs(s *Scheduler, store repository.Store, r *runner.Runner, assetSvc *assets.Service) {
	for _, slot := range sweepSlots {
		s.Register(&Job{
			ID:           fmt.Sprintf("ia_run_%s_%02d%02d", slot.short, slot.hour, slot.minute),
			Weekday:      slot.day,
			Hour:         slot.hour,
			Minute:       slot.minute,
			MisfireGrace: sweepMisfireGrace,
			Run: func(ctx context.Context) {
				sweepActiveCampaigns(ctx, store, r)
			},
		})
	}

	s.Register(&Job{
		ID:           "monday_ready_to_send",
		Weekday:      time.Monday,
		Hour:         9,
		Minute:       0,
		MisfireGrace: mondayMisfireGrace,
		Run: func(ctx context.Context) {
			promoteReadyToSend(ctx, store, assetSvc)
		},
	})
}

// sweepActiveCampaigns runs the visibility sweep for every active campaign.
// Per-campaign failures are logged and never stop the loop.
func sweepActiveCampaigns(ctx context.Context, store repository.Store, r *runner.Runner) {
	log.Printf("[Scheduler] scheduled sweep starting")
	campaigns, err := store.ListCampaigns(ctx)
	if err != nil {
		log.Printf("[Scheduler] list campaigns: %v", err)
		return
	}
	for _, c := range campaigns {
		if !c.IsActive() {
			continue
		}
		summary, err := r.RunForCampaign(ctx, c.ID, nil, c.Mode == domain.ModeDryRun)
		if err != nil {
			log.Printf("[Scheduler] campaign %s sweep: %v", c.ID, err)
			continue
		}
		log.Printf("[Scheduler] campaign %s: %d/%d processed, %d runs",
			c.ID, summary.Processed, summary.Total, summary.RunsCreated)
	}
}

// promoteReadyToSend advances every eligible READY_ASSETS prospect of the
// active campaigns through the READY_TO_SEND gate.
func promoteReadyToSend(ctx context.Context, store repository.Store, assetSvc *assets.Service) {
	log.Printf("[Scheduler] Monday READY_TO_SEND promotion starting")
	campaigns, err := store.ListCampaigns(ctx)
	if err != nil {
		log.Printf("[Scheduler] list campaigns: %v", err)
		return
	}
	promoted := 0
	for _, c := range campaigns {
		if !c.IsActive() {
			continue
		}
		prospects, err := store.ListProspects(ctx, c.ID, domain.StatusReadyAssets)
		if err != nil {
			log.Printf("[Scheduler] list prospects %s: %v", c.ID, err)
			continue
		}
		for _, p := range prospects {
			if !p.EligibilityFlag || !p.HasAssets() {
				continue
			}
			if _, err := assetSvc.MarkReadyToSend(ctx, p.ID); err != nil {
				log.Printf("[Scheduler] prospect %s not promoted: %v", p.ID, err)
				continue
			}
			promoted++
			log.Printf("[Scheduler] prospect %s -> READY_TO_SEND", p.ID)
		}
	}
	log.Printf("[Scheduler] Monday promotion done: %d prospect(s)", promoted)
}
