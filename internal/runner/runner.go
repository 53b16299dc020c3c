// Package runner executes visibility sweeps: for each prospect it asks every
// active AI model the five canonical queries, extracts entities and mentions
// from the answers, and records one immutable test run per model.
package runner

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eurkai/prospecting/internal/aiclient"
	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/match"
	"github.com/eurkai/prospecting/internal/pkg/distlock"
	"github.com/eurkai/prospecting/internal/querybank"
	"github.com/eurkai/prospecting/internal/repository"
)

// DefaultStaleAfter is how long a prospect may sit in TESTING before a sweep
// picks it up again. Guards against crashes mid-run.
const DefaultStaleAfter = time.Hour

// ErrSweepInProgress is returned when another process holds the campaign's
// sweep lock.
var ErrSweepInProgress = fmt.Errorf("sweep already in progress")

// RunError records a prospect that failed during a campaign sweep.
type RunError struct {
	ProspectID string `json:"prospect_id"`
	Error      string `json:"error"`
}

// Summary aggregates the outcome of one campaign sweep.
type Summary struct {
	Total       int        `json:"total"`
	Processed   int        `json:"processed"`
	RunsCreated int        `json:"runs_created"`
	Errors      []RunError `json:"errors"`
}

// Runner drives visibility sweeps against the configured AI models.
type Runner struct {
	store      repository.Store
	registry   *aiclient.Registry
	redis      *redis.Client
	db         *sql.DB
	staleAfter time.Duration
	now        func() time.Time
}

// New creates a runner. redisClient and db may be nil; the sweep lock then
// degrades to a database advisory lock or an in-process lock.
func New(store repository.Store, registry *aiclient.Registry, redisClient *redis.Client, db *sql.DB) *Runner {
	return &Runner{
		store:      store,
		registry:   registry,
		redis:      redisClient,
		db:         db,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
}

// SetStaleAfter overrides the TESTING recovery window.
func (r *Runner) SetStaleAfter(d time.Duration) {
	if d > 0 {
		r.staleAfter = d
	}
}

// RunForProspect executes one sweep (active models x five queries) for a
// single prospect and returns the created runs. In dry-run mode no API is
// called and all three models produce simulated answers.
func (r *Runner) RunForProspect(ctx context.Context, p *domain.Prospect, dryRun bool) ([]*domain.TestRun, error) {
	queries := querybank.QueriesFor(p.Profession, p.City)
	models := r.registry.ActiveModels(dryRun)
	if len(models) == 0 {
		log.Printf("[Runner] no AI model configured, check API keys")
		return nil, nil
	}

	if p.Status == domain.StatusScheduled {
		if err := p.Transition(domain.StatusTesting); err != nil {
			return nil, err
		}
		if err := r.store.UpdateProspect(ctx, p); err != nil {
			return nil, fmt.Errorf("mark testing: %w", err)
		}
	}

	var created []*domain.TestRun
	for _, model := range models {
		run := r.runModel(ctx, p, model, queries, dryRun)
		if err := r.store.CreateRun(ctx, run); err != nil {
			return created, fmt.Errorf("store run %s: %w", model, err)
		}
		created = append(created, run)
	}

	if p.Status == domain.StatusTesting {
		if err := p.Transition(domain.StatusTested); err != nil {
			return created, err
		}
		if err := r.store.UpdateProspect(ctx, p); err != nil {
			return created, fmt.Errorf("mark tested: %w", err)
		}
	}

	return created, nil
}

// runModel asks one model all queries. Per-query failures are recorded in the
// run's notes and never abort the sweep.
func (r *Runner) runModel(ctx context.Context, p *domain.Prospect, model domain.AIModel, queries []string, dryRun bool) *domain.TestRun {
	rawAnswers := make([]string, 0, len(queries))
	entitiesPerQuery := make([][]domain.Entity, 0, len(queries))
	mentionPerQuery := make([]bool, 0, len(queries))
	var allCompetitors []string
	var noteParts []string
	mentionedInAny := false

	for qi, query := range queries {
		var answer string
		if dryRun {
			answer = "[DRY_RUN] Réponse simulée pour : " + query
		} else {
			var err error
			answer, err = r.ask(ctx, model, query)
			if err != nil {
				log.Printf("[Runner] [%s] Q%d error: %v", model, qi+1, err)
				answer = fmt.Sprintf("[ERREUR] %v", err)
				noteParts = append(noteParts, fmt.Sprintf("Q%d erreur %s: %v", qi+1, model, err))
			}
		}

		rawAnswers = append(rawAnswers, answer)
		entities := match.ExtractEntities(answer)
		entitiesPerQuery = append(entitiesPerQuery, entities)

		mentioned := match.Mentioned(answer, p.Name, p.Website)
		mentionPerQuery = append(mentionPerQuery, mentioned)
		if mentioned {
			mentionedInAny = true
		}

		allCompetitors = append(allCompetitors, match.ExtractCompetitors(entities, p.Name, p.Website)...)
	}

	seen := make(map[string]bool)
	var competitors []string
	for _, c := range allCompetitors {
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		competitors = append(competitors, c)
	}
	if len(competitors) > domain.MaxCompetitorsPerRun {
		competitors = competitors[:domain.MaxCompetitorsPerRun]
	}

	return &domain.TestRun{
		ID:                  uuid.New().String(),
		CampaignID:          p.CampaignID,
		ProspectID:          p.ID,
		Timestamp:           r.now().UTC(),
		Model:               model,
		Queries:             queries,
		RawAnswers:          rawAnswers,
		ExtractedEntities:   entitiesPerQuery,
		MentionedTarget:     mentionedInAny,
		MentionPerQuery:     mentionPerQuery,
		CompetitorsEntities: competitors,
		Notes:               strings.Join(noteParts, "; "),
	}
}

func (r *Runner) ask(ctx context.Context, model domain.AIModel, query string) (string, error) {
	adapter := r.registry.Adapter(model)
	if adapter == nil {
		return "", fmt.Errorf("no adapter for model %s", model)
	}
	callCtx, cancel := context.WithTimeout(ctx, aiclient.CallTimeout)
	defer cancel()
	return adapter.Ask(callCtx, query)
}

// RunForCampaign sweeps a campaign under its distributed lock. With explicit
// prospectIDs only those prospects are swept; otherwise all SCHEDULED ones
// plus TESTING prospects stuck longer than the staleness window.
func (r *Runner) RunForCampaign(ctx context.Context, campaignID string, prospectIDs []string, dryRun bool) (*Summary, error) {
	campaign, err := r.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Mode == domain.ModeDryRun {
		dryRun = true
	}

	lock := distlock.NewSweepLock(r.redis, r.db, campaignID, 30*time.Minute)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		return nil, ErrSweepInProgress
	}
	defer lock.Release(ctx)

	prospects, err := r.selectProspects(ctx, campaignID, prospectIDs)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Total: len(prospects), Errors: []RunError{}}
	for _, p := range prospects {
		runs, err := r.RunForProspect(ctx, p, dryRun)
		summary.RunsCreated += len(runs)
		if err != nil {
			log.Printf("[Runner] prospect %s error: %v", p.ID, err)
			summary.Errors = append(summary.Errors, RunError{ProspectID: p.ID, Error: err.Error()})
			continue
		}
		summary.Processed++
	}

	log.Printf("[Runner] campaign %s sweep done: %d/%d prospects, %d runs, %d errors",
		campaignID, summary.Processed, summary.Total, summary.RunsCreated, len(summary.Errors))
	return summary, nil
}

func (r *Runner) selectProspects(ctx context.Context, campaignID string, prospectIDs []string) ([]*domain.Prospect, error) {
	if len(prospectIDs) > 0 {
		var out []*domain.Prospect
		for _, id := range prospectIDs {
			p, err := r.store.GetProspect(ctx, id)
			if err != nil {
				if err == repository.ErrNotFound {
					continue
				}
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	}

	scheduled, err := r.store.ListProspects(ctx, campaignID, domain.StatusScheduled)
	if err != nil {
		return nil, err
	}

	// Recover prospects abandoned mid-sweep by a crashed process.
	testing, err := r.store.ListProspects(ctx, campaignID, domain.StatusTesting)
	if err != nil {
		return nil, err
	}
	cutoff := r.now().Add(-r.staleAfter)
	for _, p := range testing {
		if p.UpdatedAt.Before(cutoff) {
			log.Printf("[Runner] recovering stale TESTING prospect %s (updated %s)", p.ID, p.UpdatedAt.Format(time.RFC3339))
			scheduled = append(scheduled, p)
		}
	}
	return scheduled, nil
}
