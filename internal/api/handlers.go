package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/osteele/liquid"
	"github.com/redis/go-redis/v9"

	"github.com/eurkai/prospecting/internal/aiclient"
	"github.com/eurkai/prospecting/internal/assets"
	"github.com/eurkai/prospecting/internal/deliverables"
	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
	"github.com/eurkai/prospecting/internal/runner"
	"github.com/eurkai/prospecting/internal/scheduler"
	"github.com/eurkai/prospecting/internal/scoring"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	store      repository.Store
	registry   *aiclient.Registry
	runner     *runner.Runner
	scoring    *scoring.Service
	assets     *assets.Service
	deliver    *deliverables.Service
	sched      *scheduler.Scheduler
	redis      *redis.Client
	adminToken string
	engine     *liquid.Engine
	startTime  time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	store repository.Store,
	registry *aiclient.Registry,
	run *runner.Runner,
	scoringSvc *scoring.Service,
	assetSvc *assets.Service,
	deliverSvc *deliverables.Service,
	sched *scheduler.Scheduler,
	redisClient *redis.Client,
	adminToken string,
) *Handlers {
	return &Handlers{
		store:      store,
		registry:   registry,
		runner:     run,
		scoring:    scoringSvc,
		assets:     assetSvc,
		deliver:    deliverSvc,
		sched:      sched,
		redis:      redisClient,
		adminToken: adminToken,
		engine:     liquid.NewEngine(),
		startTime:  time.Now(),
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(html))
}

// HealthCheck reports process liveness plus the state of optional deps.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "up"}
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}
	} else {
		checks["redis"] = "not_configured"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "healthy",
		"uptime":            time.Since(h.startTime).Round(time.Second).String(),
		"scheduler_running": h.sched != nil && h.sched.Status().Running,
		"checks":            checks,
	})
}

// CampaignCreateInput is the body of POST /api/campaign/create.
type CampaignCreateInput struct {
	Profession   string `json:"profession"`
	City         string `json:"city"`
	MaxProspects int    `json:"max_prospects"`
	Mode         string `json:"mode"`
}

// CreateCampaign creates a campaign with the imposed weekly schedule.
//
//	POST /api/campaign/create
func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var input CampaignCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.Profession == "" || input.City == "" {
		respondError(w, http.StatusBadRequest, "profession et city sont obligatoires")
		return
	}

	campaign, err := h.createCampaign(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"campaign_id": campaign.ID,
		"profession":  campaign.Profession,
		"city":        campaign.City,
		"mode":        campaign.Mode,
		"schedule": map[string]interface{}{
			"days":     campaign.ScheduleDays,
			"times":    campaign.ScheduleTimes,
			"timezone": campaign.Timezone,
		},
		"status": campaign.Status,
	})
}

// CampaignStatus returns a campaign with per-status prospect counters.
//
//	GET /api/campaign/{campaignID}/status
func (h *Handlers) CampaignStatus(w http.ResponseWriter, r *http.Request) {
	campaign, ok := h.campaignOr404(w, r)
	if !ok {
		return
	}

	prospects, err := h.store.ListProspects(r.Context(), campaign.ID, "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	byStatus := map[domain.ProspectStatus]int{}
	eligible := 0
	for _, p := range prospects {
		byStatus[p.Status]++
		if p.EligibilityFlag {
			eligible++
		}
	}

	var schedStatus interface{}
	if h.sched != nil {
		schedStatus = h.sched.Status()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"campaign_id":     campaign.ID,
		"profession":      campaign.Profession,
		"city":            campaign.City,
		"mode":            campaign.Mode,
		"status":          campaign.Status,
		"total_prospects": len(prospects),
		"by_status":       byStatus,
		"eligible":        eligible,
		"scheduler":       schedStatus,
	})
}

// ListCampaigns lists all campaigns with their prospect counts.
//
//	GET /api/campaigns
func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.store.ListCampaigns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]interface{}, 0, len(campaigns))
	for _, c := range campaigns {
		count, err := h.store.CountProspects(r.Context(), c.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, map[string]interface{}{
			"campaign_id":    c.ID,
			"profession":     c.Profession,
			"city":           c.City,
			"mode":           c.Mode,
			"status":         c.Status,
			"created_at":     c.CreatedAt.Format(time.RFC3339),
			"prospect_count": count,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// GetProspect returns a single prospect.
//
//	GET /api/prospect/{prospectID}
func (h *Handlers) GetProspect(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prospectOr404(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// ProspectRuns returns the run history of a prospect in chronological order.
//
//	GET /api/prospect/{prospectID}/runs
func (h *Handlers) ProspectRuns(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prospectOr404(w, r)
	if !ok {
		return
	}

	runs, err := h.store.ListRuns(r.Context(), p.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		competitors := run.CompetitorsEntities
		if len(competitors) > 5 {
			competitors = competitors[:5]
		}
		out = append(out, map[string]interface{}{
			"run_id":            run.ID,
			"model":             run.Model,
			"ts":                run.Timestamp.Format(time.RFC3339),
			"mentioned_target":  run.MentionedTarget,
			"mention_per_query": run.MentionPerQuery,
			"competitors":       competitors,
			"notes":             run.Notes,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"prospect_id": p.ID,
		"total_runs":  len(runs),
		"runs":        out,
	})
}

// ProspectScore returns the score and justification of a prospect.
//
//	GET /api/prospect/{prospectID}/score
func (h *Handlers) ProspectScore(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prospectOr404(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"prospect_id":       p.ID,
		"name":              p.Name,
		"city":              p.City,
		"status":            p.Status,
		"score":             p.IAVisibilityScore,
		"eligibility_flag":  p.EligibilityFlag,
		"competitors_cited": p.CompetitorsCited,
		"justification":     p.ScoreJustification,
	})
}
