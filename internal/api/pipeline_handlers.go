package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eurkai/prospecting/internal/assets"
	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
	"github.com/eurkai/prospecting/internal/runner"
)

// IATestRunInput is the body of POST /api/ia-test/run.
type IATestRunInput struct {
	CampaignID  string   `json:"campaign_id"`
	ProspectIDs []string `json:"prospect_ids"`
}

// RunIATest launches one visibility sweep over the campaign's SCHEDULED
// prospects. ?dry_run=true simulates without calling the AI APIs.
//
//	POST /api/ia-test/run
func (h *Handlers) RunIATest(w http.ResponseWriter, r *http.Request) {
	var input IATestRunInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	dryRun := r.URL.Query().Get("dry_run") == "true"

	if _, err := h.store.GetCampaign(r.Context(), input.CampaignID); err != nil {
		if err == repository.ErrNotFound {
			respondError(w, http.StatusNotFound, "Campagne introuvable")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	activeModels := h.registry.ActiveModels(dryRun)
	if len(activeModels) == 0 {
		respondError(w, http.StatusBadRequest,
			"Aucune clé API IA configurée (OPENAI_API_KEY / ANTHROPIC_API_KEY / GEMINI_API_KEY)")
		return
	}

	summary, err := h.runner.RunForCampaign(r.Context(), input.CampaignID, input.ProspectIDs, dryRun)
	if err != nil {
		if errors.Is(err, runner.ErrSweepInProgress) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"campaign_id":   input.CampaignID,
		"dry_run":       dryRun,
		"models_active": activeModels,
		"total":         summary.Total,
		"processed":     summary.Processed,
		"runs_created":  summary.RunsCreated,
		"errors":        summary.Errors,
	})
}

// ScoringRunInput is the body of POST /api/scoring/run.
type ScoringRunInput struct {
	CampaignID  string   `json:"campaign_id"`
	ProspectIDs []string `json:"prospect_ids"`
}

// RunScoring computes EMAIL_OK and the /10 score for TESTED prospects.
//
//	POST /api/scoring/run
func (h *Handlers) RunScoring(w http.ResponseWriter, r *http.Request) {
	var input ScoringRunInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := h.store.GetCampaign(r.Context(), input.CampaignID); err != nil {
		if err == repository.ErrNotFound {
			respondError(w, http.StatusNotFound, "Campagne introuvable")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.scoring.Run(r.Context(), input.CampaignID, input.ProspectIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"campaign_id": input.CampaignID,
		"total":       result.Total,
		"scored":      result.Scored,
		"eligible":    result.Eligible,
		"skipped":     result.Skipped,
	})
}

// AssetsInput is the body of POST /api/prospect/{id}/assets.
type AssetsInput struct {
	VideoURL      string `json:"video_url"`
	ScreenshotURL string `json:"screenshot_url"`
}

// SetAssets records the outreach assets and promotes SCORED → READY_ASSETS.
//
//	POST /api/prospect/{prospectID}/assets
func (h *Handlers) SetAssets(w http.ResponseWriter, r *http.Request) {
	var input AssetsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := h.applySetAssets(w, r, input)
	if err != nil {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"prospect_id":    p.ID,
		"status":         p.Status,
		"video_url":      p.VideoURL,
		"screenshot_url": p.ScreenshotURL,
	})
}

// MarkReadyToSend runs the strict gate guarding the READY_TO_SEND transition.
//
//	POST /api/prospect/{prospectID}/mark-ready
func (h *Handlers) MarkReadyToSend(w http.ResponseWriter, r *http.Request) {
	p, err := h.applyMarkReady(w, r)
	if err != nil {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"prospect_id": p.ID,
		"status":      p.Status,
		"landing_url": h.deliver.LandingURL(p),
	})
}

// MarkSentManual records that the operator sent the email by hand.
//
//	POST /api/prospect/{prospectID}/mark-sent
func (h *Handlers) MarkSentManual(w http.ResponseWriter, r *http.Request) {
	id := prospectParam(r)
	p, err := h.assets.MarkSentManual(r.Context(), id)
	if err != nil {
		writeAssetError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"prospect_id": p.ID,
		"status":      p.Status,
	})
}

// GenerateInput is the body of POST /api/generate/campaign.
type GenerateInput struct {
	CampaignID  string   `json:"campaign_id"`
	ProspectIDs []string `json:"prospect_ids"`
}

// GenerateCampaign renders audit + email + video script + send-queue CSV for
// the campaign's eligible READY_ASSETS prospects.
//
//	POST /api/generate/campaign
func (h *Handlers) GenerateCampaign(w http.ResponseWriter, r *http.Request) {
	var input GenerateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := h.store.GetCampaign(r.Context(), input.CampaignID); err != nil {
		if err == repository.ErrNotFound {
			respondError(w, http.StatusNotFound, "Campagne introuvable")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.deliver.GenerateForCampaign(r.Context(), input.CampaignID, input.ProspectIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GenerateAudit renders the audit report for one prospect.
//
//	POST /api/generate/prospect/{prospectID}/audit
func (h *Handlers) GenerateAudit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prospectOr404(w, r)
	if !ok {
		return
	}
	html, err := h.deliver.GenerateAudit(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondHTML(w, http.StatusOK, html)
}

// GenerateEmail renders the email draft for one prospect.
//
//	POST /api/generate/prospect/{prospectID}/email
func (h *Handlers) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prospectOr404(w, r)
	if !ok {
		return
	}
	email, err := h.deliver.GenerateEmail(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, email)
}

// GenerateVideoScript renders the 90-second video script for one prospect.
//
//	POST /api/generate/prospect/{prospectID}/video-script
func (h *Handlers) GenerateVideoScript(w http.ResponseWriter, r *http.Request) {
	p, ok := h.prospectOr404(w, r)
	if !ok {
		return
	}
	script, err := h.deliver.GenerateVideoScript(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"script": script})
}

// SchedulerStart starts the weekly sweep scheduler. Idempotent.
//
//	POST /api/scheduler/start
func (h *Handlers) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		respondError(w, http.StatusServiceUnavailable, "scheduler not configured")
		return
	}
	h.sched.Start()
	respondJSON(w, http.StatusOK, h.sched.Status())
}

// SchedulerStop stops the scheduler. Idempotent.
//
//	POST /api/scheduler/stop
func (h *Handlers) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		respondError(w, http.StatusServiceUnavailable, "scheduler not configured")
		return
	}
	h.sched.Stop()
	respondJSON(w, http.StatusOK, h.sched.Status())
}

// SchedulerStatus reports registered jobs and their next occurrences.
//
//	GET /api/scheduler/status
func (h *Handlers) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		respondError(w, http.StatusServiceUnavailable, "scheduler not configured")
		return
	}
	respondJSON(w, http.StatusOK, h.sched.Status())
}

// applySetAssets is shared between the JSON endpoint and the admin form post.
func (h *Handlers) applySetAssets(w http.ResponseWriter, r *http.Request, input AssetsInput) (*domain.Prospect, error) {
	id := prospectParam(r)
	p, err := h.assets.SetAssets(r.Context(), id, input.VideoURL, input.ScreenshotURL)
	if err != nil {
		writeAssetError(w, err)
		return nil, err
	}
	return p, nil
}

func (h *Handlers) applyMarkReady(w http.ResponseWriter, r *http.Request) (*domain.Prospect, error) {
	id := prospectParam(r)
	p, err := h.assets.MarkReadyToSend(r.Context(), id)
	if err != nil {
		writeAssetError(w, err)
		return nil, err
	}
	return p, nil
}

// writeAssetError maps gate and validation failures to 400, missing prospects
// to 404 and everything else to 500.
func writeAssetError(w http.ResponseWriter, err error) {
	var gateErr *assets.GateError
	switch {
	case err == repository.ErrNotFound:
		respondError(w, http.StatusNotFound, "Prospect introuvable")
	case errors.As(err, &gateErr),
		errors.Is(err, assets.ErrMissingVideoURL),
		errors.Is(err, assets.ErrMissingScreenshotURL),
		errors.Is(err, domain.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
