package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Admin-Token"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	// Public landing page, token-addressed.
	r.Get("/couvreur", h.LandingPage)

	r.Route("/api", func(r chi.Router) {
		// Campaigns and prospect import
		r.Post("/campaign/create", h.CreateCampaign)
		r.Get("/campaign/{campaignID}/status", h.CampaignStatus)
		r.Get("/campaigns", h.ListCampaigns)
		r.Post("/prospect-scan", h.ProspectScan)
		r.Post("/prospect-scan/csv", h.ProspectScanCSV)

		// Prospect lookups
		r.Get("/prospect/{prospectID}", h.GetProspect)
		r.Get("/prospect/{prospectID}/runs", h.ProspectRuns)
		r.Get("/prospect/{prospectID}/score", h.ProspectScore)

		// Pipeline operations
		r.Post("/ia-test/run", h.RunIATest)
		r.Post("/scoring/run", h.RunScoring)

		// Assets and gate
		r.Post("/prospect/{prospectID}/assets", h.SetAssets)
		r.Post("/prospect/{prospectID}/mark-ready", h.MarkReadyToSend)
		r.Post("/prospect/{prospectID}/mark-sent", h.MarkSentManual)

		// Deliverables
		r.Post("/generate/campaign", h.GenerateCampaign)
		r.Post("/generate/prospect/{prospectID}/audit", h.GenerateAudit)
		r.Post("/generate/prospect/{prospectID}/email", h.GenerateEmail)
		r.Post("/generate/prospect/{prospectID}/video-script", h.GenerateVideoScript)

		// Scheduler control
		r.Post("/scheduler/start", h.SchedulerStart)
		r.Post("/scheduler/stop", h.SchedulerStop)
		r.Get("/scheduler/status", h.SchedulerStatus)
	})

	// Admin HTML views, token-guarded.
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/campaigns", h.AdminCampaigns)
		r.Get("/campaign/{campaignID}", h.AdminCampaign)
		r.Post("/prospect/{prospectID}/assets", h.AdminSetAssets)
		r.Post("/prospect/{prospectID}/mark-ready", h.AdminMarkReady)
	})

	return r
}
