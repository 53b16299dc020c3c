package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
)

const defaultMaxProspects = 30

// ProspectInput is one business to import.
type ProspectInput struct {
	Name            string `json:"name"`
	City            string `json:"city"`
	Profession      string `json:"profession"`
	Website         string `json:"website"`
	Phone           string `json:"phone"`
	ReviewsCount    *int   `json:"reviews_count"`
	GoogleAdsActive *bool  `json:"google_ads_active"`
}

// ProspectScanInput is the body of POST /api/prospect-scan.
type ProspectScanInput struct {
	City            string          `json:"city"`
	Profession      string          `json:"profession"`
	MaxProspects    int             `json:"max_prospects"`
	CampaignID      string          `json:"campaign_id"`
	ManualProspects []ProspectInput `json:"manual_prospects"`
}

func (h *Handlers) createCampaign(ctx context.Context, input CampaignCreateInput) (*domain.Campaign, error) {
	mode := domain.CampaignMode(input.Mode)
	if mode == "" {
		mode = domain.ModeAutoTest
	}
	maxProspects := input.MaxProspects
	if maxProspects <= 0 {
		maxProspects = defaultMaxProspects
	}

	campaign := &domain.Campaign{
		ID:            uuid.New().String(),
		Profession:    input.Profession,
		City:          input.City,
		Timezone:      domain.DefaultTimezone,
		ScheduleDays:  domain.DefaultScheduleDays(),
		ScheduleTimes: domain.DefaultScheduleTimes(),
		Mode:          mode,
		Status:        domain.CampaignActive,
		MaxProspects:  maxProspects,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.store.CreateCampaign(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// ProspectScan imports prospects into a campaign. Prospects come from
// manual_prospects in the body; without any, placeholders are generated so the
// operator sees the shape of the expected list.
//
//	POST /api/prospect-scan
func (h *Handlers) ProspectScan(w http.ResponseWriter, r *http.Request) {
	var input ProspectScanInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if input.City == "" || input.Profession == "" {
		respondError(w, http.StatusBadRequest, "profession et city sont obligatoires")
		return
	}

	created, status, err := h.scanProspects(r.Context(), input)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}

	out := make([]map[string]interface{}, 0, len(created))
	for _, p := range created {
		out = append(out, map[string]interface{}{
			"prospect_id": p.ID,
			"name":        p.Name,
			"city":        p.City,
			"website":     p.Website,
			"status":      p.Status,
		})
	}
	var campaignID string
	if len(created) > 0 {
		campaignID = created[0].CampaignID
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"campaign_id": campaignID,
		"created":     len(created),
		"prospects":   out,
	})
}

// ProspectScanCSV imports prospects from an uploaded CSV file. Query params:
// city, profession, max_prospects, campaign_id; form field: file.
//
//	POST /api/prospect-scan/csv
func (h *Handlers) ProspectScanCSV(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	profession := r.URL.Query().Get("profession")
	if city == "" || profession == "" {
		respondError(w, http.StatusBadRequest, "profession et city sont obligatoires")
		return
	}
	maxProspects := defaultMaxProspects
	if v := r.URL.Query().Get("max_prospects"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxProspects = n
		}
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "fichier CSV manquant (champ 'file')")
		return
	}
	defer file.Close()

	manual := loadFromCSV(file, city, profession)
	if len(manual) == 0 {
		respondError(w, http.StatusBadRequest, "CSV vide ou format invalide (colonne 'name' requise)")
		return
	}
	if len(manual) > maxProspects {
		manual = manual[:maxProspects]
	}

	created, status, err := h.scanProspects(r.Context(), ProspectScanInput{
		City:            city,
		Profession:      profession,
		MaxProspects:    maxProspects,
		CampaignID:      r.URL.Query().Get("campaign_id"),
		ManualProspects: manual,
	})
	if err != nil {
		respondError(w, status, err.Error())
		return
	}
	var campaignID string
	if len(created) > 0 {
		campaignID = created[0].CampaignID
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"created":     len(created),
		"campaign_id": campaignID,
	})
}

// scanProspects resolves or creates the campaign, inserts the prospects as
// SCANNED and immediately promotes them to SCHEDULED so sweeps pick them up.
func (h *Handlers) scanProspects(ctx context.Context, input ProspectScanInput) ([]*domain.Prospect, int, error) {
	maxProspects := input.MaxProspects
	if maxProspects <= 0 {
		maxProspects = defaultMaxProspects
	}

	var campaign *domain.Campaign
	if input.CampaignID != "" {
		var err error
		campaign, err = h.store.GetCampaign(ctx, input.CampaignID)
		if err == repository.ErrNotFound {
			return nil, http.StatusBadRequest, errCampaignNotFound(input.CampaignID)
		}
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
	} else {
		var err error
		campaign, err = h.createCampaign(ctx, CampaignCreateInput{
			Profession:   input.Profession,
			City:         input.City,
			MaxProspects: maxProspects,
		})
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
	}

	inputs := input.ManualProspects
	if len(inputs) > maxProspects {
		inputs = inputs[:maxProspects]
	}
	if len(inputs) == 0 {
		n := maxProspects
		if n > 3 {
			n = 3
		}
		inputs = placeholderProspects(input.City, input.Profession, n)
	}

	now := time.Now().UTC()
	created := make([]*domain.Prospect, 0, len(inputs))
	for _, inp := range inputs {
		p := &domain.Prospect{
			ID:               uuid.New().String(),
			CampaignID:       campaign.ID,
			Name:             inp.Name,
			City:             orDefault(inp.City, input.City),
			Profession:       orDefault(inp.Profession, input.Profession),
			Website:          inp.Website,
			Phone:            inp.Phone,
			ReviewsCount:     inp.ReviewsCount,
			GoogleAdsActive:  inp.GoogleAdsActive,
			CompetitorsCited: []string{},
			LandingToken:     domain.NewLandingToken(),
			Status:           domain.StatusScanned,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := h.store.CreateProspect(ctx, p); err != nil {
			return nil, http.StatusInternalServerError, err
		}
		created = append(created, p)
	}

	for _, p := range created {
		if err := p.Transition(domain.StatusScheduled); err != nil {
			return nil, http.StatusInternalServerError, err
		}
		if err := h.store.UpdateProspect(ctx, p); err != nil {
			return nil, http.StatusInternalServerError, err
		}
	}
	return created, http.StatusOK, nil
}

// loadFromCSV parses rows with columns name, city, profession, website, phone,
// reviews_count, google_ads_active. Only name is required; rows without one
// are skipped.
func loadFromCSV(r io.Reader, city, profession string) []ProspectInput {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []ProspectInput
	for {
		row, err := reader.Read()
		if err != nil {
			break
		}
		name := field(row, "name")
		if name == "" {
			continue
		}
		p := ProspectInput{
			Name:       name,
			City:       orDefault(field(row, "city"), city),
			Profession: orDefault(field(row, "profession"), profession),
			Website:    field(row, "website"),
			Phone:      field(row, "phone"),
		}
		if v := field(row, "reviews_count"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				p.ReviewsCount = &n
			}
		}
		switch strings.ToLower(field(row, "google_ads_active")) {
		case "true", "1", "oui":
			active := true
			p.GoogleAdsActive = &active
		}
		out = append(out, p)
	}
	return out
}

// placeholderProspects signals that the operator must supply a real list.
func placeholderProspects(city, profession string, count int) []ProspectInput {
	out := make([]ProspectInput, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, ProspectInput{
			Name:       "[PLACEHOLDER] " + professionCaser.String(profession) + " " + strconv.Itoa(i+1) + " " + city,
			City:       city,
			Profession: profession,
		})
	}
	return out
}

func errCampaignNotFound(id string) error {
	return fmt.Errorf("Campaign %s introuvable", id)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func prospectParam(r *http.Request) string {
	return chi.URLParam(r, "prospectID")
}

// campaignOr404 loads the campaign from the URL, writing a 404 on miss.
func (h *Handlers) campaignOr404(w http.ResponseWriter, r *http.Request) (*domain.Campaign, bool) {
	id := chi.URLParam(r, "campaignID")
	campaign, err := h.store.GetCampaign(r.Context(), id)
	if err == repository.ErrNotFound {
		respondError(w, http.StatusNotFound, "Campagne introuvable")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return campaign, true
}

// prospectOr404 loads the prospect from the URL, writing a 404 on miss.
func (h *Handlers) prospectOr404(w http.ResponseWriter, r *http.Request) (*domain.Prospect, bool) {
	id := chi.URLParam(r, "prospectID")
	p, err := h.store.GetProspect(r.Context(), id)
	if err == repository.ErrNotFound {
		respondError(w, http.StatusNotFound, "Prospect introuvable")
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return p, true
}
