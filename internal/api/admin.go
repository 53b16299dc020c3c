package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eurkai/prospecting/internal/domain"
)

const adminCSS = `<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:'Segoe UI',sans-serif;background:#f4f6fb;color:#1a1a2e;padding:30px}
h1{color:#1a1a2e;margin-bottom:6px;font-size:26px}
.meta{color:#666;font-size:14px;margin-bottom:30px}
table{border-collapse:collapse;width:100%;background:#fff;border-radius:10px;overflow:hidden;box-shadow:0 2px 8px rgba(0,0,0,.08)}
th{background:#1a1a2e;color:#fff;padding:12px 16px;font-size:13px;text-align:left;font-weight:600}
td{padding:11px 16px;border-bottom:1px solid #edf0f7;font-size:14px;vertical-align:middle}
tr:hover{background:#f8faff}
.badge{display:inline-block;padding:3px 10px;border-radius:12px;font-size:11px;font-weight:bold}
.badge-SCANNED{background:#dde;color:#445}
.badge-SCHEDULED{background:#ddf;color:#336}
.badge-TESTING{background:#ffd;color:#663}
.badge-TESTED{background:#d5f5e3;color:#1e8449}
.badge-SCORED{background:#e8daef;color:#6c3483}
.badge-READY_ASSETS{background:#fde8d8;color:#b03a2e}
.badge-READY_TO_SEND{background:#d0f0d0;color:#196f3d}
.badge-SENT_MANUAL{background:#ccc;color:#555}
.score{font-weight:bold;color:#e94560;font-size:18px}
.eligible{color:#1e8449;font-weight:bold}
.not-eligible{color:#aaa;font-size:12px}
form.inline{display:inline}
input[type=url]{padding:5px 8px;border:1px solid #ccc;border-radius:4px;font-size:13px;width:200px}
.btn{padding:6px 14px;border:none;border-radius:4px;cursor:pointer;font-size:13px;font-weight:600}
.btn-primary{background:#1a1a2e;color:#fff}
.btn-green{background:#27ae60;color:#fff}
.btn:hover{opacity:.85}
.stats{display:flex;gap:20px;margin-bottom:30px;flex-wrap:wrap}
.stat{background:#fff;border-radius:8px;padding:16px 24px;border-left:4px solid #e94560;box-shadow:0 2px 6px rgba(0,0,0,.06)}
.stat .num{font-size:32px;font-weight:bold;color:#e94560}
.stat .lbl{font-size:13px;color:#666;margin-top:4px}
</style>`

const adminCampaignTemplate = `<!DOCTYPE html>
<html lang="fr"><head><meta charset="UTF-8"><title>Admin — {{ profession }} {{ city }}</title>
` + adminCSS + `</head><body>
<h1>🎯 Campagne — {{ profession_title }} à {{ city }}</h1>
<p class="meta">ID: {{ campaign_id }} | Mode: {{ mode }} | Timezone: {{ timezone }}</p>
<div class="stats">
  <div class="stat"><div class="num">{{ total }}</div><div class="lbl">Prospects</div></div>
  <div class="stat"><div class="num">{{ scored }}</div><div class="lbl">Scorés</div></div>
  <div class="stat"><div class="num">{{ eligible }}</div><div class="lbl">Éligibles</div></div>
  <div class="stat"><div class="num">{{ ready }}</div><div class="lbl">Ready to Send</div></div>
</div>
<table>
  <tr>
    <th>Prospect</th><th>Score</th><th>Email OK</th><th>Statut</th>
    <th>Concurrents</th><th>Assets (video / screenshot)</th><th>Actions</th>
  </tr>
  {% for row in rows %}<tr>
    <td><strong>{{ row.name }}</strong><br><small style="color:#888">{{ row.website }}</small></td>
    <td>{% if row.has_score %}<span class="score">{{ row.score }}/10</span>{% else %}—{% endif %}</td>
    <td>{% if row.eligible %}<span class="eligible">✓ EMAIL OK</span>{% else %}<span class="not-eligible">✗</span>{% endif %}</td>
    <td><span class="badge badge-{{ row.status }}">{{ row.status }}</span></td>
    <td>{{ row.competitors }}</td>
    <td>
      <form method="post" action="/admin/prospect/{{ row.prospect_id }}/assets?token={{ token }}" class="inline">
        <input type="url" name="video_url" value="{{ row.video_url }}" placeholder="video_url" required>
        <input type="url" name="screenshot_url" value="{{ row.screenshot_url }}" placeholder="screenshot_url" required>
        <button class="btn btn-primary" type="submit">Sauvegarder</button>
      </form>
    </td>
    <td>
      {% if row.can_mark_ready %}<form method="post" action="/admin/prospect/{{ row.prospect_id }}/mark-ready?token={{ token }}" class="inline">
        <button class="btn btn-green" type="submit">▶ READY_TO_SEND</button>
      </form>{% endif %}
      {% if row.eligible %}<a href="{{ row.landing_url }}" target="_blank" style="font-size:12px">🔗 landing</a>{% endif %}
    </td>
  </tr>
  {% endfor %}
</table>
<p style="margin-top:20px;font-size:13px;color:#999">
  <a href="/api/campaign/{{ campaign_id }}/status" style="color:#e94560">API status</a>
</p>
</body></html>`

const adminCampaignsTemplate = `<!DOCTYPE html>
<html lang="fr"><head><meta charset="UTF-8"><title>Admin</title>
` + adminCSS + `</head><body>
<h1>Campagnes</h1>
<table>
  <tr><th>Campagne</th><th>Mode</th><th>Prospects</th><th>Créée</th></tr>
  {% for row in rows %}<tr>
    <td><a href="/admin/campaign/{{ row.campaign_id }}?token={{ token }}">{{ row.profession }} — {{ row.city }}</a></td>
    <td>{{ row.mode }}</td><td>{{ row.prospect_count }}</td><td>{{ row.created }}</td>
  </tr>
  {% endfor %}
</table>
</body></html>`

// requireAdmin guards the /admin routes with a static token carried in the
// X-Admin-Token header or the token query param.
func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if h.adminToken == "" || token != h.adminToken {
			respondError(w, http.StatusUnauthorized, "Non autorisé — X-Admin-Token invalide")
			return
		}
		next.ServeHTTP(w, r)
	})
}

var professionCaser = cases.Title(language.French)

// AdminCampaigns lists all campaigns as HTML.
//
//	GET /admin/campaigns
func (h *Handlers) AdminCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.store.ListCampaigns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var rows []map[string]interface{}
	for _, c := range campaigns {
		count, err := h.store.CountProspects(r.Context(), c.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		rows = append(rows, map[string]interface{}{
			"campaign_id":    c.ID,
			"profession":     c.Profession,
			"city":           c.City,
			"mode":           string(c.Mode),
			"prospect_count": count,
			"created":        c.CreatedAt.Format("02/01/2006"),
		})
	}

	html, err := h.engine.ParseAndRenderString(adminCampaignsTemplate, map[string]interface{}{
		"rows":  rows,
		"token": url.QueryEscape(r.URL.Query().Get("token")),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondHTML(w, http.StatusOK, html)
}

// AdminCampaign renders the operator view of one campaign: prospects sorted
// by score with status badges, asset forms and mark-ready actions.
//
//	GET /admin/campaign/{campaignID}
func (h *Handlers) AdminCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, ok := h.campaignOr404(w, r)
	if !ok {
		return
	}

	prospects, err := h.store.ListProspects(r.Context(), campaign.ID, "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stats := map[string]int{}
	var rows []map[string]interface{}
	for _, p := range prospects {
		stats["total"]++
		if p.EligibilityFlag {
			stats["eligible"]++
		}
		switch p.Status {
		case domain.StatusReadyToSend:
			stats["ready"]++
			stats["scored"]++
		case domain.StatusScored, domain.StatusReadyAssets:
			stats["scored"]++
		}

		competitors := p.CompetitorsCited
		if len(competitors) > 2 {
			competitors = competitors[:2]
		}
		row := map[string]interface{}{
			"prospect_id":    p.ID,
			"name":           p.Name,
			"website":        orDash(p.Website),
			"has_score":      p.IAVisibilityScore != nil,
			"score":          fmt.Sprintf("%.1f", p.Score()),
			"eligible":       p.EligibilityFlag,
			"status":         string(p.Status),
			"competitors":    orDash(strings.Join(competitors, ", ")),
			"video_url":      p.VideoURL,
			"screenshot_url": p.ScreenshotURL,
			"can_mark_ready": p.Status == domain.StatusReadyAssets && p.EligibilityFlag,
			"landing_url":    h.deliver.LandingURL(p),
		}
		rows = append(rows, row)
	}

	html, err := h.engine.ParseAndRenderString(adminCampaignTemplate, map[string]interface{}{
		"campaign_id":      campaign.ID,
		"profession":       campaign.Profession,
		"profession_title": professionCaser.String(campaign.Profession),
		"city":             campaign.City,
		"mode":             string(campaign.Mode),
		"timezone":         campaign.Timezone,
		"total":            stats["total"],
		"scored":           stats["scored"],
		"eligible":         stats["eligible"],
		"ready":            stats["ready"],
		"rows":             rows,
		"token":            url.QueryEscape(r.URL.Query().Get("token")),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondHTML(w, http.StatusOK, html)
}

// AdminSetAssets handles the asset form post and bounces back to the
// campaign view.
//
//	POST /admin/prospect/{prospectID}/assets
func (h *Handlers) AdminSetAssets(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	p, err := h.applySetAssets(w, r, AssetsInput{
		VideoURL:      r.PostFormValue("video_url"),
		ScreenshotURL: r.PostFormValue("screenshot_url"),
	})
	if err != nil {
		return
	}
	h.redirectToCampaign(w, r, p.CampaignID)
}

// AdminMarkReady handles the mark-ready form post.
//
//	POST /admin/prospect/{prospectID}/mark-ready
func (h *Handlers) AdminMarkReady(w http.ResponseWriter, r *http.Request) {
	p, err := h.applyMarkReady(w, r)
	if err != nil {
		return
	}
	h.redirectToCampaign(w, r, p.CampaignID)
}

func (h *Handlers) redirectToCampaign(w http.ResponseWriter, r *http.Request, campaignID string) {
	target := "/admin/campaign/" + campaignID
	if token := r.URL.Query().Get("token"); token != "" {
		target += "?token=" + url.QueryEscape(token)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

