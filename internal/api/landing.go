package api

import (
	"log"
	"net/http"
	"strings"
	"time"
)

const landingCacheTTL = 10 * time.Minute

const landingTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1.0">
<title>Audit IA — {{ city }}</title>
<style>
  *{box-sizing:border-box;margin:0;padding:0}
  body{font-family:'Segoe UI',sans-serif;background:#0f0f1a;color:#e8e8f0;line-height:1.6}
  .hero{background:linear-gradient(135deg,#1a1a2e,#16213e);padding:80px 20px;text-align:center}
  .hero h1{font-size:clamp(26px,4vw,44px);color:#fff;max-width:750px;margin:auto 0 20px}
  .hero h1 span{color:#e94560}
  .hero p{font-size:18px;color:#aaa;max-width:600px;margin:0 auto}
  .container{max-width:900px;margin:0 auto;padding:0 20px}
  section{padding:60px 20px}
  h2{font-size:28px;margin-bottom:20px;color:#fff}
  .proof-block{background:#1a1a2e;border:1px solid #2a2a4e;border-radius:10px;padding:30px;margin:30px 0}
  .screenshot{width:100%;max-width:700px;border-radius:8px;margin:20px 0;display:block}
  table{border-collapse:collapse;width:100%;margin:20px 0}
  th{background:#16213e;color:#aaa;padding:10px 16px;font-size:13px;text-align:left;text-transform:uppercase}
  td{padding:12px 16px;border-bottom:1px solid #2a2a4e;color:#ddd}
  .cited{color:#e94560;font-weight:bold}
  .not-cited{color:#2ecc71}
  .plans{display:grid;grid-template-columns:repeat(auto-fit,minmax(260px,1fr));gap:24px;margin:40px 0}
  .plan{background:#1a1a2e;border:1px solid #2a2a4e;border-radius:12px;padding:30px;position:relative}
  .plan.best{border-color:#e94560;background:#1e0a12}
  .plan .badge{position:absolute;top:-12px;right:20px;background:#e94560;color:#fff;padding:4px 12px;border-radius:20px;font-size:12px}
  .plan h3{font-size:22px;color:#fff;margin-bottom:10px}
  .plan .price{font-size:40px;font-weight:bold;color:#e94560;margin:10px 0}
  .plan .price span{font-size:16px;color:#aaa}
  .plan ul{list-style:none;padding:0;margin:20px 0}
  .plan ul li{padding:6px 0;color:#ccc;border-bottom:1px solid #2a2a4e}
  .plan ul li::before{content:"✓ ";color:#2ecc71}
  .btn{display:inline-block;background:#e94560;color:#fff;padding:16px 36px;border-radius:8px;font-size:17px;font-weight:bold;text-decoration:none;margin-top:16px;cursor:pointer;border:none;width:100%;text-align:center}
  .market-data{background:#16213e;border-left:4px solid #e94560;padding:20px 30px;border-radius:4px;margin:30px 0;font-size:15px;color:#ccc}
  footer{background:#0a0a15;padding:30px 20px;text-align:center;color:#555;font-size:13px;border-top:1px solid #1a1a2e}
</style>
</head>
<body>

<div class="hero">
  <div class="container">
    <h1>À <span>{{ city }}</span>, les IA recommandent vos concurrents.<br>Pas vous.</h1>
    <p>Voici les résultats d'un test répété ({{ total_runs }} runs) + un plan clair pour corriger ça.</p>
  </div>
</div>

<section>
  <div class="container">
    <div class="proof-block">
      <h2>📊 Résultats des tests pour {{ company_name }}</h2>
      {% if has_screenshot %}<img src="{{ screenshot_url }}" alt="Capture test IA" class="screenshot">{% else %}<p style="color:#666;font-style:italic">[Capture écran à ajouter]</p>{% endif %}
      <p style="color:#aaa;margin-bottom:20px">Tests réalisés sur {{ total_runs }} runs — {{ models_str }}</p>
      <table>
        <tr><th>Requête testée</th><th>Résultat</th></tr>
        {% for row in query_rows %}<tr><td>{{ row.label }}</td><td>{% if row.cited %}<span class="cited">Cité dans les réponses IA</span>{% else %}<span class="not-cited">Non cité — concurrent(s) prioritaire(s)</span>{% endif %}</td></tr>
        {% endfor %}
      </table>
      {% if has_competitors %}<h3 style="margin-top:30px;color:#fff">Concurrents cités à votre place :</h3>
      <ul style="list-style:none;padding:0">{% for c in competitors %}<li style="padding:8px 0;border-bottom:1px solid #2a2a4e;color:#e94560">{{ c }}</li>{% endfor %}</ul>{% endif %}
    </div>
  </div>
</section>

<section style="background:#0a0a15">
  <div class="container">
    <h2 style="text-align:center">Que voulez-vous faire ?</h2>
    <div class="plans">
      <div class="plan">
        <h3>Audit Complet</h3>
        <div class="price">97€ <span>une fois</span></div>
        <ul>
          <li>Rapport PDF complet</li>
          <li>Vidéo 90s personnalisée</li>
          <li>Plan d'action détaillé</li>
          <li>Checklist 8 points</li>
          <li>Livrables téléchargeables</li>
        </ul>
        <a href="#contact" class="btn">Recevoir mon audit</a>
      </div>
      <div class="plan best">
        <div class="badge">Recommandé</div>
        <h3>Kit Visibilité IA</h3>
        <div class="price">500€ <span>+ 90€/mois × 6</span></div>
        <ul>
          <li>Audit inclus</li>
          <li>Kit contenu optimisé IA</li>
          <li>Suivi mensuel 6 mois</li>
          <li>Mise à jour stratégie</li>
          <li>Accès dashboard résultats</li>
        </ul>
        <a href="#contact" class="btn">Démarrer maintenant</a>
      </div>
      <div class="plan">
        <h3>On fait tout</h3>
        <div class="price">3 500€ <span>forfait</span></div>
        <ul>
          <li>Audit + Kit inclus</li>
          <li>Rédaction contenus</li>
          <li>Optimisation site web</li>
          <li>Citations locales (20+)</li>
          <li>Garantie résultats 6 mois</li>
        </ul>
        <a href="#contact" class="btn">Me contacter</a>
      </div>
    </div>
    <p style="text-align:center;color:#666;font-size:14px;margin-top:20px">Pas d'appel requis.</p>
  </div>
</section>

<section>
  <div class="container">
    <div class="market-data">
      <strong>Pourquoi c'est urgent :</strong> En 2025, 40% des recherches locales passent par des IA (ChatGPT, Google SGE, Perplexity).
      Les entreprises qui n'apparaissent pas dans les réponses IA perdent ces clients silencieusement.
      Les algorithmes des LLMs favorisent les entreprises avec un profil web riche, des avis nombreux et des mentions croisées.
      Agir maintenant = avantage compétitif fort avant que vos concurrents s'en rendent compte.
      Délai moyen d'apparition dans les résultats IA : 2-4 mois. Les premières actions montrent des effets en 6-8 semaines.
    </div>
  </div>
</section>

<footer>
  <p>Les réponses IA peuvent varier ; résultats basés sur tests répétés horodatés ({{ dates_str }}).</p>
  <p style="margin-top:8px">© EURKAI — Audit visibilité IA</p>
</footer>

</body>
</html>
`

// LandingPage serves the personalized token-addressed page. Rendered pages
// are cached in redis when available; the page content only changes when new
// runs land, so a short TTL is enough.
//
//	GET /couvreur?t={token}
func (h *Handlers) LandingPage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("t")
	if token == "" {
		respondError(w, http.StatusNotFound, "Page introuvable")
		return
	}

	cacheKey := "landing:" + token
	if h.redis != nil {
		if cached, err := h.redis.Get(r.Context(), cacheKey).Result(); err == nil {
			respondHTML(w, http.StatusOK, cached)
			return
		}
	}

	p, err := h.store.GetProspectByToken(r.Context(), token)
	if err != nil {
		respondError(w, http.StatusNotFound, "Page introuvable")
		return
	}

	overview, err := h.deliver.Overview(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var queryRows []map[string]interface{}
	for qi, label := range overview.QueryLabels {
		if label == "" {
			continue
		}
		queryRows = append(queryRows, map[string]interface{}{
			"label": label,
			"cited": overview.QueryMentions[qi] > 0,
		})
	}

	competitors := p.CompetitorsCited
	if len(competitors) > 2 {
		competitors = competitors[:2]
	}
	dates := overview.Dates
	if len(dates) > 3 {
		dates = dates[:3]
	}

	bindings := map[string]interface{}{
		"company_name":    p.Name,
		"city":            p.City,
		"total_runs":      overview.TotalRuns,
		"models_str":      orDash(strings.Join(overview.Models, ", ")),
		"dates_str":       orDash(strings.Join(dates, ", ")),
		"has_screenshot":  p.ScreenshotURL != "",
		"screenshot_url":  p.ScreenshotURL,
		"query_rows":      queryRows,
		"has_competitors": len(competitors) > 0,
		"competitors":     competitors,
	}

	html, err := h.engine.ParseAndRenderString(landingTemplate, bindings)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.redis != nil {
		if err := h.redis.Set(r.Context(), cacheKey, html, landingCacheTTL).Err(); err != nil {
			log.Printf("[API] landing cache write failed: %v", err)
		}
	}
	respondHTML(w, http.StatusOK, html)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
