package deliverables

// Liquid sources for the generated artefacts. Layout and copy follow the
// outreach kit handed to operators; nothing here is ever sent automatically.

const auditTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<title>Audit IA — {{ company_name }}</title>
<style>
  body{font-family:Arial,sans-serif;margin:0;padding:40px;color:#222;max-width:900px;margin:auto}
  h1{color:#1a1a2e;border-bottom:3px solid #e94560;padding-bottom:10px}
  h2{color:#16213e;margin-top:40px}
  .score-box{background:#f0f4ff;border-left:5px solid #e94560;padding:20px 30px;margin:20px 0;border-radius:4px}
  .score-number{font-size:56px;font-weight:bold;color:#e94560}
  table{border-collapse:collapse;width:100%;margin:16px 0}
  th{background:#16213e;color:#fff;padding:10px 14px;text-align:left}
  td{padding:9px 14px;border-bottom:1px solid #e8e8e8}
  tr:nth-child(even){background:#f9f9fb}
  .badge-ok{background:#2ecc71;color:#fff;padding:3px 10px;border-radius:12px;font-size:12px}
  .badge-no{background:#e74c3c;color:#fff;padding:3px 10px;border-radius:12px;font-size:12px}
  .plan-action{background:#fffbea;border:1px solid #f1c40f;padding:20px 30px;border-radius:6px;margin-top:30px}
  .plan-action h2{color:#b8860b;margin-top:0}
  .checklist li{margin:8px 0}
  .checklist li::before{content:"☑ ";color:#2ecc71}
  footer{margin-top:60px;color:#888;font-size:12px;border-top:1px solid #ddd;padding-top:20px}
</style>
</head>
<body>
<h1>🤖 Audit IA — Visibilité dans les réponses des intelligences artificielles</h1>
<p><strong>Entreprise :</strong> {{ company_name }}<br>
<strong>Ville :</strong> {{ city }}<br>
<strong>Secteur :</strong> {{ profession }}<br>
<strong>Date du rapport :</strong> {{ report_date }}</p>

<div class="score-box">
  <div>Score de visibilité IA</div>
  <div class="score-number">{{ score }}/10</div>
  <div>{{ justification_short }}</div>
</div>

<h2>📊 Résultats des tests</h2>
<p>Tests réalisés : <strong>{{ total_runs }} runs</strong> sur {{ models_str }} | Dates : {{ dates_str }}</p>

<table>
  <tr><th>Requête</th><th>Cité</th></tr>
  {% for row in query_rows %}<tr><td>{{ row.label }}</td><td>{% if row.cited %}<span class="badge-ok">Cité</span>{% else %}<span class="badge-no">Non cité</span>{% endif %}</td></tr>
  {% endfor %}
</table>

<h2>🏆 Concurrents identifiés</h2>
<p>Les entreprises citées régulièrement par les IA :</p>
<ul>
  {% if has_competitors %}{% for c in competitors %}<li>{{ c }}</li>
  {% endfor %}{% else %}<li>Aucun concurrent identifié</li>{% endif %}
</ul>

<h2>📋 Synthèse</h2>
<p>{{ synthesis }}</p>

<div class="plan-action">
<h2>✅ BONUS — Plan d'action prioritaire</h2>
<p>Pour améliorer votre visibilité IA dans les 90 prochains jours :</p>
<ul class="checklist">
  <li><strong>Google Business Profile</strong> — Compléter à 100% (description, catégories, photos, horaires)</li>
  <li><strong>Avis Google</strong> — Viser 40+ avis avec réponses systématiques (les IA lisent les avis)</li>
  <li><strong>Contenu FAQ</strong> — Publier 5-10 pages répondant aux questions exactes testées ci-dessus</li>
  <li><strong>Citations locales</strong> — Inscription sur PagesJaunes, Yelp, Houzz, Habitissimo</li>
  <li><strong>Structured Data</strong> — Ajouter JSON-LD LocalBusiness + AggregateRating sur votre site</li>
  <li><strong>Mentions presse</strong> — 1 article de blog local ou interview = signal fort pour les LLMs</li>
  <li><strong>Cohérence NAP</strong> — Nom / Adresse / Téléphone identiques partout (critère algorithmes IA)</li>
  <li><strong>Site optimisé</strong> — Titre H1 incluant ville + profession (ex : « Couvreur à {{ city }} »)</li>
</ul>
<p><em>Délai estimé pour apparaître dans les réponses IA : 2-4 mois selon l'action menée.</em></p>
</div>

<footer>
Rapport généré le {{ report_date }} — Tests réalisés sur {{ models_str }}.<br>
Les réponses IA peuvent varier ; résultats basés sur tests répétés horodatés.<br>
© EURKAI — <a href="{{ base_url }}">ai-seo-audit</a>
</footer>
</body>
</html>
`

const emailBodyTemplate = `Bonjour,

J'ai testé ce que répondent plusieurs IA lorsqu'un client cherche un {{ profession }} à {{ city }}.

Sur des tests répétés, {{ competitor_1 }}{% if competitor_2 != "" %} (et parfois {{ competitor_2 }}){% endif %} est régulièrement cité. Votre entreprise n'apparaît pas.

Vidéo (90s) : {{ video_url }}
Synthèse + options : {{ landing_url }}

— {{ signature }}

---
Vous recevez ce message car votre entreprise a été auditée dans le cadre d'une étude de marché locale.
`

const videoScriptTemplate = `SCRIPT VIDÉO — {{ company_name }} / {{ city }}
Durée cible : 90 secondes

1. « Bonjour {{ company_name }}, j'ai testé ce que répondent les IA quand un client cherche un {{ profession }} à {{ city }}. »
2. « Voici la requête — je lance le test. »
3. (silence + scroll) « Comme vous voyez, {{ competitor_1 }} et {{ competitor_2 }} sont cités. »
4. (scroll) « Votre entreprise n'apparaît pas dans ces résultats. »
5. « On a répété ces tests sur plusieurs créneaux et sur plusieurs IA : le constat est stable. »
6. « Je vous ai préparé la synthèse + le plan d'action ici : {{ landing_url }} »
`
