// Package deliverables renders the outreach kit for eligible prospects:
// audit report, email draft, video script and the send-queue CSV. Nothing is
// ever sent; every artefact lands on disk for a human operator.
package deliverables

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/osteele/liquid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
)

// Archiver mirrors generated artefacts to long-term storage.
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte, contentType string) error
}

// EmailData is the rendered email draft for one prospect.
type EmailData struct {
	ProspectID   string `json:"prospect_id"`
	ProspectName string `json:"prospect_name"`
	City         string `json:"city"`
	Profession   string `json:"profession"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	LandingURL   string `json:"landing_url"`
	VideoURL     string `json:"video_url"`
	Competitor1  string `json:"competitor_1"`
	Competitor2  string `json:"competitor_2"`
}

// Result summarizes one generation pass.
type Result struct {
	Generated    int      `json:"generated"`
	SendQueueCSV string   `json:"send_queue_csv"`
	ProspectIDs  []string `json:"prospect_ids"`
}

// Service renders and stores deliverables.
type Service struct {
	store     repository.Store
	engine    *liquid.Engine
	outDir    string
	baseURL   string
	signature string
	archiver  Archiver
	now       func() time.Time
}

// New creates the deliverables service writing under outDir. archiver may be
// nil to disable remote mirroring.
func New(store repository.Store, outDir, baseURL, signature string, archiver Archiver) *Service {
	if signature == "" {
		signature = "L'équipe EURKAI"
	}
	return &Service{
		store:     store,
		engine:    liquid.NewEngine(),
		outDir:    outDir,
		baseURL:   baseURL,
		signature: signature,
		archiver:  archiver,
		now:       time.Now,
	}
}

// LandingURL returns the public landing page URL for a prospect.
func (s *Service) LandingURL(p *domain.Prospect) string {
	return fmt.Sprintf("%s/couvreur?t=%s", s.baseURL, p.LandingToken)
}

var titleCaser = cases.Title(language.French)

// topCompetitors returns up to n stored competitors, title-cased for display.
func topCompetitors(p *domain.Prospect, n int) []string {
	out := make([]string, 0, n)
	for _, c := range p.CompetitorsCited {
		if len(out) == n {
			break
		}
		out = append(out, titleCaser.String(c))
	}
	return out
}

type runsSummary struct {
	totalRuns     int
	models        []string
	dates         []string
	mentionedAny  bool
	mentionCount  int
	queryLabels   [domain.QueriesPerRun]string
	queryMentions [domain.QueriesPerRun]int
}

func (s *Service) summarize(ctx context.Context, p *domain.Prospect) (*runsSummary, error) {
	runs, err := s.store.ListRuns(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	sum := &runsSummary{totalRuns: len(runs)}

	modelSet := map[string]bool{}
	dateSet := map[string]bool{}
	for _, r := range runs {
		modelSet[string(r.Model)] = true
		dateSet[r.Timestamp.Format("02/01/2006")] = true
		if r.MentionedTarget {
			sum.mentionedAny = true
			sum.mentionCount++
		}
		for qi := 0; qi < domain.QueriesPerRun && qi < len(r.MentionPerQuery); qi++ {
			if r.MentionPerQuery[qi] {
				sum.queryMentions[qi]++
			}
			if sum.queryLabels[qi] == "" && qi < len(r.Queries) {
				sum.queryLabels[qi] = r.Queries[qi]
			}
		}
	}
	for m := range modelSet {
		sum.models = append(sum.models, m)
	}
	sort.Strings(sum.models)
	for d := range dateSet {
		sum.dates = append(sum.dates, d)
	}
	sort.Strings(sum.dates)
	return sum, nil
}

// RunsOverview is the public shape of a prospect's run history, consumed by
// the landing page.
type RunsOverview struct {
	TotalRuns     int
	Models        []string
	Dates         []string
	QueryLabels   [domain.QueriesPerRun]string
	QueryMentions [domain.QueriesPerRun]int
}

// Overview summarizes a prospect's runs for external rendering.
func (s *Service) Overview(ctx context.Context, p *domain.Prospect) (*RunsOverview, error) {
	sum, err := s.summarize(ctx, p)
	if err != nil {
		return nil, err
	}
	return &RunsOverview{
		TotalRuns:     sum.totalRuns,
		Models:        sum.models,
		Dates:         sum.dates,
		QueryLabels:   sum.queryLabels,
		QueryMentions: sum.queryMentions,
	}, nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// GenerateAudit renders the audit HTML and writes it to the prospect's
// send-queue directory.
func (s *Service) GenerateAudit(ctx context.Context, p *domain.Prospect) (string, error) {
	sum, err := s.summarize(ctx, p)
	if err != nil {
		return "", err
	}
	competitors := topCompetitors(p, 5)
	score := p.Score()
	justif := strings.SplitN(p.ScoreJustification, "\n", 2)[0]

	queryRows := make([]map[string]interface{}, 0, domain.QueriesPerRun)
	for qi := 0; qi < domain.QueriesPerRun; qi++ {
		label := sum.queryLabels[qi]
		if label == "" {
			label = fmt.Sprintf("Requête %d", qi+1)
		}
		queryRows = append(queryRows, map[string]interface{}{
			"label": label,
			"cited": sum.queryMentions[qi] > 0,
		})
	}

	visibility := "moyenne"
	if score < 3 {
		visibility = "très faible"
	} else if score < 6 {
		visibility = "faible"
	}
	mention := "jamais mentionnée"
	if sum.mentionedAny {
		mention = fmt.Sprintf("mentionnée dans %d run(s)", sum.mentionCount)
	}
	synthesis := fmt.Sprintf("%s présente une visibilité IA %s (score %g/10). Sur %d tests réalisés, l'entreprise est %s. ",
		p.Name, visibility, score, sum.totalRuns, mention)
	if len(competitors) > 0 {
		top := competitors
		if len(top) > 2 {
			top = top[:2]
		}
		synthesis += fmt.Sprintf("Les concurrents %s sont régulièrement cités à sa place.", strings.Join(top, ", "))
	}

	html, err := s.engine.ParseAndRenderString(auditTemplate, liquid.Bindings{
		"company_name":        p.Name,
		"city":                p.City,
		"profession":          p.Profession,
		"report_date":         s.now().UTC().Format("02/01/2006"),
		"score":               fmt.Sprintf("%g", score),
		"justification_short": justif,
		"total_runs":          sum.totalRuns,
		"models_str":          orDash(strings.Join(sum.models, ", ")),
		"dates_str":           orDash(strings.Join(firstN(sum.dates, 3), ", ")),
		"query_rows":          queryRows,
		"has_competitors":     len(competitors) > 0,
		"competitors":         competitors,
		"synthesis":           synthesis,
		"base_url":            s.baseURL,
	})
	if err != nil {
		return "", fmt.Errorf("render audit: %w", err)
	}

	if err := s.writeArtifact(ctx, p.ID, "audit.html", []byte(html), "text/html"); err != nil {
		return "", err
	}
	return html, nil
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// GenerateEmail renders the email draft and writes email.json plus
// email_body.txt.
func (s *Service) GenerateEmail(ctx context.Context, p *domain.Prospect) (*EmailData, error) {
	competitors := topCompetitors(p, 2)
	comp1 := "vos concurrents"
	if len(competitors) > 0 {
		comp1 = competitors[0]
	}
	comp2 := ""
	if len(competitors) > 1 {
		comp2 = competitors[1]
	}
	video := p.VideoURL
	if video == "" {
		video = "[VIDÉO À AJOUTER]"
	}
	landing := s.LandingURL(p)

	subject := fmt.Sprintf("À %s, ChatGPT recommande %s. Pas vous.", p.City, comp1)
	body, err := s.engine.ParseAndRenderString(emailBodyTemplate, liquid.Bindings{
		"profession":   p.Profession,
		"city":         p.City,
		"competitor_1": comp1,
		"competitor_2": comp2,
		"video_url":    video,
		"landing_url":  landing,
		"signature":    s.signature,
	})
	if err != nil {
		return nil, fmt.Errorf("render email: %w", err)
	}

	data := &EmailData{
		ProspectID:   p.ID,
		ProspectName: p.Name,
		City:         p.City,
		Profession:   p.Profession,
		Subject:      subject,
		Body:         body,
		LandingURL:   landing,
		VideoURL:     video,
		Competitor1:  comp1,
		Competitor2:  comp2,
	}

	encoded, jsonErr := json.MarshalIndent(data, "", "  ")
	if jsonErr != nil {
		return nil, jsonErr
	}
	if err := s.writeArtifact(ctx, p.ID, "email.json", encoded, "application/json"); err != nil {
		return nil, err
	}
	bodyFile := fmt.Sprintf("SUBJECT: %s\n\n%s", subject, body)
	if err := s.writeArtifact(ctx, p.ID, "email_body.txt", []byte(bodyFile), "text/plain"); err != nil {
		return nil, err
	}
	return data, nil
}

// GenerateVideoScript renders the fixed six-line script and writes it.
func (s *Service) GenerateVideoScript(ctx context.Context, p *domain.Prospect) (string, error) {
	competitors := topCompetitors(p, 2)
	comp1 := "[concurrent principal]"
	if len(competitors) > 0 {
		comp1 = competitors[0]
	}
	comp2 := "[concurrent secondaire]"
	if len(competitors) > 1 {
		comp2 = competitors[1]
	}

	script, err := s.engine.ParseAndRenderString(videoScriptTemplate, liquid.Bindings{
		"company_name": p.Name,
		"city":         p.City,
		"profession":   p.Profession,
		"competitor_1": comp1,
		"competitor_2": comp2,
		"landing_url":  s.LandingURL(p),
	})
	if err != nil {
		return "", fmt.Errorf("render video script: %w", err)
	}
	if err := s.writeArtifact(ctx, p.ID, "video_script.txt", []byte(script), "text/plain"); err != nil {
		return "", err
	}
	return script, nil
}

var csvHeader = []string{
	"prospect_id", "name", "city", "profession", "email", "phone", "website",
	"score", "competitor_1", "competitor_2", "subject", "landing_url",
	"video_url", "status",
}

// GenerateSendQueue renders all artefacts for the eligible prospects and
// writes the timestamped send-queue CSV. Returns the CSV path.
func (s *Service) GenerateSendQueue(ctx context.Context, prospects []*domain.Prospect) (string, error) {
	csvName := fmt.Sprintf("send_queue_%s.csv", s.now().UTC().Format("20060102_1504"))
	csvPath := filepath.Join(s.outDir, csvName)

	var records [][]string
	for _, p := range prospects {
		if !p.EligibilityFlag {
			continue
		}
		email, err := s.GenerateEmail(ctx, p)
		if err != nil {
			return "", err
		}
		if _, err := s.GenerateAudit(ctx, p); err != nil {
			return "", err
		}
		if _, err := s.GenerateVideoScript(ctx, p); err != nil {
			return "", err
		}
		records = append(records, []string{
			p.ID, p.Name, p.City, p.Profession,
			"", // email address completed by hand
			p.Phone, p.Website,
			fmt.Sprintf("%g", p.Score()),
			email.Competitor1, email.Competitor2, email.Subject,
			email.LandingURL, email.VideoURL, string(p.Status),
		})
	}

	if len(records) > 0 {
		if err := os.MkdirAll(s.outDir, 0o755); err != nil {
			return "", err
		}
		f, err := os.Create(csvPath)
		if err != nil {
			return "", fmt.Errorf("create send queue: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return "", err
		}
		if err := w.WriteAll(records); err != nil {
			f.Close()
			return "", err
		}
		w.Flush()
		if err := f.Close(); err != nil {
			return "", err
		}
		if s.archiver != nil {
			data, err := os.ReadFile(csvPath)
			if err == nil {
				if err := s.archiver.Archive(ctx, csvName, data, "text/csv"); err != nil {
					log.Printf("[Deliverables] archive %s: %v", csvName, err)
				}
			}
		}
	}
	return csvPath, nil
}

// GenerateForCampaign renders the kit for all eligible READY_ASSETS prospects
// of a campaign, or the explicitly listed prospects.
func (s *Service) GenerateForCampaign(ctx context.Context, campaignID string, prospectIDs []string) (*Result, error) {
	var prospects []*domain.Prospect
	if len(prospectIDs) > 0 {
		for _, id := range prospectIDs {
			p, err := s.store.GetProspect(ctx, id)
			if err != nil {
				if err == repository.ErrNotFound {
					continue
				}
				return nil, err
			}
			prospects = append(prospects, p)
		}
	} else {
		all, err := s.store.ListProspects(ctx, campaignID, "")
		if err != nil {
			return nil, err
		}
		for _, p := range all {
			if p.Status == domain.StatusReadyAssets && p.EligibilityFlag {
				prospects = append(prospects, p)
			}
		}
	}

	csvPath, err := s.GenerateSendQueue(ctx, prospects)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(prospects))
	for _, p := range prospects {
		ids = append(ids, p.ID)
	}
	return &Result{Generated: len(prospects), SendQueueCSV: csvPath, ProspectIDs: ids}, nil
}

func (s *Service) writeArtifact(ctx context.Context, prospectID, name string, data []byte, contentType string) error {
	dir := filepath.Join(s.outDir, prospectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artefact dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if s.archiver != nil {
		key := prospectID + "/" + name
		if err := s.archiver.Archive(ctx, key, data, contentType); err != nil {
			log.Printf("[Deliverables] archive %s: %v", key, err)
		}
	}
	return nil
}
