package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
)

const prospectColumns = `prospect_id, campaign_id, name, city, profession, website, phone, reviews_count, google_ads_active, competitors_cited, ia_visibility_score, eligibility_flag, landing_token, video_url, screenshot_url, status, score_justification, created_at, updated_at`

func (s *Store) CreateProspect(ctx context.Context, p *domain.Prospect) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prospects
			(prospect_id, campaign_id, name, city, profession, website, phone,
			 reviews_count, google_ads_active, competitors_cited, ia_visibility_score,
			 eligibility_flag, landing_token, video_url, screenshot_url, status,
			 score_justification, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, p.ID, p.CampaignID, p.Name, p.City, p.Profession, p.Website, p.Phone,
		p.ReviewsCount, p.GoogleAdsActive, marshalJSON(p.CompetitorsCited),
		p.IAVisibilityScore, p.EligibilityFlag, p.LandingToken, p.VideoURL,
		p.ScreenshotURL, p.Status, p.ScoreJustification, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create prospect: %w", err)
	}
	return nil
}

func scanProspect(row interface{ Scan(...interface{}) error }) (*domain.Prospect, error) {
	p := &domain.Prospect{}
	var competitors string
	err := row.Scan(&p.ID, &p.CampaignID, &p.Name, &p.City, &p.Profession,
		&p.Website, &p.Phone, &p.ReviewsCount, &p.GoogleAdsActive, &competitors,
		&p.IAVisibilityScore, &p.EligibilityFlag, &p.LandingToken, &p.VideoURL,
		&p.ScreenshotURL, &p.Status, &p.ScoreJustification, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(competitors, &p.CompetitorsCited); err != nil {
		return nil, fmt.Errorf("decode competitors_cited: %w", err)
	}
	return p, nil
}

func (s *Store) GetProspect(ctx context.Context, id string) (*domain.Prospect, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+prospectColumns+` FROM prospects WHERE prospect_id = $1`, id)
	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prospect: %w", err)
	}
	return p, nil
}

func (s *Store) GetProspectByToken(ctx context.Context, token string) (*domain.Prospect, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+prospectColumns+` FROM prospects WHERE landing_token = $1`, token)
	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prospect by token: %w", err)
	}
	return p, nil
}

func (s *Store) ListProspects(ctx context.Context, campaignID string, status domain.ProspectStatus) ([]*domain.Prospect, error) {
	q := `SELECT ` + prospectColumns + ` FROM prospects WHERE campaign_id = $1`
	args := []interface{}{campaignID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY ia_visibility_score DESC NULLS LAST, prospect_id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", err)
	}
	defer rows.Close()

	var out []*domain.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prospect: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdateProspect(ctx context.Context, p *domain.Prospect) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE prospects
		SET name = $2, city = $3, profession = $4, website = $5, phone = $6,
		    reviews_count = $7, google_ads_active = $8, competitors_cited = $9,
		    ia_visibility_score = $10, eligibility_flag = $11, landing_token = $12,
		    video_url = $13, screenshot_url = $14, status = $15,
		    score_justification = $16, updated_at = NOW()
		WHERE prospect_id = $1
	`, p.ID, p.Name, p.City, p.Profession, p.Website, p.Phone,
		p.ReviewsCount, p.GoogleAdsActive, marshalJSON(p.CompetitorsCited),
		p.IAVisibilityScore, p.EligibilityFlag, p.LandingToken,
		p.VideoURL, p.ScreenshotURL, p.Status, p.ScoreJustification)
	if err != nil {
		return fmt.Errorf("update prospect: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) CountProspects(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM prospects WHERE campaign_id = $1`, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count prospects: %w", err)
	}
	return n, nil
}
