package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
)

func (s *Store) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns
			(campaign_id, profession, city, timezone, schedule_days, schedule_times,
			 mode, status, max_prospects, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.Profession, c.City, c.Timezone,
		marshalJSON(c.ScheduleDays), marshalJSON(c.ScheduleTimes),
		c.Mode, c.Status, c.MaxProspects, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

const campaignColumns = `campaign_id, profession, city, timezone, schedule_days, schedule_times, mode, status, max_prospects, created_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var days, times string
	err := row.Scan(&c.ID, &c.Profession, &c.City, &c.Timezone, &days, &times,
		&c.Mode, &c.Status, &c.MaxProspects, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(days, &c.ScheduleDays); err != nil {
		return nil, fmt.Errorf("decode schedule_days: %w", err)
	}
	if err := unmarshalJSON(times, &c.ScheduleTimes); err != nil {
		return nil, fmt.Errorf("decode schedule_times: %w", err)
	}
	return c, nil
}

func (s *Store) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE campaign_id = $1`, id)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (s *Store) ListCampaigns(ctx context.Context) ([]*domain.Campaign, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCampaign(ctx context.Context, c *domain.Campaign) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE campaigns
		SET profession = $2, city = $3, timezone = $4, schedule_days = $5,
		    schedule_times = $6, mode = $7, status = $8, max_prospects = $9
		WHERE campaign_id = $1
	`, c.ID, c.Profession, c.City, c.Timezone,
		marshalJSON(c.ScheduleDays), marshalJSON(c.ScheduleTimes),
		c.Mode, c.Status, c.MaxProspects)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
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
