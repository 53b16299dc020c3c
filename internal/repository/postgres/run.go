package postgres

import (
	"context"
	"fmt"

	"github.com/eurkai/prospecting/internal/domain"
)

func (s *Store) CreateRun(ctx context.Context, r *domain.TestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO test_runs
			(run_id, campaign_id, prospect_id, ts, model, queries, raw_answers,
			 extracted_entities, mentioned_target, mention_per_query,
			 competitors_entities, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.ID, r.CampaignID, r.ProspectID, r.Timestamp, r.Model,
		marshalJSON(r.Queries), marshalJSON(r.RawAnswers),
		marshalJSON(r.ExtractedEntities), r.MentionedTarget,
		marshalJSON(r.MentionPerQuery), marshalJSON(r.CompetitorsEntities), r.Notes)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (s *Store) ListRuns(ctx context.Context, prospectID string) ([]*domain.TestRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, campaign_id, prospect_id, ts, model, queries, raw_answers,
		       extracted_entities, mentioned_target, mention_per_query,
		       competitors_entities, notes
		FROM test_runs
		WHERE prospect_id = $1
		ORDER BY ts
	`, prospectID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*domain.TestRun
	for rows.Next() {
		r := &domain.TestRun{}
		var queries, answers, entities, mentions, competitors string
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.ProspectID, &r.Timestamp,
			&r.Model, &queries, &answers, &entities, &r.MentionedTarget,
			&mentions, &competitors, &r.Notes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := unmarshalJSON(queries, &r.Queries); err != nil {
			return nil, fmt.Errorf("decode queries: %w", err)
		}
		if err := unmarshalJSON(answers, &r.RawAnswers); err != nil {
			return nil, fmt.Errorf("decode raw_answers: %w", err)
		}
		if err := unmarshalJSON(entities, &r.ExtractedEntities); err != nil {
			return nil, fmt.Errorf("decode extracted_entities: %w", err)
		}
		if err := unmarshalJSON(mentions, &r.MentionPerQuery); err != nil {
			return nil, fmt.Errorf("decode mention_per_query: %w", err)
		}
		if err := unmarshalJSON(competitors, &r.CompetitorsEntities); err != nil {
			return nil, fmt.Errorf("decode competitors_entities: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
