// Package postgres implements repository.Store against PostgreSQL.
// JSON-shaped columns (schedules, answers, entities) are stored as TEXT.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

// Store is the PostgreSQL-backed implementation of repository.Store.
type Store struct{ db *sql.DB }

// New wraps an open database handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

// Open connects to PostgreSQL and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for components that take advisory locks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
			campaign_id    TEXT PRIMARY KEY,
			profession     TEXT NOT NULL,
			city           TEXT NOT NULL,
			timezone       TEXT NOT NULL DEFAULT 'Europe/Rome',
			schedule_days  TEXT NOT NULL DEFAULT '["wednesday","friday","sunday"]',
			schedule_times TEXT NOT NULL DEFAULT '["09:00","13:00","20:30"]',
			mode           TEXT NOT NULL DEFAULT 'AUTO_TEST',
			status         TEXT NOT NULL DEFAULT 'active',
			max_prospects  INTEGER NOT NULL DEFAULT 30,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS prospects (
			prospect_id         TEXT PRIMARY KEY,
			campaign_id         TEXT NOT NULL REFERENCES campaigns(campaign_id) ON DELETE CASCADE,
			name                TEXT NOT NULL,
			city                TEXT NOT NULL,
			profession          TEXT NOT NULL,
			website             TEXT NOT NULL DEFAULT '',
			phone               TEXT NOT NULL DEFAULT '',
			reviews_count       INTEGER,
			google_ads_active   BOOLEAN,
			competitors_cited   TEXT NOT NULL DEFAULT '[]',
			ia_visibility_score DOUBLE PRECISION,
			eligibility_flag    BOOLEAN NOT NULL DEFAULT FALSE,
			landing_token       TEXT NOT NULL,
			video_url           TEXT NOT NULL DEFAULT '',
			screenshot_url      TEXT NOT NULL DEFAULT '',
			status              TEXT NOT NULL DEFAULT 'SCANNED',
			score_justification TEXT NOT NULL DEFAULT '',
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prospects_campaign ON prospects(campaign_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_prospects_token ON prospects(landing_token)`,
		`CREATE TABLE IF NOT EXISTS test_runs (
			run_id               TEXT PRIMARY KEY,
			campaign_id          TEXT NOT NULL REFERENCES campaigns(campaign_id) ON DELETE CASCADE,
			prospect_id          TEXT NOT NULL REFERENCES prospects(prospect_id) ON DELETE CASCADE,
			ts                   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			model                TEXT NOT NULL,
			queries              TEXT NOT NULL DEFAULT '[]',
			raw_answers          TEXT NOT NULL DEFAULT '[]',
			extracted_entities   TEXT NOT NULL DEFAULT '[]',
			mentioned_target     BOOLEAN NOT NULL DEFAULT FALSE,
			mention_per_query    TEXT NOT NULL DEFAULT '[]',
			competitors_entities TEXT NOT NULL DEFAULT '[]',
			notes                TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_prospect ON test_runs(prospect_id, ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func marshalJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}
