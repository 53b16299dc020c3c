package domain

import (
	"time"
)

// AIModel identifies one of the bundled conversational AI back-ends.
type AIModel string

const (
	ModelOpenAI    AIModel = "openai"
	ModelAnthropic AIModel = "anthropic"
	ModelGemini    AIModel = "gemini"
)

// AllModels returns the bundled model ids in canonical order.
func AllModels() []AIModel {
	return []AIModel{ModelOpenAI, ModelAnthropic, ModelGemini}
}

// QueriesPerRun is the fixed number of canonical queries per sweep.
const QueriesPerRun = 5

// MaxCompetitorsPerRun caps the deduplicated competitor list on a run.
const MaxCompetitorsPerRun = 20

// Entity is a candidate company name or URL extracted from an AI answer.
type Entity struct {
	Type   string `json:"type"` // "company" or "url"
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
}

// TestRun is the immutable record of asking one model the five canonical
// queries for one prospect. Runs are append-only and never mutated.
type TestRun struct {
	ID                  string     `json:"run_id" db:"run_id"`
	CampaignID          string     `json:"campaign_id" db:"campaign_id"`
	ProspectID          string     `json:"prospect_id" db:"prospect_id"`
	Timestamp           time.Time  `json:"ts" db:"ts"`
	Model               AIModel    `json:"model" db:"model"`
	Queries             []string   `json:"queries" db:"queries"`
	RawAnswers          []string   `json:"raw_answers" db:"raw_answers"`
	ExtractedEntities   [][]Entity `json:"extracted_entities" db:"extracted_entities"`
	MentionedTarget     bool       `json:"mentioned_target" db:"mentioned_target"`
	MentionPerQuery     []bool     `json:"mention_per_query" db:"mention_per_query"`
	CompetitorsEntities []string   `json:"competitors_entities" db:"competitors_entities"`
	Notes               string     `json:"notes" db:"notes"`
}
