package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProspectStatus enumerates the prospect lifecycle states.
type ProspectStatus string

const (
	StatusScanned     ProspectStatus = "SCANNED"
	StatusScheduled   ProspectStatus = "SCHEDULED"
	StatusTesting     ProspectStatus = "TESTING"
	StatusTested      ProspectStatus = "TESTED"
	StatusScored      ProspectStatus = "SCORED"
	StatusReadyAssets ProspectStatus = "READY_ASSETS"
	StatusReadyToSend ProspectStatus = "READY_TO_SEND"
	StatusSentManual  ProspectStatus = "SENT_MANUAL"
)

// Prospect is a local business under evaluation.
type Prospect struct {
	ID                 string         `json:"prospect_id" db:"prospect_id"`
	CampaignID         string         `json:"campaign_id" db:"campaign_id"`
	Name               string         `json:"name" db:"name"`
	City               string         `json:"city" db:"city"`
	Profession         string         `json:"profession" db:"profession"`
	Website            string         `json:"website" db:"website"`
	Phone              string         `json:"phone" db:"phone"`
	ReviewsCount       *int           `json:"reviews_count" db:"reviews_count"`
	GoogleAdsActive    *bool          `json:"google_ads_active" db:"google_ads_active"`
	CompetitorsCited   []string       `json:"competitors_cited" db:"competitors_cited"`
	IAVisibilityScore  *float64       `json:"ia_visibility_score" db:"ia_visibility_score"`
	EligibilityFlag    bool           `json:"eligibility_flag" db:"eligibility_flag"`
	LandingToken       string         `json:"landing_token" db:"landing_token"`
	VideoURL           string         `json:"video_url" db:"video_url"`
	ScreenshotURL      string         `json:"screenshot_url" db:"screenshot_url"`
	Status             ProspectStatus `json:"status" db:"status"`
	ScoreJustification string         `json:"score_justification" db:"score_justification"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// HasAssets reports whether both outreach assets are set.
func (p *Prospect) HasAssets() bool {
	return p.VideoURL != "" && p.ScreenshotURL != ""
}

// Score returns the visibility score, or 0 when not yet scored.
func (p *Prospect) Score() float64 {
	if p.IAVisibilityScore == nil {
		return 0
	}
	return *p.IAVisibilityScore
}

// NewLandingToken returns a 24-char url-safe token for the public landing URL.
func NewLandingToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:24]
}
