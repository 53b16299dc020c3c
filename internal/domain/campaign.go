package domain

import (
	"time"
)

// CampaignMode controls how far the pipeline is allowed to go on its own.
type CampaignMode string

const (
	ModeDryRun    CampaignMode = "DRY_RUN"
	ModeAutoTest  CampaignMode = "AUTO_TEST"
	ModeSendReady CampaignMode = "SEND_READY"
)

// CampaignStatus enumerates campaign lifecycle states.
type CampaignStatus string

const (
	CampaignActive CampaignStatus = "active"
	CampaignPaused CampaignStatus = "paused"
)

// DefaultTimezone is the fixed scheduling timezone.
const DefaultTimezone = "Europe/Rome"

// Campaign scopes prospects and test runs to one (profession, city) pair.
type Campaign struct {
	ID            string         `json:"campaign_id" db:"campaign_id"`
	Profession    string         `json:"profession" db:"profession"`
	City          string         `json:"city" db:"city"`
	Timezone      string         `json:"timezone" db:"timezone"`
	ScheduleDays  []string       `json:"schedule_days" db:"schedule_days"`
	ScheduleTimes []string       `json:"schedule_times" db:"schedule_times"`
	Mode          CampaignMode   `json:"mode" db:"mode"`
	Status        CampaignStatus `json:"status" db:"status"`
	MaxProspects  int            `json:"max_prospects" db:"max_prospects"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// IsActive reports whether the scheduler should pick this campaign up.
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignActive
}

// DefaultScheduleDays is the imposed sweep cadence.
func DefaultScheduleDays() []string {
	return []string{"wednesday", "friday", "sunday"}
}

// DefaultScheduleTimes are the local times-of-day for sweeps.
func DefaultScheduleTimes() []string {
	return []string{"09:00", "13:00", "20:30"}
}
