// FILE: internal/entity/campaign_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Campaign metadata is owned by an external collaborator; this engine reads
// it to gate donation creation and owns only the aggregate columns below.
type Campaign struct {
	Id              uuid.UUID
	Name            string
	Currency        string
	GoalAmount      float64
	MinimumDonation float64
	AcceptsFrom     *time.Time
	AcceptsUntil    *time.Time
	IsActive        bool

	// Milestone goals and suggested amounts arrive as JSON configuration
	// and are validated into typed sub-structures at the boundary.
	Milestones       []Milestone
	SuggestedAmounts []float64

	// Aggregate projection, owned by the Campaign Aggregator.
	CurrentAmount    float64
	TotalDonors      int64
	AverageDonation  float64
	LastDonationDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Milestone struct {
	Amount float64 `json:"amount"`
	Label  string  `json:"label"`
}

// AcceptsDonations reports whether the campaign currently accepts money.
func (c *Campaign) AcceptsDonations(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.AcceptsFrom != nil && now.Before(*c.AcceptsFrom) {
		return false
	}
	if c.AcceptsUntil != nil && now.After(*c.AcceptsUntil) {
		return false
	}
	return true
}

// CampaignSummary is the aggregate view served to callers.
type CampaignSummary struct {
	CampaignId       uuid.UUID
	CurrentAmount    float64
	GoalAmount       float64
	TotalDonors      int64
	AverageDonation  float64
	LastDonationDate *time.Time
}
