package mapper

import (
	"encoding/json"

	"givehub-be/internal/entity"
	"givehub-be/internal/model"
)

type CampaignMapper struct{}

func NewCampaignMapper() *CampaignMapper {
	return &CampaignMapper{}
}

func (m *CampaignMapper) ToEntity(c *model.Campaign) *entity.Campaign {
	if c == nil {
		return nil
	}
	e := &entity.Campaign{
		Id:               c.Id,
		Name:             c.Name,
		Currency:         c.Currency,
		GoalAmount:       c.GoalAmount,
		MinimumDonation:  c.MinimumDonation,
		AcceptsFrom:      c.AcceptsFrom,
		AcceptsUntil:     c.AcceptsUntil,
		IsActive:         c.IsActive,
		CurrentAmount:    c.CurrentAmount,
		TotalDonors:      c.TotalDonors,
		AverageDonation:  c.AverageDonation,
		LastDonationDate: c.LastDonationDate,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	// Opaque JSON config becomes typed sub-structures here; malformed
	// config is dropped rather than propagated.
	if len(c.Milestones) > 0 {
		_ = json.Unmarshal(c.Milestones, &e.Milestones)
	}
	if len(c.SuggestedAmounts) > 0 {
		_ = json.Unmarshal(c.SuggestedAmounts, &e.SuggestedAmounts)
	}
	return e
}
