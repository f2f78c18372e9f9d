// FILE: internal/controller/campaign_controller.go
package controller

import (
	"givehub-be/internal/campaign"
	"givehub-be/internal/dto"
	"givehub-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICampaignController interface {
	RegisterRoutes(r fiber.Router)
	Summary(ctx *fiber.Ctx) error
}

type campaignController struct {
	gate *campaign.Gate
}

func NewCampaignController(gate *campaign.Gate) ICampaignController {
	return &campaignController{gate: gate}
}

func (c *campaignController) RegisterRoutes(r fiber.Router) {
	r.Get("/campaigns/:id/summary", c.Summary)
}

func (c *campaignController) Summary(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid campaign id")
	}

	camp, err := c.gate.Get(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Campaign summary", &dto.CampaignSummaryResponse{
		CampaignId:       camp.Id,
		CurrentAmount:    camp.CurrentAmount,
		GoalAmount:       camp.GoalAmount,
		TotalDonors:      camp.TotalDonors,
		AverageDonation:  camp.AverageDonation,
		LastDonationDate: camp.LastDonationDate,
	}))
}
