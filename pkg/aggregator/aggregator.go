// Package aggregator owns the campaign aggregate projection. Increments
// are additive single-statement updates applied on ledger transitions; the
// recompute pass periodically rebuilds the columns from the ledger so any
// drift between the projection and the source of truth heals itself.
package aggregator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"givehub-be/internal/campaign"
	"givehub-be/internal/pkg/logger"
	"givehub-be/internal/repository/unitofwork"
)

type Aggregator struct {
	uowFactory unitofwork.RepositoryFactory
	gate       *campaign.Gate
	logger     logger.ILogger
}

func New(uowFactory unitofwork.RepositoryFactory, gate *campaign.Gate, log logger.ILogger) *Aggregator {
	return &Aggregator{
		uowFactory: uowFactory,
		gate:       gate,
		logger:     log,
	}
}

// ApplyDelta adds a signed net amount to the campaign projection. Positive
// for completions, negative for refunds. The update is additive so
// concurrent donations to the same campaign never lose increments.
func (a *Aggregator) ApplyDelta(ctx context.Context, campaignId uuid.UUID, delta float64, donationAt *time.Time) error {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CampaignRepository().ApplyDelta(ctx, campaignId.String(), delta, donationAt); err != nil {
		return err
	}
	a.gate.Invalidate(campaignId)
	return nil
}

// Recompute rebuilds one campaign's aggregate columns from the ledger and
// overwrites the projection. Safe to run concurrently with increments: the
// overwrite is a single statement and the next recompute absorbs anything
// that landed in between.
func (a *Aggregator) Recompute(ctx context.Context, campaignId uuid.UUID) error {
	uow := a.uowFactory.NewUnitOfWork(ctx)

	totals, err := uow.DonationRepository().TotalsForCampaign(ctx, campaignId.String())
	if err != nil {
		return err
	}
	if err := uow.CampaignRepository().OverwriteAggregate(ctx, campaignId.String(), totals); err != nil {
		return err
	}

	a.gate.Invalidate(campaignId)
	a.logger.Debug("aggregator", "campaign aggregate recomputed", map[string]interface{}{
		"campaign_id":    campaignId,
		"current_amount": totals.CurrentAmount,
		"total_donors":   totals.TotalDonors,
	})
	return nil
}

// RecomputeAll walks every campaign. One failed campaign does not stop the
// pass; the error is logged and the next recompute retries it.
func (a *Aggregator) RecomputeAll(ctx context.Context) error {
	uow := a.uowFactory.NewUnitOfWork(ctx)
	ids, err := uow.CampaignRepository().FindAllIds(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := a.Recompute(ctx, id); err != nil {
			a.logger.Error("aggregator", "recompute failed", map[string]interface{}{
				"campaign_id": id,
				"error":       err.Error(),
			})
		}
	}
	return nil
}
