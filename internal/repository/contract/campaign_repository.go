package contract

import (
	"context"
	"time"

	"github.com/google/uuid"

	"givehub-be/internal/entity"
	"givehub-be/internal/repository/specification"
)

// CampaignRepository reads campaign metadata (owned by the campaign
// service) and writes only the aggregate projection columns.
type CampaignRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Campaign, error)

	// FindAllIds lists every campaign id, for the recompute pass.
	FindAllIds(ctx context.Context) ([]uuid.UUID, error)

	// ApplyDelta adds a signed delta to current_amount with an additive
	// update, never a full-row rewrite; the campaign row is the hottest
	// resource under donation bursts.
	ApplyDelta(ctx context.Context, campaignId string, delta float64, donationAt *time.Time) error

	// OverwriteAggregate replaces the aggregate columns with freshly
	// recomputed authoritative values.
	OverwriteAggregate(ctx context.Context, campaignId string, totals *CampaignTotals) error
}
