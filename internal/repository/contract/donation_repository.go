package contract

import (
	"context"
	"time"

	"givehub-be/internal/entity"
	"givehub-be/internal/repository/specification"
)

// GatewayResultUpdate carries the fields a gateway outcome writes onto a
// donation row when the compare-and-set transition applies.
type GatewayResultUpdate struct {
	Status        entity.DonationStatus
	Fee           float64
	NetAmount     float64
	GatewayTxnId  *string
	FailureReason string
	CompletedAt   *time.Time
}

// CampaignTotals is the authoritative aggregate computed from the ledger.
type CampaignTotals struct {
	CurrentAmount    float64
	TotalDonors      int64
	AverageDonation  float64
	LastDonationDate *time.Time
}

type DonationRepository interface {
	Create(ctx context.Context, donation *entity.Donation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Donation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Donation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// ApplyGatewayResult is the ledger CAS: the update lands only while the
	// row is still pending or requires_action. Applying to a terminal row
	// returns applied=false with no error, which makes webhook
	// re-application idempotent.
	ApplyGatewayResult(ctx context.Context, transactionId string, upd GatewayResultUpdate) (applied bool, err error)

	// CancelIfAllowed cancels only from pending/failed.
	CancelIfAllowed(ctx context.Context, transactionId, reason string) (applied bool, err error)

	// ApplyRefund atomically adds amount to refunded_amount, guarded so
	// the row must still be completed/partial_refund and have enough
	// refundable value left. The resulting status is derived in the same
	// statement from the post-update amounts, never from a caller's
	// earlier read.
	ApplyRefund(ctx context.Context, transactionId string, amount float64) (applied bool, newStatus entity.DonationStatus, err error)

	// TotalsForCampaign recomputes the campaign aggregate from the ledger.
	TotalsForCampaign(ctx context.Context, campaignId string) (*CampaignTotals, error)

	// AnnualTotalForDonor sums completed/partial_refund net minus refunds
	// for one donor over a tax year.
	AnnualTotalForDonor(ctx context.Context, donorEmail string, taxYear int) (total float64, count int64, err error)
}
