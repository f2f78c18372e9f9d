package unitofwork

import (
	"context"

	"givehub-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DonationRepository() contract.DonationRepository
	SubscriptionRepository() contract.SubscriptionRepository
	SubscriptionLogRepository() contract.SubscriptionLogRepository
	CampaignRepository() contract.CampaignRepository
	GatewayEventRepository() contract.GatewayEventRepository
	ReceiptRepository() contract.ReceiptRepository
}
