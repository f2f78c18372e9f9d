package mapper

import (
	"givehub-be/internal/entity"
	"givehub-be/internal/model"
)

type DonationMapper struct{}

func NewDonationMapper() *DonationMapper {
	return &DonationMapper{}
}

func (m *DonationMapper) ToEntity(d *model.Donation) *entity.Donation {
	if d == nil {
		return nil
	}
	return &entity.Donation{
		Id:             d.Id,
		TransactionId:  d.TransactionId,
		CampaignId:     d.CampaignId,
		SubscriptionId: d.SubscriptionId,
		DonorName:      d.DonorName,
		DonorEmail:     d.DonorEmail,
		Anonymous:      d.Anonymous,
		Message:        d.Message,
		Amount:         d.Amount,
		Currency:       d.Currency,
		Fee:            d.Fee,
		NetAmount:      d.NetAmount,
		RefundedAmount: d.RefundedAmount,
		Status:         entity.DonationStatus(d.Status),
		Type:           entity.DonationType(d.Type),
		GatewayId:      d.GatewayId,
		GatewayTxnId:   d.GatewayTxnId,
		FailureReason:  d.FailureReason,
		TaxReceipt:     d.TaxReceipt,
		CompletedAt:    d.CompletedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (m *DonationMapper) ToModel(d *entity.Donation) *model.Donation {
	if d == nil {
		return nil
	}
	return &model.Donation{
		Id:             d.Id,
		TransactionId:  d.TransactionId,
		CampaignId:     d.CampaignId,
		SubscriptionId: d.SubscriptionId,
		DonorName:      d.DonorName,
		DonorEmail:     d.DonorEmail,
		Anonymous:      d.Anonymous,
		Message:        d.Message,
		Amount:         d.Amount,
		Currency:       d.Currency,
		Fee:            d.Fee,
		NetAmount:      d.NetAmount,
		RefundedAmount: d.RefundedAmount,
		Status:         string(d.Status),
		Type:           string(d.Type),
		GatewayId:      d.GatewayId,
		GatewayTxnId:   d.GatewayTxnId,
		FailureReason:  d.FailureReason,
		TaxReceipt:     d.TaxReceipt,
		CompletedAt:    d.CompletedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
