package mapper

import (
	"givehub-be/internal/entity"
	"givehub-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:              s.Id,
		CampaignId:      s.CampaignId,
		DonorName:       s.DonorName,
		DonorEmail:      s.DonorEmail,
		Amount:          s.Amount,
		Currency:        s.Currency,
		Frequency:       entity.Frequency(s.Frequency),
		PaymentToken:    s.PaymentToken,
		GatewayId:       s.GatewayId,
		Status:          entity.SubscriptionStatus(s.Status),
		NextPaymentDate: s.NextPaymentDate,
		FailureCount:    s.FailureCount,
		MaxFailures:     s.MaxFailures,
		TaxReceipt:      s.TaxReceipt,
		LastReminderAt:  s.LastReminderAt,
		ClaimedAt:       s.ClaimedAt,
		CancelReason:    s.CancelReason,
		CancelledAt:     s.CancelledAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:              s.Id,
		CampaignId:      s.CampaignId,
		DonorName:       s.DonorName,
		DonorEmail:      s.DonorEmail,
		Amount:          s.Amount,
		Currency:        s.Currency,
		Frequency:       string(s.Frequency),
		PaymentToken:    s.PaymentToken,
		GatewayId:       s.GatewayId,
		Status:          string(s.Status),
		NextPaymentDate: s.NextPaymentDate,
		FailureCount:    s.FailureCount,
		MaxFailures:     s.MaxFailures,
		TaxReceipt:      s.TaxReceipt,
		LastReminderAt:  s.LastReminderAt,
		ClaimedAt:       s.ClaimedAt,
		CancelReason:    s.CancelReason,
		CancelledAt:     s.CancelledAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) LogToEntity(l *model.SubscriptionLog) *entity.SubscriptionLog {
	if l == nil {
		return nil
	}
	return &entity.SubscriptionLog{
		Id:             l.Id,
		SubscriptionId: l.SubscriptionId,
		Action:         entity.SubscriptionLogAction(l.Action),
		Detail:         l.Detail,
		CreatedAt:      l.CreatedAt,
	}
}

func (m *SubscriptionMapper) LogToModel(l *entity.SubscriptionLog) *model.SubscriptionLog {
	if l == nil {
		return nil
	}
	return &model.SubscriptionLog{
		Id:             l.Id,
		SubscriptionId: l.SubscriptionId,
		Action:         string(l.Action),
		Detail:         l.Detail,
		CreatedAt:      l.CreatedAt,
	}
}
