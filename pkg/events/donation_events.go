package events

import "time"

const (
	TypeDonationCompleted     = "DONATION_COMPLETED"
	TypeDonationFailed        = "DONATION_FAILED"
	TypeDonationRefunded      = "DONATION_REFUNDED"
	TypeSubscriptionCharged   = "SUBSCRIPTION_CHARGED"
	TypeSubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	TypeReceiptIssued         = "RECEIPT_ISSUED"
)

func NewDonationCompleted(transactionId, campaignId string, netAmount float64, currency string) Event {
	return BaseEvent{
		Type: TypeDonationCompleted,
		Data: map[string]interface{}{
			"transaction_id": transactionId,
			"campaign_id":    campaignId,
			"net_amount":     netAmount,
			"currency":       currency,
		},
		OccurredAt: time.Now(),
	}
}

func NewDonationFailed(transactionId, campaignId, reason string) Event {
	return BaseEvent{
		Type: TypeDonationFailed,
		Data: map[string]interface{}{
			"transaction_id": transactionId,
			"campaign_id":    campaignId,
			"reason":         reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewDonationRefunded(transactionId, campaignId string, refundAmount float64, partial bool) Event {
	return BaseEvent{
		Type: TypeDonationRefunded,
		Data: map[string]interface{}{
			"transaction_id": transactionId,
			"campaign_id":    campaignId,
			"refund_amount":  refundAmount,
			"partial":        partial,
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionCharged(subscriptionId, transactionId string, cycle time.Time) Event {
	return BaseEvent{
		Type: TypeSubscriptionCharged,
		Data: map[string]interface{}{
			"subscription_id": subscriptionId,
			"transaction_id":  transactionId,
			"cycle_date":      cycle.Format(time.RFC3339),
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionCancelled(subscriptionId, reason string) Event {
	return BaseEvent{
		Type: TypeSubscriptionCancelled,
		Data: map[string]interface{}{
			"subscription_id": subscriptionId,
			"reason":          reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewReceiptIssued(receiptNumber, donorEmail string, taxYear int) Event {
	return BaseEvent{
		Type: TypeReceiptIssued,
		Data: map[string]interface{}{
			"receipt_number": receiptNumber,
			"donor_email":    donorEmail,
			"tax_year":       taxYear,
		},
		OccurredAt: time.Now(),
	}
}
