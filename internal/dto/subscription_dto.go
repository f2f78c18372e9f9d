// FILE: internal/dto/subscription_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSubscriptionRequest struct {
	CampaignId  uuid.UUID `json:"campaign_id" validate:"required"`
	DonorName   string    `json:"donor_name" validate:"required,max=255"`
	DonorEmail  string    `json:"donor_email" validate:"required,email"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Currency    string    `json:"currency" validate:"required,len=3"`
	Frequency   string    `json:"frequency" validate:"required,oneof=weekly monthly quarterly yearly"`
	GatewayId   string    `json:"gateway_id" validate:"required"`
	MethodToken string    `json:"method_token" validate:"required"`
	MaxFailures int       `json:"max_failures" validate:"gte=0,lte=10"`
	TaxReceipt  bool      `json:"tax_receipt"`
}

type UpdateSubscriptionRequest struct {
	Amount    float64 `json:"amount" validate:"omitempty,gt=0"`
	Frequency string  `json:"frequency" validate:"omitempty,oneof=weekly monthly quarterly yearly"`
}

type SubscriptionResponse struct {
	Id              uuid.UUID  `json:"id"`
	CampaignId      uuid.UUID  `json:"campaign_id"`
	DonorName       string     `json:"donor_name"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`
	Frequency       string     `json:"frequency"`
	Status          string     `json:"status"`
	NextPaymentDate time.Time  `json:"next_payment_date"`
	FailureCount    int        `json:"failure_count"`
	MaxFailures     int        `json:"max_failures"`
	CancelReason    string     `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type SubscriptionLogResponse struct {
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
