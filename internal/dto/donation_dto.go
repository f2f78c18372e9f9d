// FILE: internal/dto/donation_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDonationRequest struct {
	CampaignId  uuid.UUID `json:"campaign_id" validate:"required"`
	DonorName   string    `json:"donor_name" validate:"required,max=255"`
	DonorEmail  string    `json:"donor_email" validate:"required,email"`
	Anonymous   bool      `json:"anonymous"`
	Message     string    `json:"message" validate:"max=2000"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Currency    string    `json:"currency" validate:"required,len=3"`
	GatewayId   string    `json:"gateway_id" validate:"required"`
	MethodToken string    `json:"method_token"`
	TaxReceipt  bool      `json:"tax_receipt"`
}

type DonationResponse struct {
	TransactionId  string     `json:"transaction_id"`
	CampaignId     uuid.UUID  `json:"campaign_id"`
	DonorName      string     `json:"donor_name"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Fee            float64    `json:"fee"`
	NetAmount      float64    `json:"net_amount"`
	RefundedAmount float64    `json:"refunded_amount"`
	Status         string     `json:"status"`
	GatewayId      string     `json:"gateway_id"`
	ApprovalURL    string     `json:"approval_url,omitempty"`
	FailureReason  string     `json:"failure_reason,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type CancelDonationRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type RefundDonationRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Reason string  `json:"reason" validate:"required,max=500"`
}

type ConfirmManualDonationRequest struct {
	Reference string  `json:"reference" validate:"required,max=255"`
	Fee       float64 `json:"fee" validate:"gte=0"`
}

type CampaignSummaryResponse struct {
	CampaignId       uuid.UUID  `json:"campaign_id"`
	CurrentAmount    float64    `json:"current_amount"`
	GoalAmount       float64    `json:"goal_amount"`
	TotalDonors      int64      `json:"total_donors"`
	AverageDonation  float64    `json:"average_donation"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
}
