// FILE: internal/entity/donation_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type DonationStatus string
type DonationType string

const (
	DonationStatusPending        DonationStatus = "pending"
	DonationStatusCompleted      DonationStatus = "completed"
	DonationStatusFailed         DonationStatus = "failed"
	DonationStatusRequiresAction DonationStatus = "requires_action"
	DonationStatusCancelled      DonationStatus = "cancelled"
	DonationStatusRefunded       DonationStatus = "refunded"
	DonationStatusPartialRefund  DonationStatus = "partial_refund"

	DonationTypeOneTime      DonationType = "one_time"
	DonationTypeSubscription DonationType = "subscription"
)

// donationTransitions is the closed transition table for the ledger state
// machine. A status missing from the map is terminal.
var donationTransitions = map[DonationStatus][]DonationStatus{
	DonationStatusPending:        {DonationStatusCompleted, DonationStatusFailed, DonationStatusRequiresAction, DonationStatusCancelled},
	DonationStatusRequiresAction: {DonationStatusCompleted, DonationStatusFailed},
	DonationStatusFailed:         {DonationStatusCancelled},
	DonationStatusCompleted:      {DonationStatusRefunded, DonationStatusPartialRefund},
	DonationStatusPartialRefund:  {DonationStatusRefunded, DonationStatusPartialRefund},
}

// CanTransition reports whether the ledger permits moving from -> to.
func CanTransition(from, to DonationStatus) bool {
	for _, allowed := range donationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the given status.
func (s DonationStatus) IsTerminal() bool {
	return len(donationTransitions[s]) == 0
}

type Donation struct {
	Id             uuid.UUID
	TransactionId  string
	CampaignId     uuid.UUID
	SubscriptionId *uuid.UUID
	DonorName      string
	DonorEmail     string
	Anonymous      bool
	Message        string
	Amount         float64
	Currency       string
	Fee            float64
	NetAmount      float64
	RefundedAmount float64
	Status         DonationStatus
	Type           DonationType
	GatewayId      string
	GatewayTxnId   *string
	FailureReason  string
	TaxReceipt     bool
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RefundableAmount is the remaining net value that may still be refunded.
func (d *Donation) RefundableAmount() float64 {
	return d.NetAmount - d.RefundedAmount
}

// ReceiptEligible reports whether a per-donation tax receipt may be issued.
func (d *Donation) ReceiptEligible() bool {
	return d.Status == DonationStatusCompleted && d.TaxReceipt && d.DonorName != "" && d.DonorEmail != ""
}
