// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type Frequency string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Valid reports whether f is one of the supported billing frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Advance moves t forward by one calendar period. Calendar arithmetic is
// deliberate: it never drifts the way +30*24h would across months of
// unequal length.
func (f Frequency) Advance(t time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyQuarterly:
		return t.AddDate(0, 3, 0)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

type Subscription struct {
	Id              uuid.UUID
	CampaignId      uuid.UUID
	DonorName       string
	DonorEmail      string
	Amount          float64
	Currency        string
	Frequency       Frequency
	PaymentToken    string
	GatewayId       string
	Status          SubscriptionStatus
	NextPaymentDate time.Time
	FailureCount    int
	MaxFailures     int
	TaxReceipt      bool
	LastReminderAt  *time.Time
	ClaimedAt       *time.Time
	CancelReason    string
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type SubscriptionLogAction string

const (
	SubscriptionLogCreated      SubscriptionLogAction = "created"
	SubscriptionLogCharged      SubscriptionLogAction = "charged"
	SubscriptionLogChargeFailed SubscriptionLogAction = "charge_failed"
	SubscriptionLogPaused       SubscriptionLogAction = "paused"
	SubscriptionLogResumed      SubscriptionLogAction = "resumed"
	SubscriptionLogCancelled    SubscriptionLogAction = "cancelled"
	SubscriptionLogUpdated      SubscriptionLogAction = "updated"
	SubscriptionLogReminderSent SubscriptionLogAction = "reminder_sent"
)

// SubscriptionLog is an append-only activity record used for audit and
// debugging. Rows are never updated.
type SubscriptionLog struct {
	Id             uuid.UUID
	SubscriptionId uuid.UUID
	Action         SubscriptionLogAction
	Detail         string
	CreatedAt      time.Time
}
