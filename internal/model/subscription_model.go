package model

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CampaignId      uuid.UUID `gorm:"type:uuid;not null;index"`
	DonorName       string    `gorm:"type:varchar(255);not null"`
	DonorEmail      string    `gorm:"type:varchar(255);not null;index"`
	Amount          float64   `gorm:"type:decimal(10,2);not null"`
	Currency        string    `gorm:"type:varchar(3);not null"`
	Frequency       string    `gorm:"type:billing_frequency;not null"`
	PaymentToken    string    `gorm:"type:varchar(255);not null"`
	GatewayId       string    `gorm:"type:varchar(50);not null"`
	Status          string    `gorm:"type:subscription_status;not null;index:idx_subscriptions_due"`
	NextPaymentDate time.Time `gorm:"not null;index:idx_subscriptions_due"`
	FailureCount    int       `gorm:"default:0"`
	MaxFailures     int       `gorm:"default:3"`
	TaxReceipt      bool      `gorm:"default:false"`
	LastReminderAt  *time.Time
	ClaimedAt       *time.Time `gorm:"index"`
	CancelReason    string     `gorm:"type:text"`
	CancelledAt     *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// SubscriptionLog rows are insert-only.
type SubscriptionLog struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Action         string    `gorm:"type:varchar(50);not null"`
	Detail         string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (SubscriptionLog) TableName() string {
	return "subscription_logs"
}
