package model

import (
	"time"

	"github.com/google/uuid"
)

type Donation struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionId  string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	CampaignId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubscriptionId *uuid.UUID `gorm:"type:uuid;index"`
	DonorName      string     `gorm:"type:varchar(255);not null"`
	DonorEmail     string     `gorm:"type:varchar(255);not null;index"`
	Anonymous      bool       `gorm:"default:false"`
	Message        string     `gorm:"type:text"`
	Amount         float64    `gorm:"type:decimal(10,2);not null"`
	Currency       string     `gorm:"type:varchar(3);not null"`
	Fee            float64    `gorm:"type:decimal(10,2);default:0"`
	NetAmount      float64    `gorm:"type:decimal(10,2);default:0"`
	RefundedAmount float64    `gorm:"type:decimal(10,2);default:0"`
	Status         string     `gorm:"type:donation_status;not null;index"`
	Type           string     `gorm:"type:varchar(20);not null;default:'one_time'"`
	GatewayId      string     `gorm:"type:varchar(50);not null"`
	GatewayTxnId   *string    `gorm:"type:varchar(255)"`
	FailureReason  string     `gorm:"type:text"`
	TaxReceipt     bool       `gorm:"default:false"`
	CompletedAt    *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Donation) TableName() string {
	return "donations"
}
