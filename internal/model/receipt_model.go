package model

import (
	"time"

	"github.com/google/uuid"
)

type Receipt struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number        string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Kind          string    `gorm:"type:varchar(20);not null"`
	TaxYear       int       `gorm:"not null;uniqueIndex:ux_receipts_year_seq,priority:1"`
	Sequence      int64     `gorm:"not null;uniqueIndex:ux_receipts_year_seq,priority:2"`
	TransactionId *string   `gorm:"type:varchar(64);uniqueIndex"`
	DonorHash     string    `gorm:"type:varchar(64);index"`
	DonorEmail    string    `gorm:"type:varchar(255);not null"`
	Amount        float64   `gorm:"type:decimal(12,2);not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	IssuedAt      time.Time `gorm:"not null;autoCreateTime"`
}

func (Receipt) TableName() string {
	return "receipts"
}

// ReceiptCounter holds the last issued sequence per tax year. Incremented
// atomically with an upsert; never read-then-written.
type ReceiptCounter struct {
	TaxYear      int   `gorm:"primaryKey"`
	LastSequence int64 `gorm:"not null;default:0"`
}

func (ReceiptCounter) TableName() string {
	return "receipt_counters"
}
