// FILE: internal/entity/receipt_entity.go
package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ReceiptKind string

const (
	ReceiptKindDonation ReceiptKind = "donation"
	ReceiptKindAnnual   ReceiptKind = "annual"
)

// Receipt is immutable once issued.
type Receipt struct {
	Id            uuid.UUID
	Number        string
	Kind          ReceiptKind
	TaxYear       int
	Sequence      int64
	TransactionId *string
	DonorHash     string
	DonorEmail    string
	Amount        float64
	Currency      string
	IssuedAt      time.Time
}

// DonationReceiptNumber formats a per-donation receipt number,
// e.g. "2024-00042".
func DonationReceiptNumber(taxYear int, sequence int64) string {
	return fmt.Sprintf("%d-%05d", taxYear, sequence)
}

// AnnualReceiptNumber formats an annual summary receipt number,
// e.g. "2024-ANNUAL-9f86d081884c".
func AnnualReceiptNumber(taxYear int, donorHash string) string {
	return fmt.Sprintf("%d-ANNUAL-%s", taxYear, donorHash)
}
