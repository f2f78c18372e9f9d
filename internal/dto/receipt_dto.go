// FILE: internal/dto/receipt_dto.go
package dto

import "time"

type AnnualReceiptRequest struct {
	DonorEmail string `json:"donor_email" validate:"required,email"`
	TaxYear    int    `json:"tax_year" validate:"required,gte=2000,lte=2100"`
}

type ReceiptResponse struct {
	Number        string    `json:"number"`
	Kind          string    `json:"kind"`
	TaxYear       int       `json:"tax_year"`
	TransactionId *string   `json:"transaction_id,omitempty"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	IssuedAt      time.Time `json:"issued_at"`
}
