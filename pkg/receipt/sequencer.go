// Package receipt composes tax receipt numbers from the atomic per-year
// counter. The counter draw is a single upsert-returning statement, so two
// concurrent issuers can never observe the same sequence value.
package receipt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"givehub-be/internal/entity"
	"givehub-be/internal/repository/contract"
)

type Sequencer struct {
	receipts contract.ReceiptRepository
}

func NewSequencer(receipts contract.ReceiptRepository) *Sequencer {
	return &Sequencer{receipts: receipts}
}

// NextDonationNumber draws the next sequence for the year and formats it,
// e.g. "2026-00042".
func (s *Sequencer) NextDonationNumber(ctx context.Context, taxYear int) (string, int64, error) {
	seq, err := s.receipts.NextSequence(ctx, taxYear)
	if err != nil {
		return "", 0, err
	}
	return entity.DonationReceiptNumber(taxYear, seq), seq, nil
}

// NextSequence draws a raw sequence value. Annual receipts use it so the
// (tax_year, sequence) uniqueness holds across both receipt kinds.
func (s *Sequencer) NextSequence(ctx context.Context, taxYear int) (int64, error) {
	return s.receipts.NextSequence(ctx, taxYear)
}

// DonorHash is the first 12 hex chars of sha256 over the lowercased email.
func DonorHash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])[:12]
}
