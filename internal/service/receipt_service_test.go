// FILE: internal/service/receipt_service_test.go
package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givehub-be/internal/dto"
	"givehub-be/internal/entity"
	"givehub-be/internal/pkg/apperrors"
	"givehub-be/pkg/receipt"
)

func newReceiptEnv(t *testing.T) (*testEnv, *fakeMailer, IReceiptService) {
	t.Helper()
	env := newTestEnv(t)
	mail := &fakeMailer{}
	sequencer := receipt.NewSequencer(&fakeReceiptRepo{store: env.store})
	svc := NewReceiptService(env.factory, sequencer, mail, nil, nopLogger{})
	return env, mail, svc
}

func seedReceiptableDonation(env *testEnv, txnId string, completedAt time.Time, net float64) {
	env.seedDonation(&entity.Donation{
		TransactionId: txnId,
		DonorName:     "Jane Donor",
		DonorEmail:    "jane@example.com",
		Amount:        net + 3.20,
		Currency:      "USD",
		Fee:           3.20,
		NetAmount:     net,
		Status:        entity.DonationStatusCompleted,
		GatewayId:     "card",
		TaxReceipt:    true,
		CompletedAt:   &completedAt,
	})
}

func TestIssueDonationReceipt(t *testing.T) {
	completedAt := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("issues sequential numbers within a tax year", func(t *testing.T) {
		env, mail, svc := newReceiptEnv(t)
		seedReceiptableDonation(env, "TXN-1", completedAt, 96.80)
		seedReceiptableDonation(env, "TXN-2", completedAt, 46.80)

		res, err := svc.IssueDonationReceipt(context.Background(), "TXN-1")
		require.NoError(t, err)
		assert.Equal(t, "2026-00001", res.Number)
		assert.Equal(t, string(entity.ReceiptKindDonation), res.Kind)
		assert.InDelta(t, 96.80, res.Amount, 1e-9)

		res, err = svc.IssueDonationReceipt(context.Background(), "TXN-2")
		require.NoError(t, err)
		assert.Equal(t, "2026-00002", res.Number)

		assert.Equal(t, []string{"jane@example.com", "jane@example.com"}, mail.receipts)
	})

	t.Run("re-request returns the existing receipt", func(t *testing.T) {
		env, mail, svc := newReceiptEnv(t)
		seedReceiptableDonation(env, "TXN-1", completedAt, 96.80)

		first, err := svc.IssueDonationReceipt(context.Background(), "TXN-1")
		require.NoError(t, err)
		second, err := svc.IssueDonationReceipt(context.Background(), "TXN-1")
		require.NoError(t, err)

		assert.Equal(t, first.Number, second.Number)
		assert.Len(t, env.store.receipts, 1)
		// No second sequence draw, no second email.
		assert.Equal(t, int64(1), env.store.counters[2026])
		assert.Len(t, mail.receipts, 1)
	})

	t.Run("ineligible donation", func(t *testing.T) {
		env, _, svc := newReceiptEnv(t)
		env.seedDonation(&entity.Donation{
			TransactionId: "TXN-1",
			DonorName:     "Jane Donor",
			DonorEmail:    "jane@example.com",
			Status:        entity.DonationStatusPending,
			TaxReceipt:    true,
		})

		_, err := svc.IssueDonationReceipt(context.Background(), "TXN-1")
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("completed row without a completion date", func(t *testing.T) {
		env, _, svc := newReceiptEnv(t)
		seedReceiptableDonation(env, "TXN-1", completedAt, 96.80)
		env.store.donations["TXN-1"].CompletedAt = nil

		_, err := svc.IssueDonationReceipt(context.Background(), "TXN-1")
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("donor opted out", func(t *testing.T) {
		env, _, svc := newReceiptEnv(t)
		seedReceiptableDonation(env, "TXN-1", completedAt, 96.80)
		env.store.donations["TXN-1"].TaxReceipt = false

		_, err := svc.IssueDonationReceipt(context.Background(), "TXN-1")
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown donation", func(t *testing.T) {
		_, _, svc := newReceiptEnv(t)
		_, err := svc.IssueDonationReceipt(context.Background(), "TXN-missing")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestIssueAnnualReceipt(t *testing.T) {
	year2026 := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	year2025 := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	t.Run("aggregates the donor's year", func(t *testing.T) {
		env, _, svc := newReceiptEnv(t)
		seedReceiptableDonation(env, "TXN-1", year2026, 96.80)
		seedReceiptableDonation(env, "TXN-2", year2026, 46.80)
		// Different year, excluded.
		seedReceiptableDonation(env, "TXN-3", year2025, 10)
		// Refunded portion excluded.
		seedReceiptableDonation(env, "TXN-4", year2026, 50)
		env.store.donations["TXN-4"].RefundedAmount = 20
		env.store.donations["TXN-4"].Status = entity.DonationStatusPartialRefund

		res, err := svc.IssueAnnualReceipt(context.Background(), &dto.AnnualReceiptRequest{
			DonorEmail: "jane@example.com",
			TaxYear:    2026,
		})
		require.NoError(t, err)
		expected := fmt.Sprintf("2026-ANNUAL-%s", receipt.DonorHash("jane@example.com"))
		assert.Equal(t, expected, res.Number)
		assert.Equal(t, string(entity.ReceiptKindAnnual), res.Kind)
		assert.InDelta(t, 96.80+46.80+30, res.Amount, 1e-9)
	})

	t.Run("re-request returns the existing receipt without a new sequence", func(t *testing.T) {
		env, _, svc := newReceiptEnv(t)
		seedReceiptableDonation(env, "TXN-1", year2026, 96.80)

		req := &dto.AnnualReceiptRequest{DonorEmail: "jane@example.com", TaxYear: 2026}
		first, err := svc.IssueAnnualReceipt(context.Background(), req)
		require.NoError(t, err)
		second, err := svc.IssueAnnualReceipt(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, first.Number, second.Number)
		assert.Len(t, env.store.receipts, 1)
		assert.Equal(t, int64(1), env.store.counters[2026])
	})

	t.Run("no donations in the year", func(t *testing.T) {
		env, _, svc := newReceiptEnv(t)
		seedReceiptableDonation(env, "TXN-1", year2025, 96.80)

		_, err := svc.IssueAnnualReceipt(context.Background(), &dto.AnnualReceiptRequest{
			DonorEmail: "jane@example.com",
			TaxYear:    2026,
		})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("annual and donation receipts share the year counter", func(t *testing.T) {
		env, _, svc := newReceiptEnv(t)
		seedReceiptableDonation(env, "TXN-1", year2026, 96.80)

		_, err := svc.IssueDonationReceipt(context.Background(), "TXN-1")
		require.NoError(t, err)

		res, err := svc.IssueAnnualReceipt(context.Background(), &dto.AnnualReceiptRequest{
			DonorEmail: "jane@example.com",
			TaxYear:    2026,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), env.store.counters[2026])
		assert.NotEmpty(t, res.Number)
	})
}
