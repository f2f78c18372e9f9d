// FILE: internal/service/reconcile_service_test.go
package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givehub-be/internal/dto"
	"givehub-be/internal/entity"
	"givehub-be/internal/pkg/apperrors"
	"givehub-be/pkg/gateway"
	"givehub-be/pkg/receipt"
)

func newReconcileEnv(t *testing.T) (*testEnv, IReconcileService) {
	t.Helper()
	env := newTestEnv(t)

	registry, err := gateway.NewRegistry(env.gw)
	require.NoError(t, err)

	sequencer := receipt.NewSequencer(&fakeReceiptRepo{store: env.store})
	receiptSvc := NewReceiptService(env.factory, sequencer, nil, nil, nopLogger{})

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	svc := NewReconcileService(pubSub, env.factory, registry, env.aggregator, receiptSvc, nil, nopLogger{})
	return env, svc
}

func seedPendingDonation(env *testEnv, txnId string, taxReceipt bool) {
	env.seedDonation(&entity.Donation{
		TransactionId: txnId,
		DonorName:     "Jane Donor",
		DonorEmail:    "jane@example.com",
		Amount:        100,
		Currency:      "USD",
		Status:        entity.DonationStatusPending,
		GatewayId:     "card",
		TaxReceipt:    taxReceipt,
	})
}

func completedEvent(txnId, eventId string) *gateway.Event {
	return &gateway.Event{
		GatewayId:       "card",
		ExternalEventId: eventId,
		TransactionId:   txnId,
		EventType:       "settlement",
		Outcome:         gateway.OutcomeCompleted,
		GatewayTxnId:    "mid-1",
		Fee:             3.20,
		NetAmount:       96.80,
	}
}

func TestApplyCompletedEvent(t *testing.T) {
	env, svc := newReconcileEnv(t)
	seedPendingDonation(env, "TXN-1", true)

	require.NoError(t, svc.Apply(context.Background(), completedEvent("TXN-1", "evt-1")))

	d := env.store.donations["TXN-1"]
	assert.Equal(t, entity.DonationStatusCompleted, d.Status)
	assert.InDelta(t, 96.80, d.NetAmount, 1e-9)
	require.NotNil(t, d.GatewayTxnId)
	assert.Equal(t, "mid-1", *d.GatewayTxnId)

	// Campaign projection incremented, dedup row recorded, receipt issued.
	assert.InDelta(t, 96.80, env.store.campaigns[env.campaignId].CurrentAmount, 1e-9)
	assert.Len(t, env.store.gatewayEvents, 1)
	require.Len(t, env.store.receipts, 1)
	assert.Equal(t, fmt.Sprintf("%d-00001", time.Now().Year()), env.store.receipts[0].Number)
}

func TestApplyDuplicateEventIsNoop(t *testing.T) {
	env, svc := newReconcileEnv(t)
	seedPendingDonation(env, "TXN-1", false)

	require.NoError(t, svc.Apply(context.Background(), completedEvent("TXN-1", "evt-1")))
	require.NoError(t, svc.Apply(context.Background(), completedEvent("TXN-1", "evt-1")))

	// Exactly one increment despite the redelivery.
	assert.Len(t, env.store.campaignDeltas, 1)
	assert.InDelta(t, 96.80, env.store.campaigns[env.campaignId].CurrentAmount, 1e-9)
}

func TestApplyEventForUnknownTransaction(t *testing.T) {
	env, svc := newReconcileEnv(t)

	require.NoError(t, svc.Apply(context.Background(), completedEvent("TXN-ghost", "evt-1")))

	// The dedup row is kept: a retry will never start matching.
	assert.Len(t, env.store.gatewayEvents, 1)
	assert.Empty(t, env.store.donations)
	assert.Empty(t, env.store.campaignDeltas)
}

func TestApplyUnknownOutcomeFailsClosed(t *testing.T) {
	env, svc := newReconcileEnv(t)
	seedPendingDonation(env, "TXN-1", false)

	evt := completedEvent("TXN-1", "evt-1")
	evt.Outcome = gateway.Outcome("chargeback")
	require.NoError(t, svc.Apply(context.Background(), evt))

	assert.Equal(t, entity.DonationStatusPending, env.store.donations["TXN-1"].Status)
	assert.Empty(t, env.store.campaignDeltas)
}

func TestApplyFailedEvent(t *testing.T) {
	env, svc := newReconcileEnv(t)
	seedPendingDonation(env, "TXN-1", true)

	evt := completedEvent("TXN-1", "evt-1")
	evt.Outcome = gateway.OutcomeFailed
	evt.EventType = "deny"
	require.NoError(t, svc.Apply(context.Background(), evt))

	d := env.store.donations["TXN-1"]
	assert.Equal(t, entity.DonationStatusFailed, d.Status)
	assert.Equal(t, "deny", d.FailureReason)
	assert.Empty(t, env.store.receipts)
}

func TestApplyEventOnSettledRowIsNoop(t *testing.T) {
	env, svc := newReconcileEnv(t)
	seedPendingDonation(env, "TXN-1", false)
	env.store.donations["TXN-1"].Status = entity.DonationStatusCompleted

	// A late failure event for an already-settled row must not regress it.
	evt := completedEvent("TXN-1", "evt-late")
	evt.Outcome = gateway.OutcomeFailed
	require.NoError(t, svc.Apply(context.Background(), evt))

	assert.Equal(t, entity.DonationStatusCompleted, env.store.donations["TXN-1"].Status)
	assert.Empty(t, env.store.campaignDeltas)
}

func TestConfirmManualValidation(t *testing.T) {
	t.Run("unknown donation", func(t *testing.T) {
		_, svc := newReconcileEnv(t)
		err := svc.ConfirmManual(context.Background(), "TXN-missing", &dto.ConfirmManualDonationRequest{Reference: "BANK-1"})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("not a manual donation", func(t *testing.T) {
		env, svc := newReconcileEnv(t)
		seedPendingDonation(env, "TXN-1", false) // card

		err := svc.ConfirmManual(context.Background(), "TXN-1", &dto.ConfirmManualDonationRequest{Reference: "BANK-1"})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("already terminal", func(t *testing.T) {
		env, svc := newReconcileEnv(t)
		env.seedDonation(&entity.Donation{
			TransactionId: "TXN-1",
			Status:        entity.DonationStatusCancelled,
			GatewayId:     "manual",
		})

		err := svc.ConfirmManual(context.Background(), "TXN-1", &dto.ConfirmManualDonationRequest{Reference: "BANK-1"})
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestConfirmManualFlow(t *testing.T) {
	env, svc := newReconcileEnv(t)
	env.seedDonation(&entity.Donation{
		TransactionId: "TXN-1",
		DonorName:     "Jane Donor",
		DonorEmail:    "jane@example.com",
		Amount:        100,
		Currency:      "USD",
		Status:        entity.DonationStatusRequiresAction,
		GatewayId:     "manual",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, svc.Consume(ctx))

	req := &dto.ConfirmManualDonationRequest{Reference: "BANK-REF-9", Fee: 0}
	require.NoError(t, svc.ConfirmManual(ctx, "TXN-1", req))

	require.Eventually(t, func() bool {
		env.store.mu.Lock()
		defer env.store.mu.Unlock()
		return env.store.donations["TXN-1"].Status == entity.DonationStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	env.store.mu.Lock()
	d := *env.store.donations["TXN-1"]
	env.store.mu.Unlock()
	require.NotNil(t, d.GatewayTxnId)
	assert.Equal(t, "BANK-REF-9", *d.GatewayTxnId)
	// Zero provider fee: the full amount reaches the campaign.
	assert.InDelta(t, 100, d.NetAmount, 1e-9)

	// Operator double-click: same dedup key, single increment.
	require.NoError(t, svc.ConfirmManual(ctx, "TXN-1", req))
	time.Sleep(100 * time.Millisecond)

	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	assert.Len(t, env.store.campaignDeltas, 1)
}

func TestIngestWebhook(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		_, svc := newReconcileEnv(t)
		err := svc.IngestWebhook(context.Background(), "crypto", []byte(`{}`), "")
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unverifiable payload has no side effects", func(t *testing.T) {
		env, svc := newReconcileEnv(t)
		env.gw.webhookErr = fmt.Errorf("signature mismatch")

		err := svc.IngestWebhook(context.Background(), "card", []byte(`{}`), "bad-sig")
		assert.Error(t, err)
		assert.Empty(t, env.store.gatewayEvents)
	})

	t.Run("verified event is applied by the worker", func(t *testing.T) {
		env, svc := newReconcileEnv(t)
		seedPendingDonation(env, "TXN-1", false)
		env.gw.webhookEvent = completedEvent("TXN-1", "evt-1")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		require.NoError(t, svc.Consume(ctx))

		require.NoError(t, svc.IngestWebhook(ctx, "card", []byte(`{"raw":true}`), "sig"))

		require.Eventually(t, func() bool {
			env.store.mu.Lock()
			defer env.store.mu.Unlock()
			return env.store.donations["TXN-1"].Status == entity.DonationStatusCompleted
		}, 2*time.Second, 10*time.Millisecond)
	})
}
