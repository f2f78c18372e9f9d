// FILE: pkg/gateway/wallet/wallet_test.go
package wallet

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givehub-be/internal/pkg/apperrors"
	"givehub-be/pkg/gateway"
)

func newTestGateway(handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	srv := httptest.NewServer(handler)
	g := New(Config{
		BaseURL:       srv.URL,
		ClientId:      "client-id",
		ClientSecret:  "client-secret",
		WebhookSecret: "whsec-test",
	})
	return g, srv
}

func TestProcessPayment(t *testing.T) {
	t.Run("opens an order and reports requires_action", func(t *testing.T) {
		g, srv := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/orders", r.URL.Path)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"order-123","status":"CREATED","approval_url":"https://wallet.example.com/approve/order-123"}`))
		})
		defer srv.Close()

		res, err := g.ProcessPayment(context.Background(), &gateway.ChargeRequest{
			TransactionId: "TXN-001",
			Amount:        25,
			Currency:      "USD",
		})
		require.NoError(t, err)
		assert.Equal(t, gateway.OutcomeRequiresAction, res.Outcome)
		assert.Equal(t, "order-123", res.GatewayTxnId)
		assert.Equal(t, "https://wallet.example.com/approve/order-123", res.ApprovalURL)
	})

	t.Run("provider 5xx is transient", func(t *testing.T) {
		g, srv := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		defer srv.Close()

		_, err := g.ProcessPayment(context.Background(), &gateway.ChargeRequest{TransactionId: "TXN-002", Amount: 25})
		require.Error(t, err)
		assert.True(t, apperrors.IsGatewayTransient(err))
	})

	t.Run("provider 4xx is a decline", func(t *testing.T) {
		g, srv := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		})
		defer srv.Close()

		_, err := g.ProcessPayment(context.Background(), &gateway.ChargeRequest{TransactionId: "TXN-003", Amount: 25})
		require.Error(t, err)
		assert.True(t, apperrors.IsGateway(err))
		assert.False(t, apperrors.IsGatewayTransient(err))
	})

	t.Run("connection failure is transient", func(t *testing.T) {
		g, srv := newTestGateway(func(w http.ResponseWriter, r *http.Request) {})
		srv.Close() // refuse connections

		_, err := g.ProcessPayment(context.Background(), &gateway.ChargeRequest{TransactionId: "TXN-004", Amount: 25})
		require.Error(t, err)
		assert.True(t, apperrors.IsGatewayTransient(err))
	})
}

func TestProcessRefund(t *testing.T) {
	t.Run("completed refund", func(t *testing.T) {
		g, srv := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/refunds", r.URL.Path)
			w.Write([]byte(`{"id":"refund-9","status":"COMPLETED"}`))
		})
		defer srv.Close()

		res, err := g.ProcessRefund(context.Background(), "order-123", 10)
		require.NoError(t, err)
		assert.True(t, res.Succeeded)
		assert.Equal(t, "refund-9", res.GatewayRefundId)
	})

	t.Run("pending refund is not succeeded", func(t *testing.T) {
		g, srv := newTestGateway(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"refund-10","status":"PENDING"}`))
		})
		defer srv.Close()

		res, err := g.ProcessRefund(context.Background(), "order-123", 10)
		require.NoError(t, err)
		assert.False(t, res.Succeeded)
	})
}

func sign(secret string, raw []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHandleWebhook(t *testing.T) {
	g := New(Config{WebhookSecret: "whsec-test"})

	raw := []byte(`{"id":"WH-1","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"order-123","reference_id":"TXN-001","amount":25.0,"fee":1.05}}`)

	t.Run("valid completed event", func(t *testing.T) {
		evt, err := g.HandleWebhook(raw, sign("whsec-test", raw))
		require.NoError(t, err)
		assert.Equal(t, GatewayId, evt.GatewayId)
		assert.Equal(t, "WH-1", evt.ExternalEventId)
		assert.Equal(t, "TXN-001", evt.TransactionId)
		assert.Equal(t, "order-123", evt.GatewayTxnId)
		assert.Equal(t, gateway.OutcomeCompleted, evt.Outcome)
		assert.InDelta(t, 1.05, evt.Fee, 1e-9)
		assert.InDelta(t, 23.95, evt.NetAmount, 1e-9)
	})

	t.Run("bad signature", func(t *testing.T) {
		evt, err := g.HandleWebhook(raw, sign("another-secret", raw))
		assert.Error(t, err)
		assert.Nil(t, evt)
	})

	t.Run("denied event carries no amounts", func(t *testing.T) {
		denied := []byte(`{"id":"WH-2","event_type":"PAYMENT.CAPTURE.DENIED","resource":{"id":"order-124","reference_id":"TXN-002","amount":25.0,"fee":1.05}}`)
		evt, err := g.HandleWebhook(denied, sign("whsec-test", denied))
		require.NoError(t, err)
		assert.Equal(t, gateway.OutcomeFailed, evt.Outcome)
		assert.Zero(t, evt.Fee)
		assert.Zero(t, evt.NetAmount)
	})
}

func TestMapEventType(t *testing.T) {
	testCases := []struct {
		eventType string
		want      gateway.Outcome
	}{
		{"PAYMENT.CAPTURE.COMPLETED", gateway.OutcomeCompleted},
		{"PAYMENT.CAPTURE.DENIED", gateway.OutcomeFailed},
		{"PAYMENT.ORDER.CANCELLED", gateway.OutcomeFailed},
		{"PAYMENT.CAPTURE.PENDING", gateway.OutcomeRequiresAction},
		{"PAYMENT.ORDER.APPROVED", gateway.OutcomeRequiresAction},
		{"PAYMENT.DISPUTE.CREATED", gateway.OutcomeUnknown},
		{"", gateway.OutcomeUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.eventType, func(t *testing.T) {
			assert.Equal(t, tc.want, mapEventType(tc.eventType))
		})
	}
}
