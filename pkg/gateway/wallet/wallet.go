// Package wallet implements the wallet gateway: a create-order-then-approve
// flow where the synchronous call only opens an order and every confirmation
// arrives asynchronously through the provider webhook.
package wallet

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"givehub-be/internal/pkg/apperrors"
	"givehub-be/pkg/gateway"
)

const GatewayId = "wallet"

type Config struct {
	BaseURL       string
	ClientId      string
	ClientSecret  string
	WebhookSecret string
}

type Gateway struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Gateway {
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *Gateway) Id() string {
	return GatewayId
}

type createOrderRequest struct {
	ReferenceId string  `json:"reference_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	WalletToken string  `json:"wallet_token,omitempty"`
}

type orderResponse struct {
	Id          string `json:"id"`
	Status      string `json:"status"`
	ApprovalURL string `json:"approval_url"`
}

// ProcessPayment opens a provider order. The donor still has to approve it
// in their wallet, so the synchronous outcome is always requires_action.
func (g *Gateway) ProcessPayment(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	var resp orderResponse
	if err := g.post(ctx, "/v2/orders", createOrderRequest{
		ReferenceId: req.TransactionId,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		WalletToken: req.MethodToken,
	}, &resp); err != nil {
		return nil, err
	}

	return &gateway.ChargeResult{
		Outcome:      gateway.OutcomeRequiresAction,
		GatewayTxnId: resp.Id,
		ApprovalURL:  resp.ApprovalURL,
		Code:         resp.Status,
	}, nil
}

type refundRequest struct {
	OrderId string  `json:"order_id"`
	Amount  float64 `json:"amount"`
}

type refundResponse struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

func (g *Gateway) ProcessRefund(ctx context.Context, gatewayTxnId string, amount float64) (*gateway.RefundResult, error) {
	var resp refundResponse
	if err := g.post(ctx, "/v2/refunds", refundRequest{OrderId: gatewayTxnId, Amount: amount}, &resp); err != nil {
		return nil, err
	}
	return &gateway.RefundResult{
		Succeeded:       resp.Status == "COMPLETED",
		GatewayRefundId: resp.Id,
	}, nil
}

type webhookPayload struct {
	Id        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		Id          string  `json:"id"`
		ReferenceId string  `json:"reference_id"`
		Amount      float64 `json:"amount"`
		Fee         float64 `json:"fee"`
	} `json:"resource"`
}

// HandleWebhook verifies the hex HMAC-SHA256 of the raw body computed with
// the webhook secret (delivered in the signature header).
func (g *Gateway) HandleWebhook(raw []byte, signature string) (*gateway.Event, error) {
	mac := hmac.New(sha256.New, []byte(g.cfg.WebhookSecret))
	mac.Write(raw)
	expected := hex.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, fmt.Errorf("wallet webhook: signature mismatch")
	}

	var p webhookPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("wallet webhook: malformed payload: %w", err)
	}

	evt := &gateway.Event{
		GatewayId:       GatewayId,
		ExternalEventId: p.Id,
		TransactionId:   p.Resource.ReferenceId,
		EventType:       p.EventType,
		Outcome:         mapEventType(p.EventType),
		GatewayTxnId:    p.Resource.Id,
		Raw:             raw,
	}
	if evt.Outcome == gateway.OutcomeCompleted {
		evt.Fee = p.Resource.Fee
		evt.NetAmount = p.Resource.Amount - p.Resource.Fee
	}
	return evt, nil
}

func mapEventType(eventType string) gateway.Outcome {
	switch eventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		return gateway.OutcomeCompleted
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.ORDER.CANCELLED":
		return gateway.OutcomeFailed
	case "PAYMENT.CAPTURE.PENDING", "PAYMENT.ORDER.APPROVED":
		return gateway.OutcomeRequiresAction
	default:
		return gateway.OutcomeUnknown
	}
}

func (g *Gateway) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.ClientId, g.cfg.ClientSecret)

	resp, err := g.client.Do(req)
	if err != nil {
		// Network failure or timeout: the order may or may not exist on
		// the provider side. Ambiguous, not a decline.
		return &apperrors.GatewayTransientError{GatewayId: GatewayId, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &apperrors.GatewayTransientError{
			GatewayId: GatewayId,
			Err:       fmt.Errorf("provider returned %d", resp.StatusCode),
		}
	}
	if resp.StatusCode >= 400 {
		return &apperrors.GatewayError{
			GatewayId: GatewayId,
			Code:      fmt.Sprintf("%d", resp.StatusCode),
			Reason:    "wallet provider rejected the request",
		}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
