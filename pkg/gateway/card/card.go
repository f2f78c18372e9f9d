// Package card implements the card gateway on midtrans Core API: a
// synchronous charge attempt plus asynchronous webhook confirmation, with
// an intermediate requires_action for 3DS/fraud challenge flows.
package card

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"givehub-be/internal/pkg/apperrors"
	"givehub-be/pkg/gateway"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

const GatewayId = "card"

type Config struct {
	ServerKey    string
	IsProduction bool
	// Provider fee schedule used to report fee/net on the synchronous
	// path. The settlement webhook remains authoritative.
	FeeRate  float64
	FeeFixed float64
}

type Gateway struct {
	client coreapi.Client
	cfg    Config
}

func New(cfg Config) *Gateway {
	env := midtrans.Sandbox
	if cfg.IsProduction {
		env = midtrans.Production
	}
	var client coreapi.Client
	client.New(cfg.ServerKey, env)
	return &Gateway{client: client, cfg: cfg}
}

func (g *Gateway) Id() string {
	return GatewayId
}

func (g *Gateway) fee(amount float64) float64 {
	return math.Round((amount*g.cfg.FeeRate+g.cfg.FeeFixed)*100) / 100
}

func (g *Gateway) ProcessPayment(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	chargeReq := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeCreditCard,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.TransactionId,
			GrossAmt: int64(math.Round(req.Amount)),
		},
		CreditCard: &coreapi.CreditCardDetails{
			TokenID: req.MethodToken,
		},
		CustomerDetails: &midtrans.CustomerDetails{
			FName: req.DonorName,
			Email: req.DonorEmail,
		},
	}

	// midtrans-go does not take a context; its HTTP client carries its
	// own timeout, which the caller treats as a transient (ambiguous)
	// failure.
	resp, midErr := g.client.ChargeTransaction(chargeReq)
	if midErr != nil {
		if midErr.StatusCode >= 500 || midErr.StatusCode == 0 {
			return nil, &apperrors.GatewayTransientError{GatewayId: GatewayId, Err: midErr}
		}
		return nil, &apperrors.GatewayError{
			GatewayId: GatewayId,
			Code:      strconv.Itoa(midErr.StatusCode),
			Reason:    midErr.Message,
		}
	}

	outcome := mapStatus(resp.TransactionStatus, resp.FraudStatus)
	result := &gateway.ChargeResult{
		Outcome:      outcome,
		GatewayTxnId: resp.TransactionID,
		Code:         resp.StatusCode,
	}
	if outcome == gateway.OutcomeCompleted {
		result.Fee = g.fee(req.Amount)
		result.NetAmount = req.Amount - result.Fee
	}
	return result, nil
}

func (g *Gateway) ProcessRefund(ctx context.Context, gatewayTxnId string, amount float64) (*gateway.RefundResult, error) {
	refundReq := &coreapi.RefundReq{
		Amount: int64(math.Round(amount)),
		Reason: "donation refund",
	}
	resp, midErr := g.client.RefundTransaction(gatewayTxnId, refundReq)
	if midErr != nil {
		if midErr.StatusCode >= 500 || midErr.StatusCode == 0 {
			return nil, &apperrors.GatewayTransientError{GatewayId: GatewayId, Err: midErr}
		}
		return &gateway.RefundResult{Succeeded: false}, nil
	}
	return &gateway.RefundResult{Succeeded: true, GatewayRefundId: resp.RefundKey}, nil
}

// webhookPayload is the midtrans notification body.
type webhookPayload struct {
	OrderId           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionId     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	SettlementFee     string `json:"settlement_fee"`
}

// HandleWebhook verifies the midtrans signature:
// SHA512(order_id + status_code + gross_amount + server_key).
func (g *Gateway) HandleWebhook(raw []byte, _ string) (*gateway.Event, error) {
	var p webhookPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("card webhook: malformed payload: %w", err)
	}

	input := p.OrderId + p.StatusCode + p.GrossAmount + g.cfg.ServerKey
	expected := fmt.Sprintf("%x", sha512.Sum512([]byte(input)))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(p.SignatureKey)) != 1 {
		return nil, fmt.Errorf("card webhook: signature mismatch for order %s", p.OrderId)
	}

	gross, _ := strconv.ParseFloat(p.GrossAmount, 64)
	outcome := mapStatus(p.TransactionStatus, p.FraudStatus)

	evt := &gateway.Event{
		GatewayId: GatewayId,
		// midtrans has no event id; the (provider txn, status) pair
		// identifies a logical event across redeliveries.
		ExternalEventId: p.TransactionId + ":" + p.TransactionStatus,
		TransactionId:   p.OrderId,
		EventType:       p.TransactionStatus,
		Outcome:         outcome,
		GatewayTxnId:    p.TransactionId,
		Raw:             raw,
	}
	if outcome == gateway.OutcomeCompleted {
		if fee, err := strconv.ParseFloat(p.SettlementFee, 64); err == nil && fee > 0 {
			evt.Fee = fee
		} else {
			evt.Fee = g.fee(gross)
		}
		evt.NetAmount = gross - evt.Fee
	}
	return evt, nil
}

// mapStatus folds the provider vocabulary onto canonical outcomes. Unknown
// statuses fail closed: never guess completed.
func mapStatus(txnStatus, fraudStatus string) gateway.Outcome {
	switch txnStatus {
	case "settlement":
		return gateway.OutcomeCompleted
	case "capture":
		if fraudStatus == "challenge" {
			return gateway.OutcomeRequiresAction
		}
		return gateway.OutcomeCompleted
	case "pending":
		return gateway.OutcomeRequiresAction
	case "deny", "cancel", "expire":
		return gateway.OutcomeFailed
	default:
		return gateway.OutcomeUnknown
	}
}
