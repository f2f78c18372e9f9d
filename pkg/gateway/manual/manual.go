// Package manual implements the bank-transfer gateway. There is no provider
// API: charges sit in a pending-like state until an operator reconciles the
// incoming transfer, and there is no webhook.
package manual

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"givehub-be/pkg/gateway"
)

const GatewayId = "manual"

type Gateway struct{}

func New() *Gateway {
	return &Gateway{}
}

func (g *Gateway) Id() string {
	return GatewayId
}

// ProcessPayment records intent only; the money moves out of band.
func (g *Gateway) ProcessPayment(_ context.Context, _ *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	return &gateway.ChargeResult{
		Outcome:      gateway.OutcomeRequiresAction,
		GatewayTxnId: "manual-" + uuid.NewString(),
	}, nil
}

// ProcessRefund succeeds immediately: the operator wires the money back
// out of band and this adapter only acknowledges the instruction.
func (g *Gateway) ProcessRefund(_ context.Context, gatewayTxnId string, _ float64) (*gateway.RefundResult, error) {
	return &gateway.RefundResult{
		Succeeded:       true,
		GatewayRefundId: gatewayTxnId + "-refund",
	}, nil
}

func (g *Gateway) HandleWebhook(_ []byte, _ string) (*gateway.Event, error) {
	return nil, fmt.Errorf("manual gateway has no webhook")
}
