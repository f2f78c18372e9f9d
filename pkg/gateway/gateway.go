// Package gateway defines the payment gateway capability interface and the
// provider registry. Every adapter maps its provider vocabulary onto the
// four canonical outcomes; anything unrecognized fails closed as
// OutcomeUnknown so the ledger row stays in its current non-terminal state.
package gateway

import (
	"context"
	"fmt"
)

type Outcome string

const (
	OutcomeCompleted      Outcome = "completed"
	OutcomeRequiresAction Outcome = "requires_action"
	OutcomeFailed         Outcome = "failed"
	// OutcomeUnknown means the provider said something we do not
	// understand. Callers must not change ledger state on it.
	OutcomeUnknown Outcome = "unknown"
)

type ChargeRequest struct {
	TransactionId string
	Amount        float64
	Currency      string
	MethodToken   string
	DonorName     string
	DonorEmail    string
	Description   string
}

type ChargeResult struct {
	Outcome      Outcome
	GatewayTxnId string
	Fee          float64
	NetAmount    float64
	// ApprovalURL is set by create-order-then-approve flows (wallet).
	ApprovalURL string
	Code        string
}

type RefundResult struct {
	Succeeded       bool
	GatewayRefundId string
}

// Event is a provider callback normalized into engine vocabulary.
type Event struct {
	GatewayId       string
	ExternalEventId string
	TransactionId   string
	EventType       string
	Outcome         Outcome
	GatewayTxnId    string
	// Fee and NetAmount as reported by the provider; authoritative on
	// reconciliation.
	Fee       float64
	NetAmount float64
	Raw       []byte
}

type Gateway interface {
	Id() string
	ProcessPayment(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
	ProcessRefund(ctx context.Context, gatewayTxnId string, amount float64) (*RefundResult, error)
	// HandleWebhook verifies the raw callback and returns the normalized
	// event, or an error when the payload is unverifiable.
	HandleWebhook(raw []byte, signature string) (*Event, error)
}

// Registry is the closed provider table, resolved once at startup. Unknown
// provider ids are a configuration error, not a call-time surprise.
type Registry struct {
	gateways map[string]Gateway
}

func NewRegistry(gws ...Gateway) (*Registry, error) {
	r := &Registry{gateways: make(map[string]Gateway, len(gws))}
	for _, gw := range gws {
		if _, dup := r.gateways[gw.Id()]; dup {
			return nil, fmt.Errorf("duplicate gateway id %q", gw.Id())
		}
		r.gateways[gw.Id()] = gw
	}
	return r, nil
}

func (r *Registry) Resolve(id string) (Gateway, error) {
	gw, ok := r.gateways[id]
	if !ok {
		return nil, fmt.Errorf("unknown gateway id %q", id)
	}
	return gw, nil
}

func (r *Registry) Ids() []string {
	ids := make([]string, 0, len(r.gateways))
	for id := range r.gateways {
		ids = append(ids, id)
	}
	return ids
}
