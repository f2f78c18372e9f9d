// FILE: internal/service/gateway_result.go
package service

import (
	"time"

	"givehub-be/internal/entity"
	"givehub-be/internal/repository/contract"
	"givehub-be/pkg/gateway"
)

// updateFromChargeResult translates a synchronous charge result into the
// ledger CAS update. Returns nil for OutcomeUnknown: the caller must not
// change ledger state on an outcome it does not understand.
func updateFromChargeResult(d *entity.Donation, res *gateway.ChargeResult) *contract.GatewayResultUpdate {
	var txnId *string
	if res.GatewayTxnId != "" {
		id := res.GatewayTxnId
		txnId = &id
	}

	switch res.Outcome {
	case gateway.OutcomeCompleted:
		now := time.Now()
		fee := res.Fee
		net := res.NetAmount
		if net == 0 {
			net = d.Amount - fee
		}
		return &contract.GatewayResultUpdate{
			Status:       entity.DonationStatusCompleted,
			Fee:          fee,
			NetAmount:    net,
			GatewayTxnId: txnId,
			CompletedAt:  &now,
		}
	case gateway.OutcomeRequiresAction:
		return &contract.GatewayResultUpdate{
			Status:       entity.DonationStatusRequiresAction,
			GatewayTxnId: txnId,
		}
	case gateway.OutcomeFailed:
		return &contract.GatewayResultUpdate{
			Status:        entity.DonationStatusFailed,
			GatewayTxnId:  txnId,
			FailureReason: res.Code,
		}
	default:
		return nil
	}
}

func contractFailedUpdate(reason string) contract.GatewayResultUpdate {
	return contract.GatewayResultUpdate{
		Status:        entity.DonationStatusFailed,
		FailureReason: reason,
	}
}
