// FILE: internal/service/donation_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"givehub-be/internal/campaign"
	"givehub-be/internal/dto"
	"givehub-be/internal/entity"
	"givehub-be/internal/pkg/apperrors"
	"givehub-be/internal/pkg/logger"
	"givehub-be/internal/repository/specification"
	"givehub-be/internal/repository/unitofwork"
	"givehub-be/pkg/aggregator"
	"givehub-be/pkg/events"
	"givehub-be/pkg/gateway"
	pktNats "givehub-be/pkg/nats"
)

type IDonationService interface {
	CreateDonation(ctx context.Context, req *dto.CreateDonationRequest) (*dto.DonationResponse, error)
	GetDonation(ctx context.Context, transactionId string) (*dto.DonationResponse, error)
	CancelDonation(ctx context.Context, transactionId string, req *dto.CancelDonationRequest) error
	RefundDonation(ctx context.Context, transactionId string, req *dto.RefundDonationRequest) (*dto.DonationResponse, error)
}

type donationService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateways       *gateway.Registry
	gate           *campaign.Gate
	aggregator     *aggregator.Aggregator
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewDonationService(
	uowFactory unitofwork.RepositoryFactory,
	gateways *gateway.Registry,
	gate *campaign.Gate,
	agg *aggregator.Aggregator,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IDonationService {
	return &donationService{
		uowFactory:     uowFactory,
		gateways:       gateways,
		gate:           gate,
		aggregator:     agg,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// CreateDonation records the ledger row first, then charges. The row is
// persisted as pending before the provider is contacted so a timeout can
// never lose money: the reconciler finds the pending row later.
func (s *donationService) CreateDonation(ctx context.Context, req *dto.CreateDonationRequest) (*dto.DonationResponse, error) {
	gw, err := s.gateways.Resolve(req.GatewayId)
	if err != nil {
		return nil, apperrors.Validation("gateway_id", err.Error())
	}

	camp, err := s.gate.CheckAccepts(ctx, req.CampaignId, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	donation := &entity.Donation{
		Id:            uuid.New(),
		TransactionId: uuid.NewString(),
		CampaignId:    camp.Id,
		DonorName:     req.DonorName,
		DonorEmail:    req.DonorEmail,
		Anonymous:     req.Anonymous,
		Message:       req.Message,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        entity.DonationStatusPending,
		Type:          entity.DonationTypeOneTime,
		GatewayId:     req.GatewayId,
		TaxReceipt:    req.TaxReceipt,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DonationRepository().Create(ctx, donation); err != nil {
		return nil, err
	}

	result, err := s.charge(ctx, gw, donation, req.MethodToken)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// charge runs a gateway attempt for an already-persisted pending donation
// and applies the outcome through the ledger CAS. Shared by one-time
// donations and subscription cycles.
func (s *donationService) charge(ctx context.Context, gw gateway.Gateway, donation *entity.Donation, methodToken string) (*dto.DonationResponse, error) {
	chargeRes, chargeErr := gw.ProcessPayment(ctx, &gateway.ChargeRequest{
		TransactionId: donation.TransactionId,
		Amount:        donation.Amount,
		Currency:      donation.Currency,
		MethodToken:   methodToken,
		DonorName:     donation.DonorName,
		DonorEmail:    donation.DonorEmail,
		Description:   fmt.Sprintf("Donation to campaign %s", donation.CampaignId),
	})

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if chargeErr != nil {
		if apperrors.IsGatewayTransient(chargeErr) {
			// Ambiguous outcome: the charge may have landed on the
			// provider side. Leave the row pending for the reconciler.
			s.logger.Warn("donation", "charge outcome ambiguous, awaiting reconciliation", map[string]interface{}{
				"transaction_id": donation.TransactionId,
				"gateway_id":     donation.GatewayId,
				"error":          chargeErr.Error(),
			})
			return s.toResponse(donation, ""), nil
		}

		// Definitive decline.
		reason := chargeErr.Error()
		if _, err := uow.DonationRepository().ApplyGatewayResult(ctx, donation.TransactionId, contractFailedUpdate(reason)); err != nil {
			return nil, err
		}
		donation.Status = entity.DonationStatusFailed
		donation.FailureReason = reason
		s.publish(ctx, events.NewDonationFailed(donation.TransactionId, donation.CampaignId.String(), reason))
		return s.toResponse(donation, ""), chargeErr
	}

	upd := updateFromChargeResult(donation, chargeRes)
	if upd == nil {
		// OutcomeUnknown: fail closed, leave the row alone.
		s.logger.Warn("donation", "unknown gateway outcome, leaving row pending", map[string]interface{}{
			"transaction_id": donation.TransactionId,
			"code":           chargeRes.Code,
		})
		return s.toResponse(donation, ""), nil
	}

	applied, err := uow.DonationRepository().ApplyGatewayResult(ctx, donation.TransactionId, *upd)
	if err != nil {
		return nil, err
	}
	if applied {
		donation.Status = upd.Status
		donation.Fee = upd.Fee
		donation.NetAmount = upd.NetAmount
		donation.GatewayTxnId = upd.GatewayTxnId
		donation.FailureReason = upd.FailureReason
		donation.CompletedAt = upd.CompletedAt

		if upd.Status == entity.DonationStatusCompleted {
			if err := s.aggregator.ApplyDelta(ctx, donation.CampaignId, upd.NetAmount, upd.CompletedAt); err != nil {
				s.logger.Error("donation", "campaign increment failed, recompute will heal", map[string]interface{}{
					"transaction_id": donation.TransactionId,
					"error":          err.Error(),
				})
			}
			s.publish(ctx, events.NewDonationCompleted(donation.TransactionId, donation.CampaignId.String(), upd.NetAmount, donation.Currency))
		}
		if upd.Status == entity.DonationStatusFailed {
			s.publish(ctx, events.NewDonationFailed(donation.TransactionId, donation.CampaignId.String(), upd.FailureReason))
		}
	}

	return s.toResponse(donation, chargeRes.ApprovalURL), nil
}

func (s *donationService) GetDonation(ctx context.Context, transactionId string) (*dto.DonationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByTransactionId{TransactionId: transactionId})
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, apperrors.NotFound("donation", transactionId)
	}
	return s.toResponse(donation, ""), nil
}

func (s *donationService) CancelDonation(ctx context.Context, transactionId string, req *dto.CancelDonationRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByTransactionId{TransactionId: transactionId})
	if err != nil {
		return err
	}
	if donation == nil {
		return apperrors.NotFound("donation", transactionId)
	}

	applied, err := uow.DonationRepository().CancelIfAllowed(ctx, transactionId, req.Reason)
	if err != nil {
		return err
	}
	if !applied {
		return apperrors.Conflict("donation %s cannot be cancelled from status %s", transactionId, donation.Status)
	}
	return nil
}

// RefundDonation validates everything it can before touching the provider:
// a doomed request must fail without a gateway call.
func (s *donationService) RefundDonation(ctx context.Context, transactionId string, req *dto.RefundDonationRequest) (*dto.DonationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByTransactionId{TransactionId: transactionId})
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, apperrors.NotFound("donation", transactionId)
	}

	if donation.Status != entity.DonationStatusCompleted && donation.Status != entity.DonationStatusPartialRefund {
		return nil, apperrors.Conflict("donation %s is %s, only completed donations can be refunded", transactionId, donation.Status)
	}
	if req.Amount > donation.RefundableAmount() {
		return nil, apperrors.Conflict("refund %.2f exceeds refundable %.2f", req.Amount, donation.RefundableAmount())
	}
	if donation.GatewayTxnId == nil {
		return nil, apperrors.Conflict("donation %s has no gateway transaction to refund", transactionId)
	}

	gw, err := s.gateways.Resolve(donation.GatewayId)
	if err != nil {
		return nil, err
	}

	refundRes, err := gw.ProcessRefund(ctx, *donation.GatewayTxnId, req.Amount)
	if err != nil {
		return nil, err
	}
	if !refundRes.Succeeded {
		return nil, &apperrors.GatewayError{GatewayId: donation.GatewayId, Code: "refund_rejected", Reason: "provider rejected the refund"}
	}

	// The repository derives the resulting status from the post-update
	// amounts, so a refund that lands between our read and this write
	// still leaves the row labelled correctly.
	applied, newStatus, err := uow.DonationRepository().ApplyRefund(ctx, transactionId, req.Amount)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent refund won the race after our pre-check.
		return nil, apperrors.Conflict("refund conflicts with a concurrent update on %s", transactionId)
	}

	donation.RefundedAmount += req.Amount
	donation.Status = newStatus
	partial := newStatus == entity.DonationStatusPartialRefund

	if err := s.aggregator.ApplyDelta(ctx, donation.CampaignId, -req.Amount, nil); err != nil {
		s.logger.Error("donation", "campaign decrement failed, recompute will heal", map[string]interface{}{
			"transaction_id": transactionId,
			"error":          err.Error(),
		})
	}
	s.publish(ctx, events.NewDonationRefunded(transactionId, donation.CampaignId.String(), req.Amount, partial))

	s.logger.Info("donation", "refund applied", map[string]interface{}{
		"transaction_id": transactionId,
		"amount":         req.Amount,
		"new_status":     newStatus,
		"reason":         req.Reason,
	})
	return s.toResponse(donation, ""), nil
}

func (s *donationService) publish(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("donation", "failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *donationService) toResponse(d *entity.Donation, approvalURL string) *dto.DonationResponse {
	return &dto.DonationResponse{
		TransactionId:  d.TransactionId,
		CampaignId:     d.CampaignId,
		DonorName:      d.DonorName,
		Amount:         d.Amount,
		Currency:       d.Currency,
		Fee:            d.Fee,
		NetAmount:      d.NetAmount,
		RefundedAmount: d.RefundedAmount,
		Status:         string(d.Status),
		GatewayId:      d.GatewayId,
		ApprovalURL:    approvalURL,
		FailureReason:  d.FailureReason,
		CompletedAt:    d.CompletedAt,
		CreatedAt:      d.CreatedAt,
	}
}
