// FILE: internal/service/reconcile_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"givehub-be/internal/dto"
	"givehub-be/internal/entity"
	"givehub-be/internal/pkg/apperrors"
	"givehub-be/internal/pkg/logger"
	"givehub-be/internal/repository/contract"
	"givehub-be/internal/repository/specification"
	"givehub-be/internal/repository/unitofwork"
	"givehub-be/pkg/aggregator"
	"givehub-be/pkg/events"
	"givehub-be/pkg/gateway"
	pktNats "givehub-be/pkg/nats"
)

// GatewayEventsTopic is the in-process queue between the webhook endpoint
// and the reconcile worker. The endpoint verifies and acks fast; the
// worker owns all ledger writes.
const GatewayEventsTopic = "GATEWAY_EVENTS"

type IReconcileService interface {
	// IngestWebhook verifies the raw callback. Unverifiable payloads error
	// with no side effects; verified events are queued for the worker.
	IngestWebhook(ctx context.Context, provider string, raw []byte, signature string) error

	// ConfirmManual is the operator path for bank-transfer donations. It
	// synthesizes a confirmation event into the same reconciliation queue.
	ConfirmManual(ctx context.Context, transactionId string, req *dto.ConfirmManualDonationRequest) error

	// Consume starts the reconcile worker.
	Consume(ctx context.Context) error

	// Apply processes one normalized event synchronously. Exposed for the
	// worker and for tests.
	Apply(ctx context.Context, evt *gateway.Event) error
}

type reconcileService struct {
	pubSub         *gochannel.GoChannel
	uowFactory     unitofwork.RepositoryFactory
	gateways       *gateway.Registry
	aggregator     *aggregator.Aggregator
	receiptService IReceiptService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewReconcileService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	gateways *gateway.Registry,
	agg *aggregator.Aggregator,
	receiptService IReceiptService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IReconcileService {
	return &reconcileService{
		pubSub:         pubSub,
		uowFactory:     uowFactory,
		gateways:       gateways,
		aggregator:     agg,
		receiptService: receiptService,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *reconcileService) IngestWebhook(ctx context.Context, provider string, raw []byte, signature string) error {
	gw, err := s.gateways.Resolve(provider)
	if err != nil {
		return apperrors.Validation("provider", err.Error())
	}

	evt, err := gw.HandleWebhook(raw, signature)
	if err != nil {
		s.logger.Warn("reconcile", "rejected unverifiable webhook", map[string]interface{}{
			"provider": provider,
			"error":    err.Error(),
		})
		return err
	}

	return s.enqueue(evt)
}

func (s *reconcileService) ConfirmManual(ctx context.Context, transactionId string, req *dto.ConfirmManualDonationRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByTransactionId{TransactionId: transactionId})
	if err != nil {
		return err
	}
	if donation == nil {
		return apperrors.NotFound("donation", transactionId)
	}
	if donation.GatewayId != "manual" {
		return apperrors.Conflict("donation %s did not use the manual gateway", transactionId)
	}
	if donation.Status.IsTerminal() {
		return apperrors.Conflict("donation %s is already %s", transactionId, donation.Status)
	}

	// One confirmation per transaction: the dedup key makes an operator
	// double-click a no-op instead of a double-count.
	return s.enqueue(&gateway.Event{
		GatewayId:       donation.GatewayId,
		ExternalEventId: "confirm:" + transactionId,
		TransactionId:   transactionId,
		EventType:       "manual.confirmed",
		Outcome:         gateway.OutcomeCompleted,
		GatewayTxnId:    req.Reference,
		Fee:             req.Fee,
	})
}

func (s *reconcileService) enqueue(evt *gateway.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return s.pubSub.Publish(GatewayEventsTopic, message.NewMessage(watermill.NewUUID(), payload))
}

func (s *reconcileService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, GatewayEventsTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *reconcileService) processMessage(ctx context.Context, msg *message.Message) {
	var evt gateway.Event
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		s.logger.Error("reconcile", "malformed queue message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack: retrying cannot fix a parse error.
		return
	}

	if err := s.Apply(ctx, &evt); err != nil {
		s.logger.Error("reconcile", "apply failed, will retry", map[string]interface{}{
			"gateway_id":        evt.GatewayId,
			"external_event_id": evt.ExternalEventId,
			"error":             err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

// Apply is the reconciliation write path: dedup insert, ledger CAS and
// campaign increment in one transaction, then post-commit side effects.
func (s *reconcileService) Apply(ctx context.Context, evt *gateway.Event) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	inserted, err := uow.GatewayEventRepository().InsertIfAbsent(ctx, &entity.GatewayEvent{
		Id:              uuid.New(),
		GatewayId:       evt.GatewayId,
		ExternalEventId: evt.ExternalEventId,
		TransactionId:   evt.TransactionId,
		EventType:       evt.EventType,
		RawPayload:      evt.Raw,
		ReceivedAt:      time.Now(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		// Redelivery. Already applied, success no-op.
		s.logger.Debug("reconcile", "duplicate event skipped", map[string]interface{}{
			"gateway_id":        evt.GatewayId,
			"external_event_id": evt.ExternalEventId,
		})
		return nil
	}

	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByTransactionId{TransactionId: evt.TransactionId})
	if err != nil {
		return err
	}
	if donation == nil {
		// Keep the dedup row: a retry of an unknown transaction will
		// never start matching.
		s.logger.Warn("reconcile", "event for unknown transaction", map[string]interface{}{
			"gateway_id":     evt.GatewayId,
			"transaction_id": evt.TransactionId,
		})
		return uow.Commit()
	}

	upd := updateFromWebhookEvent(donation, evt)
	applied := false
	if upd != nil {
		applied, err = uow.DonationRepository().ApplyGatewayResult(ctx, evt.TransactionId, *upd)
		if err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if !applied || upd == nil {
		return nil
	}

	// Post-commit side effects are best-effort: the ledger is settled and
	// the recompute pass heals a missed increment.
	if upd.Status == entity.DonationStatusCompleted {
		if err := s.aggregator.ApplyDelta(ctx, donation.CampaignId, upd.NetAmount, upd.CompletedAt); err != nil {
			s.logger.Error("reconcile", "campaign increment failed, recompute will heal", map[string]interface{}{
				"transaction_id": evt.TransactionId,
				"error":          err.Error(),
			})
		}
		s.publish(ctx, events.NewDonationCompleted(evt.TransactionId, donation.CampaignId.String(), upd.NetAmount, donation.Currency))

		if s.receiptService != nil && donation.TaxReceipt {
			if _, err := s.receiptService.IssueDonationReceipt(ctx, evt.TransactionId); err != nil {
				s.logger.Warn("reconcile", "auto receipt issue failed", map[string]interface{}{
					"transaction_id": evt.TransactionId,
					"error":          err.Error(),
				})
			}
		}
	}
	if upd.Status == entity.DonationStatusFailed {
		s.publish(ctx, events.NewDonationFailed(evt.TransactionId, donation.CampaignId.String(), upd.FailureReason))
	}

	return nil
}

// updateFromWebhookEvent maps a verified event onto the ledger CAS update.
// Provider-reported fee and net are authoritative here, unlike the
// synchronous charge path where they are estimates.
func updateFromWebhookEvent(d *entity.Donation, evt *gateway.Event) *contract.GatewayResultUpdate {
	var txnId *string
	if evt.GatewayTxnId != "" {
		id := evt.GatewayTxnId
		txnId = &id
	}

	switch evt.Outcome {
	case gateway.OutcomeCompleted:
		now := time.Now()
		fee := evt.Fee
		net := evt.NetAmount
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
	case gateway.OutcomeFailed:
		return &contract.GatewayResultUpdate{
			Status:        entity.DonationStatusFailed,
			GatewayTxnId:  txnId,
			FailureReason: evt.EventType,
		}
	case gateway.OutcomeRequiresAction:
		return &contract.GatewayResultUpdate{
			Status:       entity.DonationStatusRequiresAction,
			GatewayTxnId: txnId,
		}
	default:
		// Fail closed on anything unrecognized.
		return nil
	}
}

func (s *reconcileService) publish(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("reconcile", "failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}
