// FILE: internal/service/receipt_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"givehub-be/internal/dto"
	"givehub-be/internal/entity"
	"givehub-be/internal/pkg/apperrors"
	"givehub-be/internal/pkg/logger"
	"givehub-be/internal/pkg/mailer"
	"givehub-be/internal/repository/specification"
	"givehub-be/internal/repository/unitofwork"
	"givehub-be/pkg/events"
	pktNats "givehub-be/pkg/nats"
	"givehub-be/pkg/receipt"
)

type IReceiptService interface {
	// IssueDonationReceipt issues (or returns the already-issued) receipt
	// for one completed donation.
	IssueDonationReceipt(ctx context.Context, transactionId string) (*dto.ReceiptResponse, error)

	// IssueAnnualReceipt aggregates a donor's completed donations for a tax
	// year into one annual summary receipt.
	IssueAnnualReceipt(ctx context.Context, req *dto.AnnualReceiptRequest) (*dto.ReceiptResponse, error)
}

type receiptService struct {
	uowFactory     unitofwork.RepositoryFactory
	sequencer      *receipt.Sequencer
	mailer         mailer.IEmailService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewReceiptService(
	uowFactory unitofwork.RepositoryFactory,
	sequencer *receipt.Sequencer,
	mail mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IReceiptService {
	return &receiptService{
		uowFactory:     uowFactory,
		sequencer:      sequencer,
		mailer:         mail,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *receiptService) IssueDonationReceipt(ctx context.Context, transactionId string) (*dto.ReceiptResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	donation, err := uow.DonationRepository().FindOne(ctx, specification.ByTransactionId{TransactionId: transactionId})
	if err != nil {
		return nil, err
	}
	if donation == nil {
		return nil, apperrors.NotFound("donation", transactionId)
	}
	if !donation.ReceiptEligible() {
		return nil, apperrors.Conflict("donation %s is not eligible for a tax receipt", transactionId)
	}
	if donation.CompletedAt == nil {
		// A completed row written before the completion timestamp existed
		// has no tax year to file under.
		return nil, apperrors.Conflict("donation %s has no completion date", transactionId)
	}

	// Receipts are immutable and one-per-donation: a second request
	// returns the existing receipt instead of minting a new number.
	existing, err := uow.ReceiptRepository().FindOne(ctx, specification.ByTransactionId{TransactionId: transactionId})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toReceiptResponse(existing), nil
	}

	taxYear := donation.CompletedAt.Year()
	number, seq, err := s.sequencer.NextDonationNumber(ctx, taxYear)
	if err != nil {
		return nil, err
	}

	txnId := transactionId
	rec := &entity.Receipt{
		Id:            uuid.New(),
		Number:        number,
		Kind:          entity.ReceiptKindDonation,
		TaxYear:       taxYear,
		Sequence:      seq,
		TransactionId: &txnId,
		DonorHash:     receipt.DonorHash(donation.DonorEmail),
		DonorEmail:    donation.DonorEmail,
		Amount:        donation.NetAmount,
		Currency:      donation.Currency,
		IssuedAt:      time.Now(),
	}

	if err := uow.ReceiptRepository().Create(ctx, rec); err != nil {
		// Lost a race with a concurrent issuer for the same donation: the
		// unique index on transaction_id held, so return theirs.
		winner, findErr := uow.ReceiptRepository().FindOne(ctx, specification.ByTransactionId{TransactionId: transactionId})
		if findErr == nil && winner != nil {
			return toReceiptResponse(winner), nil
		}
		return nil, err
	}

	s.notify(ctx, donation.DonorEmail, donation.DonorName, rec)
	return toReceiptResponse(rec), nil
}

func (s *receiptService) IssueAnnualReceipt(ctx context.Context, req *dto.AnnualReceiptRequest) (*dto.ReceiptResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, count, err := uow.DonationRepository().AnnualTotalForDonor(ctx, req.DonorEmail, req.TaxYear)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperrors.NotFound("donations for donor in tax year", req.DonorEmail)
	}

	// The annual number is deterministic per (year, donor), so a re-request
	// finds the existing receipt by number before a sequence is drawn.
	donorHash := receipt.DonorHash(req.DonorEmail)
	number := entity.AnnualReceiptNumber(req.TaxYear, donorHash)

	existing, err := uow.ReceiptRepository().FindOne(ctx, specification.Filter("number", number))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toReceiptResponse(existing), nil
	}

	seq, err := s.sequencer.NextSequence(ctx, req.TaxYear)
	if err != nil {
		return nil, err
	}

	rec := &entity.Receipt{
		Id:         uuid.New(),
		Number:     number,
		Kind:       entity.ReceiptKindAnnual,
		TaxYear:    req.TaxYear,
		Sequence:   seq,
		DonorHash:  donorHash,
		DonorEmail: req.DonorEmail,
		Amount:     total,
		Currency:   "", // Mixed-currency donors keep per-donation currency on the line items.
		IssuedAt:   time.Now(),
	}

	if err := uow.ReceiptRepository().Create(ctx, rec); err != nil {
		winner, findErr := uow.ReceiptRepository().FindOne(ctx, specification.Filter("number", number))
		if findErr == nil && winner != nil {
			return toReceiptResponse(winner), nil
		}
		return nil, err
	}

	s.publish(ctx, events.NewReceiptIssued(rec.Number, rec.DonorEmail, rec.TaxYear))
	return toReceiptResponse(rec), nil
}

func (s *receiptService) notify(ctx context.Context, email, name string, rec *entity.Receipt) {
	if s.mailer != nil {
		if err := s.mailer.SendReceipt(email, name, rec.Number, rec.Amount, rec.Currency); err != nil {
			s.logger.Warn("receipt", "receipt email failed", map[string]interface{}{
				"number": rec.Number,
				"error":  err.Error(),
			})
		}
	}
	s.publish(ctx, events.NewReceiptIssued(rec.Number, rec.DonorEmail, rec.TaxYear))
}

func (s *receiptService) publish(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("receipt", "failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}

func toReceiptResponse(r *entity.Receipt) *dto.ReceiptResponse {
	return &dto.ReceiptResponse{
		Number:        r.Number,
		Kind:          string(r.Kind),
		TaxYear:       r.TaxYear,
		TransactionId: r.TransactionId,
		Amount:        r.Amount,
		Currency:      r.Currency,
		IssuedAt:      r.IssuedAt,
	}
}
