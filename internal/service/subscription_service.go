// FILE: internal/service/subscription_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"givehub-be/internal/campaign"
	"givehub-be/internal/dto"
	"givehub-be/internal/entity"
	"givehub-be/internal/pkg/apperrors"
	"givehub-be/internal/pkg/logger"
	"givehub-be/internal/pkg/mailer"
	"givehub-be/internal/repository/specification"
	"givehub-be/internal/repository/unitofwork"
	"givehub-be/pkg/events"
	"givehub-be/pkg/gateway"
	pktNats "givehub-be/pkg/nats"
)

const (
	// retryDelay is the fixed short retry after a failed charge, distinct
	// from the natural billing period.
	retryDelay = 24 * time.Hour

	// reminderWindow is how far ahead of next_payment_date the pre-charge
	// reminder goes out.
	reminderWindow = 3 * 24 * time.Hour

	cancelReasonFailures = "multiple payment failures"
)

type ISubscriptionService interface {
	CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error)
	GetActivityLog(ctx context.Context, id uuid.UUID) ([]*dto.SubscriptionLogResponse, error)
	PauseSubscription(ctx context.Context, id uuid.UUID) error
	ResumeSubscription(ctx context.Context, id uuid.UUID) error
	CancelSubscription(ctx context.Context, id uuid.UUID, reason string) error
	UpdateSubscription(ctx context.Context, id uuid.UUID, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error)

	// ProcessDue runs one billing pass: claim, re-check, charge, advance
	// or record failure. Called by the scheduler under its lease.
	ProcessDue(ctx context.Context, now time.Time, claimExpiry time.Duration, batchSize int) error

	// SendReminders runs the low-priority pre-charge reminder pass.
	SendReminders(ctx context.Context, now time.Time, batchSize int) error
}

type subscriptionService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateways       *gateway.Registry
	gate           *campaign.Gate
	donations      *donationService
	mailer         mailer.IEmailService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	gateways *gateway.Registry,
	gate *campaign.Gate,
	donationSvc IDonationService,
	mail mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISubscriptionService {
	ds, _ := donationSvc.(*donationService)
	return &subscriptionService{
		uowFactory:     uowFactory,
		gateways:       gateways,
		gate:           gate,
		donations:      ds,
		mailer:         mail,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	freq := entity.Frequency(req.Frequency)
	if !freq.Valid() {
		return nil, apperrors.Validation("frequency", "unsupported billing frequency")
	}
	if _, err := s.gateways.Resolve(req.GatewayId); err != nil {
		return nil, apperrors.Validation("gateway_id", err.Error())
	}

	camp, err := s.gate.CheckAccepts(ctx, req.CampaignId, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	maxFailures := req.MaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}

	now := time.Now()
	sub := &entity.Subscription{
		Id:           uuid.New(),
		CampaignId:   camp.Id,
		DonorName:    req.DonorName,
		DonorEmail:   req.DonorEmail,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Frequency:    freq,
		PaymentToken: req.MethodToken,
		GatewayId:    req.GatewayId,
		Status:       entity.SubscriptionStatusActive,
		// Due immediately: the first cycle is charged by the next billing
		// tick through the same path as every later cycle.
		NextPaymentDate: now,
		MaxFailures:     maxFailures,
		TaxReceipt:      req.TaxReceipt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := s.appendLog(ctx, uow, sub.Id, entity.SubscriptionLogCreated, "signup"); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return toSubscriptionResponse(sub), nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id uuid.UUID) (*dto.SubscriptionResponse, error) {
	sub, err := s.findSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSubscriptionResponse(sub), nil
}

func (s *subscriptionService) GetActivityLog(ctx context.Context, id uuid.UUID) ([]*dto.SubscriptionLogResponse, error) {
	if _, err := s.findSubscription(ctx, id); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	logs, err := uow.SubscriptionLogRepository().FindAll(ctx,
		specification.Filter("subscription_id", id),
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SubscriptionLogResponse, len(logs))
	for i, l := range logs {
		res[i] = &dto.SubscriptionLogResponse{
			Action:    string(l.Action),
			Detail:    l.Detail,
			CreatedAt: l.CreatedAt,
		}
	}
	return res, nil
}

func (s *subscriptionService) PauseSubscription(ctx context.Context, id uuid.UUID) error {
	sub, err := s.findSubscription(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status != entity.SubscriptionStatusActive {
		return apperrors.Conflict("subscription %s is %s, only active subscriptions can be paused", id, sub.Status)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	applied, err := uow.SubscriptionRepository().SetStatus(ctx, id.String(),
		entity.SubscriptionStatusActive, entity.SubscriptionStatusPaused)
	if err != nil {
		return err
	}
	if !applied {
		return apperrors.Conflict("subscription %s is no longer active", id)
	}
	if err := s.appendLog(ctx, uow, id, entity.SubscriptionLogPaused, ""); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *subscriptionService) ResumeSubscription(ctx context.Context, id uuid.UUID) error {
	sub, err := s.findSubscription(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status != entity.SubscriptionStatusPaused {
		return apperrors.Conflict("subscription %s is %s, only paused subscriptions can be resumed", id, sub.Status)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// next_payment_date is left untouched: if the date passed while
	// paused, the next tick charges immediately, which is what a donor
	// resuming an overdue subscription expects.
	applied, err := uow.SubscriptionRepository().SetStatus(ctx, id.String(),
		entity.SubscriptionStatusPaused, entity.SubscriptionStatusActive)
	if err != nil {
		return err
	}
	if !applied {
		return apperrors.Conflict("subscription %s is no longer paused", id)
	}
	if err := s.appendLog(ctx, uow, id, entity.SubscriptionLogResumed, ""); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id uuid.UUID, reason string) error {
	sub, err := s.findSubscription(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status == entity.SubscriptionStatusCancelled {
		return apperrors.Conflict("subscription %s is already cancelled", id)
	}
	if reason == "" {
		reason = "cancelled by donor"
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().Cancel(ctx, id.String(), reason, time.Now()); err != nil {
		return err
	}
	if err := s.appendLog(ctx, uow, id, entity.SubscriptionLogCancelled, reason); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.publish(ctx, events.NewSubscriptionCancelled(id.String(), reason))
	return nil
}

func (s *subscriptionService) UpdateSubscription(ctx context.Context, id uuid.UUID, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	sub, err := s.findSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == entity.SubscriptionStatusCancelled {
		return nil, apperrors.Conflict("subscription %s is cancelled", id)
	}

	amount := sub.Amount
	if req.Amount > 0 {
		amount = req.Amount
	}
	frequency := sub.Frequency
	if req.Frequency != "" {
		freq := entity.Frequency(req.Frequency)
		if !freq.Valid() {
			return nil, apperrors.Validation("frequency", "unsupported billing frequency")
		}
		// The new period takes effect from the next charge; the already
		// scheduled date is never pulled earlier.
		frequency = freq
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	applied, err := uow.SubscriptionRepository().UpdateTerms(ctx, id.String(), amount, frequency)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.Conflict("subscription %s is cancelled", id)
	}
	if err := s.appendLog(ctx, uow, id, entity.SubscriptionLogUpdated, "amount/frequency changed"); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	fresh, err := s.findSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSubscriptionResponse(fresh), nil
}

// ProcessDue is one billing pass. Each subscription is claimed with a timed
// CAS before charging so overlapping passes never double-charge; a crashed
// worker's claim expires and the next pass retries.
func (s *subscriptionService) ProcessDue(ctx context.Context, now time.Time, claimExpiry time.Duration, batchSize int) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	staleBefore := now.Add(-claimExpiry)

	due, err := uow.SubscriptionRepository().FindDue(ctx, now, staleBefore, batchSize)
	if err != nil {
		return err
	}

	for _, sub := range due {
		if err := s.processOne(ctx, sub, now, staleBefore); err != nil {
			if apperrors.IsClaimConflict(err) {
				continue
			}
			s.logger.Error("billing", "cycle processing failed", map[string]interface{}{
				"subscription_id": sub.Id,
				"error":           err.Error(),
			})
		}
	}
	return nil
}

func (s *subscriptionService) processOne(ctx context.Context, sub *entity.Subscription, now time.Time, staleBefore time.Time) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	claimed, err := uow.SubscriptionRepository().Claim(ctx, sub.Id.String(), now, staleBefore)
	if err != nil {
		return err
	}
	if !claimed {
		return &apperrors.SchedulerClaimConflict{SubscriptionId: sub.Id.String()}
	}

	// Re-check right before charging: the owner may have cancelled or
	// paused between selection and claim.
	fresh, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: sub.Id})
	if err != nil {
		return err
	}
	if fresh == nil || fresh.Status != entity.SubscriptionStatusActive {
		return uow.SubscriptionRepository().ReleaseClaim(ctx, sub.Id.String())
	}

	chargeErr := s.chargeCycle(ctx, fresh)
	if chargeErr == nil {
		next := fresh.Frequency.Advance(fresh.NextPaymentDate)
		// A subscription resumed long after pause may be several periods
		// behind; advance past now so it is not instantly due again.
		for !next.After(now) {
			next = fresh.Frequency.Advance(next)
		}
		if err := uow.SubscriptionRepository().CompleteCycle(ctx, fresh.Id.String(), next); err != nil {
			return err
		}
		return s.appendLogStandalone(ctx, fresh.Id, entity.SubscriptionLogCharged, "cycle charged")
	}

	return s.handleChargeFailure(ctx, fresh, now, chargeErr)
}

// chargeCycle creates the cycle's ledger row and charges it through the
// shared donation path. Returns nil only on a completed outcome.
func (s *subscriptionService) chargeCycle(ctx context.Context, sub *entity.Subscription) error {
	gw, err := s.gateways.Resolve(sub.GatewayId)
	if err != nil {
		return err
	}

	now := time.Now()
	subId := sub.Id
	donation := &entity.Donation{
		Id:             uuid.New(),
		TransactionId:  uuid.NewString(),
		CampaignId:     sub.CampaignId,
		SubscriptionId: &subId,
		DonorName:      sub.DonorName,
		DonorEmail:     sub.DonorEmail,
		Amount:         sub.Amount,
		Currency:       sub.Currency,
		Status:         entity.DonationStatusPending,
		Type:           entity.DonationTypeSubscription,
		GatewayId:      sub.GatewayId,
		TaxReceipt:     sub.TaxReceipt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DonationRepository().Create(ctx, donation); err != nil {
		return err
	}

	res, err := s.donations.charge(ctx, gw, donation, sub.PaymentToken)
	if err != nil {
		return err
	}
	if res.Status != string(entity.DonationStatusCompleted) {
		// Ambiguous and pending outcomes still count toward the failure
		// budget: a stored token charge should settle synchronously.
		return &apperrors.GatewayError{
			GatewayId: sub.GatewayId,
			Code:      res.Status,
			Reason:    "recurring charge did not complete",
		}
	}

	s.publish(ctx, events.NewSubscriptionCharged(sub.Id.String(), donation.TransactionId, sub.NextPaymentDate))
	return nil
}

func (s *subscriptionService) handleChargeFailure(ctx context.Context, sub *entity.Subscription, now time.Time, cause error) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	retryAt := now.Add(retryDelay)
	failureCount, maxFailures, err := uow.SubscriptionRepository().RecordFailure(ctx, sub.Id.String(), retryAt)
	if err != nil {
		return err
	}
	_ = s.appendLogStandalone(ctx, sub.Id, entity.SubscriptionLogChargeFailed, cause.Error())

	if failureCount >= maxFailures {
		if err := uow.SubscriptionRepository().Cancel(ctx, sub.Id.String(), cancelReasonFailures, now); err != nil {
			return err
		}
		_ = s.appendLogStandalone(ctx, sub.Id, entity.SubscriptionLogCancelled, cancelReasonFailures)
		s.publish(ctx, events.NewSubscriptionCancelled(sub.Id.String(), cancelReasonFailures))
		if s.mailer != nil {
			if mailErr := s.mailer.SendSubscriptionCancelled(sub.DonorEmail, sub.DonorName, cancelReasonFailures); mailErr != nil {
				s.logger.Warn("billing", "cancellation email failed", map[string]interface{}{"subscription_id": sub.Id, "error": mailErr.Error()})
			}
		}
		return nil
	}

	s.logger.Warn("billing", "charge failed, retry scheduled", map[string]interface{}{
		"subscription_id": sub.Id,
		"failure_count":   failureCount,
		"retry_at":        retryAt,
		"error":           cause.Error(),
	})
	if s.mailer != nil {
		if mailErr := s.mailer.SendPaymentFailed(sub.DonorEmail, sub.DonorName, sub.Amount, sub.Currency, retryAt); mailErr != nil {
			s.logger.Warn("billing", "failure email failed", map[string]interface{}{"subscription_id": sub.Id, "error": mailErr.Error()})
		}
	}
	return nil
}

// SendReminders sends at most one pre-charge reminder per cycle, gated by
// last_reminder_at.
func (s *subscriptionService) SendReminders(ctx context.Context, now time.Time, batchSize int) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	subs, err := uow.SubscriptionRepository().FindDueForReminder(ctx, now, reminderWindow, batchSize)
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if s.mailer != nil {
			if err := s.mailer.SendUpcomingChargeReminder(sub.DonorEmail, sub.DonorName, sub.Amount, sub.Currency, sub.NextPaymentDate); err != nil {
				s.logger.Warn("billing", "reminder email failed", map[string]interface{}{"subscription_id": sub.Id, "error": err.Error()})
				continue
			}
		}
		if err := uow.SubscriptionRepository().MarkReminded(ctx, sub.Id.String(), now); err != nil {
			return err
		}
		_ = s.appendLogStandalone(ctx, sub.Id, entity.SubscriptionLogReminderSent, "")
	}
	return nil
}

func (s *subscriptionService) findSubscription(ctx context.Context, id uuid.UUID) (*entity.Subscription, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NotFound("subscription", id.String())
	}
	return sub, nil
}

func (s *subscriptionService) appendLog(ctx context.Context, uow unitofwork.UnitOfWork, subId uuid.UUID, action entity.SubscriptionLogAction, detail string) error {
	return uow.SubscriptionLogRepository().Append(ctx, &entity.SubscriptionLog{
		Id:             uuid.New(),
		SubscriptionId: subId,
		Action:         action,
		Detail:         detail,
		CreatedAt:      time.Now(),
	})
}

func (s *subscriptionService) appendLogStandalone(ctx context.Context, subId uuid.UUID, action entity.SubscriptionLogAction, detail string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.appendLog(ctx, uow, subId, action, detail)
}

func (s *subscriptionService) publish(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("subscription", "failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
}

func toSubscriptionResponse(sub *entity.Subscription) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		Id:              sub.Id,
		CampaignId:      sub.CampaignId,
		DonorName:       sub.DonorName,
		Amount:          sub.Amount,
		Currency:        sub.Currency,
		Frequency:       string(sub.Frequency),
		Status:          string(sub.Status),
		NextPaymentDate: sub.NextPaymentDate,
		FailureCount:    sub.FailureCount,
		MaxFailures:     sub.MaxFailures,
		CancelReason:    sub.CancelReason,
		CancelledAt:     sub.CancelledAt,
		CreatedAt:       sub.CreatedAt,
	}
}
