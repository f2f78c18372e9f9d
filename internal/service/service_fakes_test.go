// FILE: internal/service/service_fakes_test.go
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"givehub-be/internal/entity"
	"givehub-be/internal/repository/contract"
	"givehub-be/internal/repository/specification"
	"givehub-be/internal/repository/unitofwork"
	"givehub-be/pkg/gateway"
)

// In-memory doubles for the repository layer. They type-switch on the
// specification values the services actually use, and reproduce the
// guarded-update semantics of the SQL implementations so the state machine
// behaves the same under test.

type fakeStore struct {
	mu            sync.Mutex
	donations     map[string]*entity.Donation // by transaction id
	subscriptions map[uuid.UUID]*entity.Subscription
	subLogs       []*entity.SubscriptionLog
	campaigns     map[uuid.UUID]*entity.Campaign
	gatewayEvents map[string]*entity.GatewayEvent // gatewayId + "|" + externalEventId
	receipts      []*entity.Receipt
	counters      map[int]int64

	campaignDeltas []float64

	// subReadHook runs once after the next subscription read returns its
	// stale copy, letting a test slip a concurrent write in between an
	// owner's read and the following update.
	subReadHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		donations:     make(map[string]*entity.Donation),
		subscriptions: make(map[uuid.UUID]*entity.Subscription),
		campaigns:     make(map[uuid.UUID]*entity.Campaign),
		gatewayEvents: make(map[string]*entity.GatewayEvent),
		counters:      make(map[int]int64),
	}
}

type fakeFactory struct{ store *fakeStore }

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

func newFakeFactory(store *fakeStore) unitofwork.RepositoryFactory {
	return &fakeFactory{store: store}
}

type fakeUow struct{ store *fakeStore }

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) DonationRepository() contract.DonationRepository {
	return &fakeDonationRepo{store: u.store}
}
func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository {
	return &fakeSubscriptionRepo{store: u.store}
}
func (u *fakeUow) SubscriptionLogRepository() contract.SubscriptionLogRepository {
	return &fakeSubscriptionLogRepo{store: u.store}
}
func (u *fakeUow) CampaignRepository() contract.CampaignRepository {
	return &fakeCampaignRepo{store: u.store}
}
func (u *fakeUow) GatewayEventRepository() contract.GatewayEventRepository {
	return &fakeGatewayEventRepo{store: u.store}
}
func (u *fakeUow) ReceiptRepository() contract.ReceiptRepository {
	return &fakeReceiptRepo{store: u.store}
}

// --- donations ---

type fakeDonationRepo struct{ store *fakeStore }

func (r *fakeDonationRepo) Create(ctx context.Context, d *entity.Donation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *d
	r.store.donations[d.TransactionId] = &cp
	return nil
}

func donationMatches(d *entity.Donation, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByTransactionId:
			if d.TransactionId != sp.TransactionId {
				return false
			}
		case specification.ByID:
			if d.Id != sp.ID {
				return false
			}
		case specification.ByCampaign:
			if d.CampaignId != sp.CampaignId {
				return false
			}
		case specification.ByDonorEmail:
			if !strings.EqualFold(d.DonorEmail, sp.Email) {
				return false
			}
		case specification.ByStatus:
			if string(d.Status) != sp.Status {
				return false
			}
		}
	}
	return true
}

func (r *fakeDonationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Donation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.donations {
		if donationMatches(d, specs) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDonationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Donation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Donation
	for _, d := range r.store.donations {
		if donationMatches(d, specs) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDonationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeDonationRepo) ApplyGatewayResult(ctx context.Context, transactionId string, upd contract.GatewayResultUpdate) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.donations[transactionId]
	if !ok {
		return false, nil
	}
	if d.Status != entity.DonationStatusPending && d.Status != entity.DonationStatusRequiresAction {
		return false, nil
	}
	d.Status = upd.Status
	d.Fee = upd.Fee
	d.NetAmount = upd.NetAmount
	if upd.GatewayTxnId != nil {
		d.GatewayTxnId = upd.GatewayTxnId
	}
	d.FailureReason = upd.FailureReason
	d.CompletedAt = upd.CompletedAt
	d.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeDonationRepo) CancelIfAllowed(ctx context.Context, transactionId, reason string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.donations[transactionId]
	if !ok {
		return false, nil
	}
	if d.Status != entity.DonationStatusPending && d.Status != entity.DonationStatusFailed {
		return false, nil
	}
	d.Status = entity.DonationStatusCancelled
	d.FailureReason = reason
	return true, nil
}

func (r *fakeDonationRepo) ApplyRefund(ctx context.Context, transactionId string, amount float64) (bool, entity.DonationStatus, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.donations[transactionId]
	if !ok {
		return false, "", nil
	}
	if d.Status != entity.DonationStatusCompleted && d.Status != entity.DonationStatusPartialRefund {
		return false, "", nil
	}
	if d.NetAmount-d.RefundedAmount < amount {
		return false, "", nil
	}
	d.RefundedAmount += amount
	if d.RefundedAmount >= d.NetAmount {
		d.Status = entity.DonationStatusRefunded
	} else {
		d.Status = entity.DonationStatusPartialRefund
	}
	return true, d.Status, nil
}

func (r *fakeDonationRepo) TotalsForCampaign(ctx context.Context, campaignId string) (*contract.CampaignTotals, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	totals := &contract.CampaignTotals{}
	donors := make(map[string]bool)
	for _, d := range r.store.donations {
		if d.CampaignId.String() != campaignId {
			continue
		}
		if d.Status != entity.DonationStatusCompleted && d.Status != entity.DonationStatusPartialRefund {
			continue
		}
		totals.CurrentAmount += d.NetAmount - d.RefundedAmount
		donors[strings.ToLower(d.DonorEmail)] = true
		if d.CompletedAt != nil && (totals.LastDonationDate == nil || d.CompletedAt.After(*totals.LastDonationDate)) {
			t := *d.CompletedAt
			totals.LastDonationDate = &t
		}
	}
	totals.TotalDonors = int64(len(donors))
	if totals.TotalDonors > 0 {
		totals.AverageDonation = totals.CurrentAmount / float64(totals.TotalDonors)
	}
	return totals, nil
}

func (r *fakeDonationRepo) AnnualTotalForDonor(ctx context.Context, donorEmail string, taxYear int) (float64, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var total float64
	var count int64
	for _, d := range r.store.donations {
		if !strings.EqualFold(d.DonorEmail, donorEmail) {
			continue
		}
		if d.Status != entity.DonationStatusCompleted && d.Status != entity.DonationStatusPartialRefund {
			continue
		}
		if d.CompletedAt == nil || d.CompletedAt.Year() != taxYear {
			continue
		}
		total += d.NetAmount - d.RefundedAmount
		count++
	}
	return total, count, nil
}

// --- subscriptions ---

type fakeSubscriptionRepo struct{ store *fakeStore }

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *sub
	r.store.subscriptions[sub.Id] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) SetStatus(ctx context.Context, id string, from, to entity.SubscriptionStatus) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(id)
	s, ok := r.store.subscriptions[uid]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	s.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeSubscriptionRepo) UpdateTerms(ctx context.Context, id string, amount float64, frequency entity.Frequency) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(id)
	s, ok := r.store.subscriptions[uid]
	if !ok || s.Status == entity.SubscriptionStatusCancelled {
		return false, nil
	}
	s.Amount = amount
	s.Frequency = frequency
	s.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeSubscriptionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	r.store.mu.Lock()
	var found *entity.Subscription
	for _, s := range r.store.subscriptions {
		match := true
		for _, spec := range specs {
			if byId, ok := spec.(specification.ByID); ok && s.Id != byId.ID {
				match = false
			}
		}
		if match {
			cp := *s
			found = &cp
			break
		}
	}
	hook := r.store.subReadHook
	r.store.subReadHook = nil
	r.store.mu.Unlock()

	if hook != nil {
		hook()
	}
	return found, nil
}

func (r *fakeSubscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Subscription
	for _, s := range r.store.subscriptions {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) FindDue(ctx context.Context, now time.Time, staleBefore time.Time, limit int) ([]*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Subscription
	for _, s := range r.store.subscriptions {
		if s.Status != entity.SubscriptionStatusActive {
			continue
		}
		if s.NextPaymentDate.After(now) {
			continue
		}
		if s.ClaimedAt != nil && !s.ClaimedAt.Before(staleBefore) {
			continue
		}
		cp := *s
		out = append(out, &cp)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Claim(ctx context.Context, id string, now time.Time, staleBefore time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(id)
	s, ok := r.store.subscriptions[uid]
	if !ok || s.Status != entity.SubscriptionStatusActive {
		return false, nil
	}
	if s.ClaimedAt != nil && !s.ClaimedAt.Before(staleBefore) {
		return false, nil
	}
	t := now
	s.ClaimedAt = &t
	return true, nil
}

func (r *fakeSubscriptionRepo) ReleaseClaim(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(id)
	if s, ok := r.store.subscriptions[uid]; ok {
		s.ClaimedAt = nil
	}
	return nil
}

func (r *fakeSubscriptionRepo) CompleteCycle(ctx context.Context, id string, next time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(id)
	s, ok := r.store.subscriptions[uid]
	if !ok {
		return nil
	}
	if !s.NextPaymentDate.Before(next) {
		return nil
	}
	s.FailureCount = 0
	s.NextPaymentDate = next
	s.ClaimedAt = nil
	return nil
}

func (r *fakeSubscriptionRepo) RecordFailure(ctx context.Context, id string, retryAt time.Time) (int, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(id)
	s, ok := r.store.subscriptions[uid]
	if !ok {
		return 0, 0, nil
	}
	s.FailureCount++
	if retryAt.After(s.NextPaymentDate) {
		s.NextPaymentDate = retryAt
	}
	s.ClaimedAt = nil
	return s.FailureCount, s.MaxFailures, nil
}

func (r *fakeSubscriptionRepo) Cancel(ctx context.Context, id string, reason string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(id)
	s, ok := r.store.subscriptions[uid]
	if !ok || s.Status == entity.SubscriptionStatusCancelled {
		return nil
	}
	s.Status = entity.SubscriptionStatusCancelled
	s.CancelReason = reason
	t := at
	s.CancelledAt = &t
	s.ClaimedAt = nil
	return nil
}

func (r *fakeSubscriptionRepo) FindDueForReminder(ctx context.Context, now time.Time, window time.Duration, limit int) ([]*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	horizon := now.Add(window)
	windowStart := now.Add(-window)
	var out []*entity.Subscription
	for _, s := range r.store.subscriptions {
		if s.Status != entity.SubscriptionStatusActive {
			continue
		}
		if !s.NextPaymentDate.After(now) || s.NextPaymentDate.After(horizon) {
			continue
		}
		if s.LastReminderAt != nil && !s.LastReminderAt.Before(windowStart) {
			continue
		}
		cp := *s
		out = append(out, &cp)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) MarkReminded(ctx context.Context, id string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(id)
	if s, ok := r.store.subscriptions[uid]; ok {
		t := at
		s.LastReminderAt = &t
	}
	return nil
}

type fakeSubscriptionLogRepo struct{ store *fakeStore }

func (r *fakeSubscriptionLogRepo) Append(ctx context.Context, log *entity.SubscriptionLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *log
	r.store.subLogs = append(r.store.subLogs, &cp)
	return nil
}

func (r *fakeSubscriptionLogRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionLog, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.SubscriptionLog
	for _, l := range r.store.subLogs {
		match := true
		for _, s := range specs {
			if f, ok := s.(specification.FilterBy); ok && f.Field == "subscription_id" {
				if id, ok := f.Value.(uuid.UUID); ok && l.SubscriptionId != id {
					match = false
				}
			}
		}
		if match {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- campaigns ---

type fakeCampaignRepo struct{ store *fakeStore }

func (r *fakeCampaignRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Campaign, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.campaigns {
		match := true
		for _, s := range specs {
			if byId, ok := s.(specification.ByID); ok && c.Id != byId.ID {
				match = false
			}
		}
		if match {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) FindAllIds(ctx context.Context) ([]uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var ids []uuid.UUID
	for id := range r.store.campaigns {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeCampaignRepo) ApplyDelta(ctx context.Context, campaignId string, delta float64, donationAt *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(campaignId)
	if c, ok := r.store.campaigns[uid]; ok {
		c.CurrentAmount += delta
		if donationAt != nil && (c.LastDonationDate == nil || donationAt.After(*c.LastDonationDate)) {
			t := *donationAt
			c.LastDonationDate = &t
		}
	}
	r.store.campaignDeltas = append(r.store.campaignDeltas, delta)
	return nil
}

func (r *fakeCampaignRepo) OverwriteAggregate(ctx context.Context, campaignId string, totals *contract.CampaignTotals) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	uid, _ := uuid.Parse(campaignId)
	if c, ok := r.store.campaigns[uid]; ok {
		c.CurrentAmount = totals.CurrentAmount
		c.TotalDonors = totals.TotalDonors
		c.AverageDonation = totals.AverageDonation
		c.LastDonationDate = totals.LastDonationDate
	}
	return nil
}

// --- gateway events ---

type fakeGatewayEventRepo struct{ store *fakeStore }

func (r *fakeGatewayEventRepo) InsertIfAbsent(ctx context.Context, event *entity.GatewayEvent) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := event.GatewayId + "|" + event.ExternalEventId
	if _, exists := r.store.gatewayEvents[key]; exists {
		return false, nil
	}
	cp := *event
	r.store.gatewayEvents[key] = &cp
	return true, nil
}

func (r *fakeGatewayEventRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var deleted int64
	for key, e := range r.store.gatewayEvents {
		if e.ReceivedAt.Before(cutoff) {
			delete(r.store.gatewayEvents, key)
			deleted++
		}
	}
	return deleted, nil
}

// --- receipts ---

type fakeReceiptRepo struct{ store *fakeStore }

func (r *fakeReceiptRepo) Create(ctx context.Context, receipt *entity.Receipt) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *receipt
	r.store.receipts = append(r.store.receipts, &cp)
	return nil
}

func (r *fakeReceiptRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Receipt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.store.receipts {
		match := true
		for _, s := range specs {
			switch sp := s.(type) {
			case specification.ByTransactionId:
				if rec.TransactionId == nil || *rec.TransactionId != sp.TransactionId {
					match = false
				}
			case specification.FilterBy:
				if sp.Field == "number" {
					if num, ok := sp.Value.(string); ok && rec.Number != num {
						match = false
					}
				}
			}
		}
		if match {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeReceiptRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Receipt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Receipt
	for _, rec := range r.store.receipts {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeReceiptRepo) NextSequence(ctx context.Context, taxYear int) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.counters[taxYear]++
	return r.store.counters[taxYear], nil
}

// --- gateway double ---

type fakeGateway struct {
	id           string
	chargeResult *gateway.ChargeResult
	chargeErr    error
	refundResult *gateway.RefundResult
	refundErr    error
	refundHook   func()
	webhookEvent *gateway.Event
	webhookErr   error
	chargeCalls  int
}

func (g *fakeGateway) Id() string { return g.id }

func (g *fakeGateway) ProcessPayment(ctx context.Context, req *gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	g.chargeCalls++
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return g.chargeResult, nil
}

func (g *fakeGateway) ProcessRefund(ctx context.Context, gatewayTxnId string, amount float64) (*gateway.RefundResult, error) {
	if g.refundHook != nil {
		g.refundHook()
	}
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	return g.refundResult, nil
}

func (g *fakeGateway) HandleWebhook(raw []byte, signature string) (*gateway.Event, error) {
	if g.webhookErr != nil {
		return nil, g.webhookErr
	}
	return g.webhookEvent, nil
}

// --- logger double ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
