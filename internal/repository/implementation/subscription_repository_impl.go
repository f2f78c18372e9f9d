package implementation

import (
	"context"
	"errors"
	"time"

	"givehub-be/internal/entity"
	"givehub-be/internal/mapper"
	"givehub-be/internal/model"
	"givehub-be/internal/repository/contract"
	"givehub-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *entity.Subscription) error {
	m := r.mapper.ToModel(sub)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*sub = *r.mapper.ToEntity(m)
	return nil
}

// SetStatus and UpdateTerms are the only writes owner actions get. They name
// their columns explicitly so a stale read can never clobber what the billing
// worker wrote to next_payment_date, failure_count or claimed_at.
func (r *SubscriptionRepositoryImpl) SetStatus(ctx context.Context, id string, from, to entity.SubscriptionStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SubscriptionRepositoryImpl) UpdateTerms(ctx context.Context, id string, amount float64, frequency entity.Frequency) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND status <> ?", id, string(entity.SubscriptionStatusCancelled)).
		Updates(map[string]interface{}{
			"amount":     amount,
			"frequency":  string(frequency),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SubscriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) FindDue(ctx context.Context, now time.Time, staleBefore time.Time, limit int) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_payment_date <= ? AND (claimed_at IS NULL OR claimed_at < ?)",
			string(entity.SubscriptionStatusActive), now, staleBefore).
		Order("next_payment_date ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// Claim is the per-subscription guard: only one worker wins the UPDATE, so
// overlapping ticks select but never double-charge.
func (r *SubscriptionRepositoryImpl) Claim(ctx context.Context, id string, now time.Time, staleBefore time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND status = ? AND (claimed_at IS NULL OR claimed_at < ?)",
			id, string(entity.SubscriptionStatusActive), staleBefore).
		Update("claimed_at", now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SubscriptionRepositoryImpl) ReleaseClaim(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Update("claimed_at", nil).Error
}

func (r *SubscriptionRepositoryImpl) CompleteCycle(ctx context.Context, id string, next time.Time) error {
	// next_payment_date only ever moves forward; a stale writer loses.
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND next_payment_date < ?", id, next).
		Updates(map[string]interface{}{
			"failure_count":     0,
			"next_payment_date": next,
			"claimed_at":        nil,
			"updated_at":        time.Now(),
		}).Error
}

func (r *SubscriptionRepositoryImpl) RecordFailure(ctx context.Context, id string, retryAt time.Time) (int, int, error) {
	var row struct {
		FailureCount int
		MaxFailures  int
	}
	err := r.db.WithContext(ctx).Raw(`
		UPDATE subscriptions
		SET failure_count = failure_count + 1,
		    next_payment_date = GREATEST(next_payment_date, ?),
		    claimed_at = NULL,
		    updated_at = NOW()
		WHERE id = ?
		RETURNING failure_count, max_failures`, retryAt, id).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.FailureCount, row.MaxFailures, nil
}

func (r *SubscriptionRepositoryImpl) Cancel(ctx context.Context, id string, reason string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND status <> ?", id, string(entity.SubscriptionStatusCancelled)).
		Updates(map[string]interface{}{
			"status":        string(entity.SubscriptionStatusCancelled),
			"cancel_reason": reason,
			"cancelled_at":  at,
			"claimed_at":    nil,
			"updated_at":    at,
		}).Error
}

func (r *SubscriptionRepositoryImpl) FindDueForReminder(ctx context.Context, now time.Time, window time.Duration, limit int) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	horizon := now.Add(window)
	windowStart := now.Add(-window)
	err := r.db.WithContext(ctx).
		Where(`status = ? AND next_payment_date > ? AND next_payment_date <= ?
			AND (last_reminder_at IS NULL OR last_reminder_at < ?)`,
			string(entity.SubscriptionStatusActive), now, horizon, windowStart).
		Order("next_payment_date ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) MarkReminded(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Update("last_reminder_at", at).Error
}
