package contract

import (
	"context"
	"time"

	"givehub-be/internal/entity"
	"givehub-be/internal/repository/specification"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error

	// SetStatus flips the lifecycle status only while the row is still in
	// the expected state. Scheduler-owned columns (next_payment_date,
	// failure_count, claimed_at) are never written by owner actions.
	SetStatus(ctx context.Context, id string, from, to entity.SubscriptionStatus) (applied bool, err error)

	// UpdateTerms changes amount and frequency on a non-cancelled row.
	// The already scheduled next_payment_date is left alone; the new
	// period takes effect from the next completed cycle.
	UpdateTerms(ctx context.Context, id string, amount float64, frequency entity.Frequency) (applied bool, err error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)

	// FindDue returns active subscriptions with next_payment_date <= now
	// and no live claim, ordered by next_payment_date asc, bounded.
	FindDue(ctx context.Context, now time.Time, staleBefore time.Time, limit int) ([]*entity.Subscription, error)

	// Claim marks a subscription as being processed. It lands only while
	// the row is active and unclaimed (or the claim has gone stale), so an
	// overlapping tick cannot charge the same subscription twice.
	Claim(ctx context.Context, id string, now time.Time, staleBefore time.Time) (claimed bool, err error)

	// ReleaseClaim clears claimed_at without touching anything else.
	ReleaseClaim(ctx context.Context, id string) error

	// CompleteCycle resets the failure count and advances
	// next_payment_date, guarded so the date only ever moves forward.
	CompleteCycle(ctx context.Context, id string, next time.Time) error

	// RecordFailure increments failure_count, stores the retry date and
	// releases the claim, returning the new count and the threshold.
	RecordFailure(ctx context.Context, id string, retryAt time.Time) (failureCount, maxFailures int, err error)

	// Cancel transitions the subscription to cancelled with a reason.
	Cancel(ctx context.Context, id string, reason string, at time.Time) error

	// FindDueForReminder returns active subscriptions whose next charge is
	// within the window and that have not been reminded this cycle.
	FindDueForReminder(ctx context.Context, now time.Time, window time.Duration, limit int) ([]*entity.Subscription, error)

	// MarkReminded stamps last_reminder_at.
	MarkReminded(ctx context.Context, id string, at time.Time) error
}

type SubscriptionLogRepository interface {
	Append(ctx context.Context, log *entity.SubscriptionLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionLog, error)
}
