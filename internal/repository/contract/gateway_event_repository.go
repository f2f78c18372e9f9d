package contract

import (
	"context"
	"time"

	"givehub-be/internal/entity"
)

type GatewayEventRepository interface {
	// InsertIfAbsent records the event keyed by
	// (gateway_id, external_event_id). inserted=false means the event was
	// already applied and the caller must treat it as a no-op success.
	InsertIfAbsent(ctx context.Context, event *entity.GatewayEvent) (inserted bool, err error)

	// DeleteOlderThan garbage-collects dedup rows past the retention
	// window.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
