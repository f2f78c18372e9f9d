// FILE: internal/entity/gateway_event_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// GatewayEvent records a provider callback that has already been applied to
// the ledger. Existence of the (GatewayId, ExternalEventId) pair means
// "applied"; rows are write-once and only read for the existence check.
// They may be garbage-collected once older than the dedup retention window.
type GatewayEvent struct {
	Id              uuid.UUID
	GatewayId       string
	ExternalEventId string
	TransactionId   string
	EventType       string
	RawPayload      []byte
	ReceivedAt      time.Time
}
