package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GatewayEvent is the webhook dedup table. The unique index over
// (gateway_id, external_event_id) is what makes insert-if-absent atomic.
type GatewayEvent struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GatewayId       string         `gorm:"type:varchar(50);not null;uniqueIndex:ux_gateway_events_dedup,priority:1"`
	ExternalEventId string         `gorm:"type:varchar(255);not null;uniqueIndex:ux_gateway_events_dedup,priority:2"`
	TransactionId   string         `gorm:"type:varchar(64);not null;index"`
	EventType       string         `gorm:"type:varchar(50)"`
	RawPayload      datatypes.JSON `gorm:"type:jsonb"`
	ReceivedAt      time.Time      `gorm:"not null;index;autoCreateTime"`
}

func (GatewayEvent) TableName() string {
	return "gateway_events"
}
