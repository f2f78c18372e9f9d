package mapper

import (
	"givehub-be/internal/entity"
	"givehub-be/internal/model"

	"gorm.io/datatypes"
)

type GatewayEventMapper struct{}

func NewGatewayEventMapper() *GatewayEventMapper {
	return &GatewayEventMapper{}
}

func (m *GatewayEventMapper) ToEntity(e *model.GatewayEvent) *entity.GatewayEvent {
	if e == nil {
		return nil
	}
	return &entity.GatewayEvent{
		Id:              e.Id,
		GatewayId:       e.GatewayId,
		ExternalEventId: e.ExternalEventId,
		TransactionId:   e.TransactionId,
		EventType:       e.EventType,
		RawPayload:      []byte(e.RawPayload),
		ReceivedAt:      e.ReceivedAt,
	}
}

func (m *GatewayEventMapper) ToModel(e *entity.GatewayEvent) *model.GatewayEvent {
	if e == nil {
		return nil
	}
	return &model.GatewayEvent{
		Id:              e.Id,
		GatewayId:       e.GatewayId,
		ExternalEventId: e.ExternalEventId,
		TransactionId:   e.TransactionId,
		EventType:       e.EventType,
		RawPayload:      datatypes.JSON(e.RawPayload),
		ReceivedAt:      e.ReceivedAt,
	}
}
