package implementation

import (
	"context"
	"time"

	"givehub-be/internal/entity"
	"givehub-be/internal/mapper"
	"givehub-be/internal/model"
	"givehub-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GatewayEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GatewayEventMapper
}

func NewGatewayEventRepository(db *gorm.DB) contract.GatewayEventRepository {
	return &GatewayEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewGatewayEventMapper(),
	}
}

// InsertIfAbsent rides the unique (gateway_id, external_event_id) index:
// ON CONFLICT DO NOTHING plus RowsAffected gives an atomic applied/not-yet
// answer without a separate existence read.
func (r *GatewayEventRepositoryImpl) InsertIfAbsent(ctx context.Context, event *entity.GatewayEvent) (bool, error) {
	m := r.mapper.ToModel(event)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gateway_id"}, {Name: "external_event_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GatewayEventRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("received_at < ?", cutoff).
		Delete(&model.GatewayEvent{})
	return res.RowsAffected, res.Error
}
