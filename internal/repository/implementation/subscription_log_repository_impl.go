package implementation

import (
	"context"

	"givehub-be/internal/entity"
	"givehub-be/internal/mapper"
	"givehub-be/internal/model"
	"givehub-be/internal/repository/contract"
	"givehub-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SubscriptionLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionLogRepository(db *gorm.DB) contract.SubscriptionLogRepository {
	return &SubscriptionLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionLogRepositoryImpl) Append(ctx context.Context, log *entity.SubscriptionLog) error {
	m := r.mapper.LogToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.LogToEntity(m)
	return nil
}

func (r *SubscriptionLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionLog, error) {
	var models []*model.SubscriptionLog
	db := r.db.WithContext(ctx)
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	if err := db.Find(&models).Error; err != nil {
		return nil, err
	}
	logs := make([]*entity.SubscriptionLog, len(models))
	for i, m := range models {
		logs[i] = r.mapper.LogToEntity(m)
	}
	return logs, nil
}
