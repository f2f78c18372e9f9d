package implementation

import (
	"context"
	"errors"

	"givehub-be/internal/entity"
	"givehub-be/internal/mapper"
	"givehub-be/internal/model"
	"givehub-be/internal/repository/contract"
	"givehub-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ReceiptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReceiptMapper
}

func NewReceiptRepository(db *gorm.DB) contract.ReceiptRepository {
	return &ReceiptRepositoryImpl{
		db:     db,
		mapper: mapper.NewReceiptMapper(),
	}
}

func (r *ReceiptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReceiptRepositoryImpl) Create(ctx context.Context, receipt *entity.Receipt) error {
	m := r.mapper.ToModel(receipt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*receipt = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReceiptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Receipt, error) {
	var m model.Receipt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ReceiptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Receipt, error) {
	var models []*model.Receipt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Receipt, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// NextSequence allocates via a single upsert statement. Two concurrent
// callers for the same year serialize on the counter row and always get
// distinct values; a naive max(sequence)+1 read would not.
func (r *ReceiptRepositoryImpl) NextSequence(ctx context.Context, taxYear int) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO receipt_counters (tax_year, last_sequence)
		VALUES (?, 1)
		ON CONFLICT (tax_year)
		DO UPDATE SET last_sequence = receipt_counters.last_sequence + 1
		RETURNING last_sequence`, taxYear).
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
