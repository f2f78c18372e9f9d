package contract

import (
	"context"

	"givehub-be/internal/entity"
	"givehub-be/internal/repository/specification"
)

type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Receipt, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Receipt, error)

	// NextSequence atomically increments and returns the per-year counter.
	// Concurrent callers always receive distinct values; there is no
	// read-then-insert window.
	NextSequence(ctx context.Context, taxYear int) (int64, error)
}
