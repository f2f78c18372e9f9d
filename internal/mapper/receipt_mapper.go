package mapper

import (
	"givehub-be/internal/entity"
	"givehub-be/internal/model"
)

type ReceiptMapper struct{}

func NewReceiptMapper() *ReceiptMapper {
	return &ReceiptMapper{}
}

func (m *ReceiptMapper) ToEntity(r *model.Receipt) *entity.Receipt {
	if r == nil {
		return nil
	}
	return &entity.Receipt{
		Id:            r.Id,
		Number:        r.Number,
		Kind:          entity.ReceiptKind(r.Kind),
		TaxYear:       r.TaxYear,
		Sequence:      r.Sequence,
		TransactionId: r.TransactionId,
		DonorHash:     r.DonorHash,
		DonorEmail:    r.DonorEmail,
		Amount:        r.Amount,
		Currency:      r.Currency,
		IssuedAt:      r.IssuedAt,
	}
}

func (m *ReceiptMapper) ToModel(r *entity.Receipt) *model.Receipt {
	if r == nil {
		return nil
	}
	return &model.Receipt{
		Id:            r.Id,
		Number:        r.Number,
		Kind:          string(r.Kind),
		TaxYear:       r.TaxYear,
		Sequence:      r.Sequence,
		TransactionId: r.TransactionId,
		DonorHash:     r.DonorHash,
		DonorEmail:    r.DonorEmail,
		Amount:        r.Amount,
		Currency:      r.Currency,
		IssuedAt:      r.IssuedAt,
	}
}
