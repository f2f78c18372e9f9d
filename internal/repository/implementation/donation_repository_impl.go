package implementation

import (
	"context"
	"errors"
	"time"

	"givehub-be/internal/entity"
	"givehub-be/internal/mapper"
	"givehub-be/internal/model"
	"givehub-be/internal/repository/contract"
	"givehub-be/internal/repository/specification"

	"gorm.io/gorm"
)

type DonationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DonationMapper
}

func NewDonationRepository(db *gorm.DB) contract.DonationRepository {
	return &DonationRepositoryImpl{
		db:     db,
		mapper: mapper.NewDonationMapper(),
	}
}

func (r *DonationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DonationRepositoryImpl) Create(ctx context.Context, donation *entity.Donation) error {
	m := r.mapper.ToModel(donation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*donation = *r.mapper.ToEntity(m)
	return nil
}

func (r *DonationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Donation, error) {
	var m model.Donation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DonationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Donation, error) {
	var models []*model.Donation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Donation, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DonationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Donation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyGatewayResult is the single-statement CAS the whole reconciliation
// design leans on: the WHERE clause admits only non-terminal rows, so the
// synchronous path and a concurrently delivered webhook can never both
// move the same donation.
func (r *DonationRepositoryImpl) ApplyGatewayResult(ctx context.Context, transactionId string, upd contract.GatewayResultUpdate) (bool, error) {
	updates := map[string]interface{}{
		"status":     string(upd.Status),
		"updated_at": time.Now(),
	}
	if upd.Status == entity.DonationStatusCompleted {
		updates["fee"] = upd.Fee
		updates["net_amount"] = upd.NetAmount
		updates["completed_at"] = upd.CompletedAt
	}
	if upd.GatewayTxnId != nil {
		updates["gateway_txn_id"] = upd.GatewayTxnId
	}
	if upd.FailureReason != "" {
		updates["failure_reason"] = upd.FailureReason
	}

	res := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("transaction_id = ? AND status IN ?", transactionId, []string{
			string(entity.DonationStatusPending),
			string(entity.DonationStatusRequiresAction),
		}).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DonationRepositoryImpl) CancelIfAllowed(ctx context.Context, transactionId, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("transaction_id = ? AND status IN ?", transactionId, []string{
			string(entity.DonationStatusPending),
			string(entity.DonationStatusFailed),
		}).
		Updates(map[string]interface{}{
			"status":         string(entity.DonationStatusCancelled),
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *DonationRepositoryImpl) ApplyRefund(ctx context.Context, transactionId string, amount float64) (bool, entity.DonationStatus, error) {
	// The remaining-value guard lives in the WHERE clause and the new
	// status is computed from the post-update amounts, so two racing
	// refunds can neither overdraw the row nor mislabel it.
	var row struct {
		Status string
	}
	res := r.db.WithContext(ctx).Raw(`
		UPDATE donations
		SET refunded_amount = refunded_amount + ?,
		    status = CASE WHEN refunded_amount + ? >= net_amount THEN ? ELSE ? END,
		    updated_at = NOW()
		WHERE transaction_id = ? AND status IN ? AND net_amount - refunded_amount >= ?
		RETURNING status`,
		amount, amount,
		string(entity.DonationStatusRefunded), string(entity.DonationStatusPartialRefund),
		transactionId,
		[]string{string(entity.DonationStatusCompleted), string(entity.DonationStatusPartialRefund)},
		amount,
	).Scan(&row)
	if res.Error != nil {
		return false, "", res.Error
	}
	if res.RowsAffected == 0 {
		return false, "", nil
	}
	return true, entity.DonationStatus(row.Status), nil
}

func (r *DonationRepositoryImpl) TotalsForCampaign(ctx context.Context, campaignId string) (*contract.CampaignTotals, error) {
	var row struct {
		CurrentAmount    float64
		TotalDonors      int64
		CompletedCount   int64
		LastDonationDate *time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Select(`COALESCE(SUM(net_amount - refunded_amount), 0) AS current_amount,
			COUNT(DISTINCT donor_email) AS total_donors,
			COUNT(*) AS completed_count,
			MAX(completed_at) AS last_donation_date`).
		Where("campaign_id = ? AND status IN ?", campaignId, []string{
			string(entity.DonationStatusCompleted),
			string(entity.DonationStatusPartialRefund),
		}).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	totals := &contract.CampaignTotals{
		CurrentAmount:    row.CurrentAmount,
		TotalDonors:      row.TotalDonors,
		LastDonationDate: row.LastDonationDate,
	}
	if row.CompletedCount > 0 {
		totals.AverageDonation = row.CurrentAmount / float64(row.CompletedCount)
	}
	return totals, nil
}

func (r *DonationRepositoryImpl) AnnualTotalForDonor(ctx context.Context, donorEmail string, taxYear int) (float64, int64, error) {
	var row struct {
		Total float64
		Count int64
	}
	start := time.Date(taxYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	err := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Select("COALESCE(SUM(net_amount - refunded_amount), 0) AS total, COUNT(*) AS count").
		Where("donor_email = ? AND status IN ? AND completed_at >= ? AND completed_at < ?",
			donorEmail,
			[]string{string(entity.DonationStatusCompleted), string(entity.DonationStatusPartialRefund)},
			start, end,
		).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Count, nil
}
