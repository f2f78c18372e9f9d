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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CampaignRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CampaignMapper
}

func NewCampaignRepository(db *gorm.DB) contract.CampaignRepository {
	return &CampaignRepositoryImpl{
		db:     db,
		mapper: mapper.NewCampaignMapper(),
	}
}

func (r *CampaignRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *CampaignRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Campaign, error) {
	var m model.Campaign
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// FindAllIds lists campaign ids for the recompute pass.
func (r *CampaignRepositoryImpl) FindAllIds(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ApplyDelta is an additive upsert on the hottest row in the system.
// current_amount = current_amount + ? keeps concurrent donations to the
// same campaign from losing updates the way read-modify-write would.
func (r *CampaignRepositoryImpl) ApplyDelta(ctx context.Context, campaignId string, delta float64, donationAt *time.Time) error {
	updates := map[string]interface{}{
		"current_amount": gorm.Expr("current_amount + ?", delta),
		"updated_at":     time.Now(),
	}
	if donationAt != nil {
		updates["last_donation_date"] = gorm.Expr(
			"GREATEST(COALESCE(last_donation_date, 'epoch'::timestamptz), ?)", *donationAt)
	}
	return r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("id = ?", campaignId).
		Updates(updates).Error
}

// OverwriteAggregate installs the recomputed authoritative values. Plain
// overwrite is correct here: the recompute is the source of truth and any
// racing increment will be folded in by the next recompute.
func (r *CampaignRepositoryImpl) OverwriteAggregate(ctx context.Context, campaignId string, totals *contract.CampaignTotals) error {
	return r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("id = ?", campaignId).
		Updates(map[string]interface{}{
			"current_amount":     totals.CurrentAmount,
			"total_donors":       totals.TotalDonors,
			"average_donation":   totals.AverageDonation,
			"last_donation_date": totals.LastDonationDate,
			"updated_at":         time.Now(),
		}).Error
}
