package specification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by primary key
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByTransactionId filters donations by ledger transaction id
type ByTransactionId struct {
	TransactionId string
}

func (s ByTransactionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("transaction_id = ?", s.TransactionId)
}

// ByStatus filters by a status column value
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByCampaign scopes to a campaign
type ByCampaign struct {
	CampaignId uuid.UUID
}

func (s ByCampaign) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("campaign_id = ?", s.CampaignId)
}

// ByDonorEmail scopes to one donor
type ByDonorEmail struct {
	Email string
}

func (s ByDonorEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("donor_email = ?", s.Email)
}

// DueBefore selects rows whose next_payment_date has passed
type DueBefore struct {
	At time.Time
}

func (s DueBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("next_payment_date <= ?", s.At)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}
