package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Campaign metadata columns are maintained by the campaign service; this
// engine reads them and writes only the aggregate columns.
type Campaign struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string    `gorm:"type:varchar(255);not null"`
	Currency        string    `gorm:"type:varchar(3);not null"`
	GoalAmount      float64   `gorm:"type:decimal(12,2);default:0"`
	MinimumDonation float64   `gorm:"type:decimal(10,2);default:0"`
	AcceptsFrom     *time.Time
	AcceptsUntil    *time.Time
	IsActive        bool `gorm:"default:true"`

	Milestones       datatypes.JSON `gorm:"type:jsonb"`
	SuggestedAmounts datatypes.JSON `gorm:"type:jsonb"`

	// Aggregate projection columns.
	CurrentAmount    float64 `gorm:"type:decimal(12,2);default:0"`
	TotalDonors      int64   `gorm:"default:0"`
	AverageDonation  float64 `gorm:"type:decimal(10,2);default:0"`
	LastDonationDate *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Campaign) TableName() string {
	return "campaigns"
}
