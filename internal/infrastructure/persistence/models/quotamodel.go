package models

import (
	"time"

	"keygate/internal/shared/constants"
)

// QuotaModel is the database persistence model for issuer grant counters.
type QuotaModel struct {
	ID              uint   `gorm:"primarykey"`
	IssuerID        string `gorm:"not null;size:64;uniqueIndex:idx_unique_issuer"`
	RemainingGrants int    `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (QuotaModel) TableName() string {
	return constants.TableQuotas
}
