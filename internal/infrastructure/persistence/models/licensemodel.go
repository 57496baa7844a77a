package models

import (
	"time"

	"keygate/internal/shared/constants"
)

// LicenseModel is the database persistence model for licenses. This is the
// anti-corruption layer between domain and database. One row per principal;
// reissuing replaces the row in place.
type LicenseModel struct {
	ID            uint      `gorm:"primarykey"`
	PrincipalID   string    `gorm:"not null;size:64;uniqueIndex:idx_unique_principal"`
	LicenseKey    string    `gorm:"not null;size:32;uniqueIndex:idx_unique_license_key"`
	IssuedAt      time.Time `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"not null;index:idx_expires_at"`
	EntitledAsset string    `gorm:"size:64"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (LicenseModel) TableName() string {
	return constants.TableLicenses
}
