package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"keygate/internal/domain/license"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
)

// LicenseRepositoryImpl implements the license.Repository interface
type LicenseRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewLicenseRepository creates a new license repository instance
func NewLicenseRepository(db *gorm.DB, logger logger.Interface) license.Repository {
	return &LicenseRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the license for its principal, replacing any existing row.
// The unique index on license_key makes a generated-key collision surface
// as a conflict instead of silently attaching the key to two principals.
func (r *LicenseRepositoryImpl) Upsert(ctx context.Context, lic *license.License) error {
	model := &models.LicenseModel{
		PrincipalID:   lic.PrincipalID(),
		LicenseKey:    lic.Key(),
		IssuedAt:      lic.IssuedAt(),
		ExpiresAt:     lic.ExpiresAt(),
		EntitledAsset: lic.EntitledAsset(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "principal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"license_key", "issued_at", "expires_at", "entitled_asset", "updated_at",
			}),
		}).
		Create(model).Error
	if err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("license key already in use")
		}
		r.logger.Errorw("failed to upsert license",
			"principal_id", lic.PrincipalID(),
			"error", err)
		return fmt.Errorf("failed to upsert license: %w", err)
	}

	return nil
}

// GetByPrincipal loads the license for a principal.
func (r *LicenseRepositoryImpl) GetByPrincipal(ctx context.Context, principalID string) (*license.License, error) {
	var model models.LicenseModel
	if err := r.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, license.ErrLicenseNotFound
		}
		r.logger.Errorw("failed to get license", "principal_id", principalID, "error", err)
		return nil, fmt.Errorf("failed to get license: %w", err)
	}

	lic, err := license.ReconstructLicense(
		model.PrincipalID,
		model.LicenseKey,
		model.IssuedAt,
		model.ExpiresAt,
		model.EntitledAsset,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct license", "principal_id", principalID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct license: %w", err)
	}
	return lic, nil
}

// Delete removes a principal's license. Reports whether a row existed.
func (r *LicenseRepositoryImpl) Delete(ctx context.Context, principalID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		Delete(&models.LicenseModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete license", "principal_id", principalID, "error", result.Error)
		return false, fmt.Errorf("failed to delete license: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListExpired returns licenses whose expiry is at or before asOf. Rows that
// fail domain reconstruction are logged and skipped so one corrupt row
// cannot block the sweep.
func (r *LicenseRepositoryImpl) ListExpired(ctx context.Context, asOf time.Time) ([]*license.License, error) {
	var rows []models.LicenseModel
	if err := r.db.WithContext(ctx).
		Where("expires_at <= ?", asOf.UTC()).
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list expired licenses", "error", err)
		return nil, fmt.Errorf("failed to list expired licenses: %w", err)
	}

	licenses := make([]*license.License, 0, len(rows))
	for _, row := range rows {
		lic, err := license.ReconstructLicense(
			row.PrincipalID,
			row.LicenseKey,
			row.IssuedAt,
			row.ExpiresAt,
			row.EntitledAsset,
		)
		if err != nil {
			r.logger.Warnw("skipping malformed license row",
				"principal_id", row.PrincipalID,
				"error", err)
			continue
		}
		licenses = append(licenses, lic)
	}
	return licenses, nil
}
