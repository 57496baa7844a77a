package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"keygate/internal/domain/quota"
	"keygate/internal/infrastructure/persistence/models"
	"keygate/internal/shared/logger"
)

// QuotaRepositoryImpl implements the quota.Ledger interface
type QuotaRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewQuotaRepository creates a new quota ledger instance
func NewQuotaRepository(db *gorm.DB, logger logger.Interface) quota.Ledger {
	return &QuotaRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Remaining reads an issuer's counter. An issuer without a row has zero
// grants; that is not an error.
func (r *QuotaRepositoryImpl) Remaining(ctx context.Context, issuerID string) (int, error) {
	var model models.QuotaModel
	if err := r.db.WithContext(ctx).
		Where("issuer_id = ?", issuerID).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		r.logger.Errorw("failed to get quota", "issuer_id", issuerID, "error", err)
		return 0, fmt.Errorf("failed to get quota: %w", err)
	}
	return model.RemainingGrants, nil
}

// Decrement consumes one grant. The conditional UPDATE makes the
// check-and-decrement a single atomic statement, so concurrent issuers can
// never drive the counter below zero. Zero rows affected means the counter
// was already zero or the issuer is unknown.
func (r *QuotaRepositoryImpl) Decrement(ctx context.Context, issuerID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.QuotaModel{}).
		Where("issuer_id = ? AND remaining_grants > 0", issuerID).
		Update("remaining_grants", gorm.Expr("remaining_grants - ?", 1))
	if result.Error != nil {
		r.logger.Errorw("failed to decrement quota", "issuer_id", issuerID, "error", result.Error)
		return false, fmt.Errorf("failed to decrement quota: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Increment returns one grant to the issuer. Used only to compensate a
// failed issuance after a successful decrement; an issuer without a row
// gets one created so the refund is never dropped.
func (r *QuotaRepositoryImpl) Increment(ctx context.Context, issuerID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.QuotaModel{}).
		Where("issuer_id = ?", issuerID).
		Update("remaining_grants", gorm.Expr("remaining_grants + ?", 1))
	if result.Error != nil {
		r.logger.Errorw("failed to increment quota", "issuer_id", issuerID, "error", result.Error)
		return fmt.Errorf("failed to increment quota: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.Set(ctx, issuerID, 1)
	}
	return nil
}

// Set replaces an issuer's counter, creating the row when absent.
func (r *QuotaRepositoryImpl) Set(ctx context.Context, issuerID string, remaining int) error {
	if remaining < 0 {
		return fmt.Errorf("remaining grants must not be negative: %d", remaining)
	}

	model := &models.QuotaModel{
		IssuerID:        issuerID,
		RemainingGrants: remaining,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "issuer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"remaining_grants", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to set quota", "issuer_id", issuerID, "error", err)
		return fmt.Errorf("failed to set quota: %w", err)
	}
	return nil
}
