package usecases

import (
	"context"
	"time"

	"keygate/internal/domain/license"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/logger"
)

// PurgeExpiredLicensesUseCase removes licenses that expired before the
// retention window. Run periodically by the sweeper; validation already
// denies expired keys, so retention only bounds table growth.
type PurgeExpiredLicensesUseCase struct {
	licenseRepo license.Repository
	retention   time.Duration
	logger      logger.Interface
}

func NewPurgeExpiredLicensesUseCase(
	licenseRepo license.Repository,
	retention time.Duration,
	log logger.Interface,
) *PurgeExpiredLicensesUseCase {
	return &PurgeExpiredLicensesUseCase{
		licenseRepo: licenseRepo,
		retention:   retention,
		logger:      log,
	}
}

// Execute purges one batch and returns how many licenses were removed.
// Individual delete failures are logged and skipped so one bad row cannot
// stall the sweep.
func (uc *PurgeExpiredLicensesUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := biztime.NowUTC().Add(-uc.retention)

	expired, err := uc.licenseRepo.ListExpired(ctx, cutoff)
	if err != nil {
		uc.logger.Errorw("expired license listing failed", "error", err)
		return 0, err
	}

	purged := 0
	for _, lic := range expired {
		if ctx.Err() != nil {
			return purged, ctx.Err()
		}
		existed, err := uc.licenseRepo.Delete(ctx, lic.PrincipalID())
		if err != nil {
			uc.logger.Warnw("expired license delete failed",
				"principal_id", lic.PrincipalID(),
				"error", err,
			)
			continue
		}
		if existed {
			purged++
		}
	}

	if purged > 0 {
		uc.logger.Infow("expired licenses purged", "count", purged, "cutoff", cutoff)
	}
	return purged, nil
}
