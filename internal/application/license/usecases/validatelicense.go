package usecases

import (
	"context"
	"time"

	"keygate/internal/domain/license"
	"keygate/internal/domain/shared/events"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// AssetLocator resolves an asset name to a delivery reference, typically a
// download URL. The empty name resolves to the default asset.
type AssetLocator interface {
	Resolve(name string) (string, bool)
}

// ValidateLicenseRequest carries one admission check from the public
// validation surface.
type ValidateLicenseRequest struct {
	PrincipalID  string `json:"principal_id" validate:"required"`
	PresentedKey string `json:"key" validate:"required"`
	AssetName    string `json:"asset_name"`
	RemoteIP     string `json:"-"`
}

// ValidateLicenseUseCase decides whether a presented key admits a principal
// to an asset. Checks run in a fixed order so a denial never leaks more
// than the earliest failing condition.
type ValidateLicenseUseCase struct {
	licenseRepo license.Repository
	locator     AssetLocator
	dispatcher  events.EventPublisher
	deadline    time.Duration
	logger      logger.Interface
}

func NewValidateLicenseUseCase(
	licenseRepo license.Repository,
	locator AssetLocator,
	dispatcher events.EventPublisher,
	deadline time.Duration,
	log logger.Interface,
) *ValidateLicenseUseCase {
	return &ValidateLicenseUseCase{
		licenseRepo: licenseRepo,
		locator:     locator,
		dispatcher:  dispatcher,
		deadline:    deadline,
		logger:      log,
	}
}

// Execute evaluates the admission checks. A denial is a normal outcome and
// returns a deny Decision with a nil error; only infrastructure failures
// return an error.
func (uc *ValidateLicenseUseCase) Execute(ctx context.Context, req ValidateLicenseRequest) (license.Decision, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return license.Decision{}, err
	}

	checkCtx, cancel := context.WithTimeout(ctx, uc.deadline)
	defer cancel()

	lic, err := uc.licenseRepo.GetByPrincipal(checkCtx, req.PrincipalID)
	if err != nil {
		if err == license.ErrLicenseNotFound {
			return uc.deny(req, license.DenyNotFound), nil
		}
		uc.logger.Errorw("license lookup failed",
			"principal_id", req.PrincipalID,
			"error", err,
		)
		if errors.IsTimeout(err) {
			return license.Decision{}, errors.NewUnavailableError("license store timed out")
		}
		return license.Decision{}, errors.NewInternalError("failed to load license", err.Error())
	}

	if !lic.MatchesKey(req.PresentedKey) {
		return uc.deny(req, license.DenyKeyMismatch), nil
	}
	if lic.IsExpiredAt(biztime.NowUTC()) {
		return uc.deny(req, license.DenyExpired), nil
	}
	if !lic.PermitsAsset(req.AssetName) {
		return uc.deny(req, license.DenyAssetNotAuthorized), nil
	}

	// Unnamed requests fall back to the license's entitled asset; the
	// locator itself falls back to the default catalog entry.
	assetName := req.AssetName
	if assetName == "" {
		assetName = lic.EntitledAsset()
	}
	assetRef, ok := uc.locator.Resolve(assetName)
	if !ok {
		uc.logger.Warnw("no asset reference for admitted principal",
			"principal_id", req.PrincipalID,
			"asset", assetName,
		)
		return uc.deny(req, license.DenyAssetUnavailable), nil
	}

	decision := license.Admit(assetRef)
	uc.publishOutcome(req, decision)
	return decision, nil
}

func (uc *ValidateLicenseUseCase) deny(req ValidateLicenseRequest, reason license.DenyReason) license.Decision {
	decision := license.Deny(reason)
	uc.publishOutcome(req, decision)
	return decision
}

func (uc *ValidateLicenseUseCase) publishOutcome(req ValidateLicenseRequest, decision license.Decision) {
	if uc.dispatcher == nil {
		return
	}
	event := license.NewValidatedEvent(req.PrincipalID, decision, req.AssetName, req.RemoteIP, biztime.NowUTC())
	if err := uc.dispatcher.Publish(event); err != nil {
		uc.logger.Warnw("event publish failed", "event_type", event.GetEventType(), "error", err)
	}
}
