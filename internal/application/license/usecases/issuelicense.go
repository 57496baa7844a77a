package usecases

import (
	"context"
	"time"

	"keygate/internal/application/license/dto"
	"keygate/internal/domain/license"
	"keygate/internal/domain/quota"
	"keygate/internal/domain/shared/events"
	"keygate/internal/shared/authorization"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// IssueLicenseRequest carries an issuance command. ActorID identifies the
// caller whose role and quota govern the grant; PrincipalID identifies the
// recipient.
type IssueLicenseRequest struct {
	ActorID     string `json:"actor_id" validate:"required"`
	PrincipalID string `json:"principal_id" validate:"required"`
	AssetName   string `json:"asset_name"`
}

// IssueLicenseUseCase grants a license to a principal, consuming one unit
// of the actor's quota unless the actor is quota-exempt.
type IssueLicenseUseCase struct {
	licenseRepo  license.Repository
	ledger       quota.Ledger
	roles        *authorization.Directory
	dispatcher   events.EventPublisher
	duration     time.Duration
	storeTimeout time.Duration
	logger       logger.Interface
}

func NewIssueLicenseUseCase(
	licenseRepo license.Repository,
	ledger quota.Ledger,
	roles *authorization.Directory,
	dispatcher events.EventPublisher,
	duration time.Duration,
	storeTimeout time.Duration,
	log logger.Interface,
) *IssueLicenseUseCase {
	return &IssueLicenseUseCase{
		licenseRepo:  licenseRepo,
		ledger:       ledger,
		roles:        roles,
		dispatcher:   dispatcher,
		duration:     duration,
		storeTimeout: storeTimeout,
		logger:       log,
	}
}

// Execute runs the grant flow: authorize the actor, consume quota when the
// actor is quota-bound, mint a key, and persist the license. A persistence
// failure after a successful quota decrement triggers a best-effort refund.
func (uc *IssueLicenseUseCase) Execute(ctx context.Context, req IssueLicenseRequest) (*dto.IssuedLicenseDTO, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	role := uc.roles.RoleOf(req.ActorID)
	if !role.CanIssue() {
		return nil, errors.NewForbiddenError("actor is not permitted to issue licenses")
	}

	quotaBound := role.QuotaBound()
	if quotaBound {
		ok, err := uc.decrementQuota(ctx, req.ActorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NewQuotaExhaustedError("issuer has no remaining grants")
		}
	}

	key, err := license.GenerateKey()
	if err != nil {
		uc.refundQuota(ctx, req.ActorID, quotaBound)
		uc.logger.Errorw("key generation failed", "error", err)
		return nil, errors.NewInternalError("failed to generate license key", err.Error())
	}

	lic, err := license.NewLicense(req.PrincipalID, key, biztime.NowUTC(), uc.duration, req.AssetName)
	if err != nil {
		uc.refundQuota(ctx, req.ActorID, quotaBound)
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	if err := uc.licenseRepo.Upsert(storeCtx, lic); err != nil {
		uc.refundQuota(ctx, req.ActorID, quotaBound)
		uc.logger.Errorw("license upsert failed",
			"principal_id", req.PrincipalID,
			"error", err,
		)
		if errors.IsConflictError(err) {
			return nil, err
		}
		if errors.IsTimeout(err) {
			return nil, errors.NewUnavailableError("license store timed out")
		}
		return nil, errors.NewInternalError("failed to store license", err.Error())
	}

	uc.publish(license.NewIssuedEvent(req.PrincipalID, req.ActorID, req.AssetName, lic.ExpiresAt(), quotaBound, biztime.NowUTC()))

	uc.logger.Infow("license issued",
		"principal_id", req.PrincipalID,
		"actor_id", req.ActorID,
		"asset", req.AssetName,
		"expires_at", lic.ExpiresAt(),
		"quota_bound", quotaBound,
	)
	return dto.NewIssuedLicenseDTO(lic, quotaBound), nil
}

func (uc *IssueLicenseUseCase) decrementQuota(ctx context.Context, actorID string) (bool, error) {
	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	ok, err := uc.ledger.Decrement(storeCtx, actorID)
	if err != nil {
		uc.logger.Errorw("quota decrement failed", "issuer_id", actorID, "error", err)
		if errors.IsTimeout(err) {
			return false, errors.NewUnavailableError("quota ledger timed out")
		}
		return false, errors.NewInternalError("failed to consume quota", err.Error())
	}
	return ok, nil
}

// refundQuota returns the consumed unit after a downstream failure. Best
// effort: a refund failure is logged, not surfaced, so the caller sees the
// original error.
func (uc *IssueLicenseUseCase) refundQuota(ctx context.Context, actorID string, quotaBound bool) {
	if !quotaBound {
		return
	}
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.storeTimeout)
	defer cancel()
	if err := uc.ledger.Increment(storeCtx, actorID); err != nil {
		uc.logger.Errorw("quota refund failed, counter may understate remaining grants",
			"issuer_id", actorID,
			"error", err,
		)
	}
}

func (uc *IssueLicenseUseCase) publish(event events.DomainEvent) {
	if uc.dispatcher == nil {
		return
	}
	if err := uc.dispatcher.Publish(event); err != nil {
		uc.logger.Warnw("event publish failed", "event_type", event.GetEventType(), "error", err)
	}
}
