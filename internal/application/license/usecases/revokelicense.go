package usecases

import (
	"context"
	"time"

	"keygate/internal/domain/license"
	"keygate/internal/domain/shared/events"
	"keygate/internal/shared/authorization"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// RevokeLicenseRequest removes a principal's license before expiry.
type RevokeLicenseRequest struct {
	ActorID     string `json:"actor_id" validate:"required"`
	PrincipalID string `json:"principal_id" validate:"required"`
}

// RevokeLicenseUseCase deletes a license. Admin only: revocation does not
// refund issuer quota, so it stays out of issuer hands.
type RevokeLicenseUseCase struct {
	licenseRepo  license.Repository
	roles        *authorization.Directory
	dispatcher   events.EventPublisher
	storeTimeout time.Duration
	logger       logger.Interface
}

func NewRevokeLicenseUseCase(
	licenseRepo license.Repository,
	roles *authorization.Directory,
	dispatcher events.EventPublisher,
	storeTimeout time.Duration,
	log logger.Interface,
) *RevokeLicenseUseCase {
	return &RevokeLicenseUseCase{
		licenseRepo:  licenseRepo,
		roles:        roles,
		dispatcher:   dispatcher,
		storeTimeout: storeTimeout,
		logger:       log,
	}
}

func (uc *RevokeLicenseUseCase) Execute(ctx context.Context, req RevokeLicenseRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if !uc.roles.RoleOf(req.ActorID).IsAdmin() {
		return errors.NewForbiddenError("only administrators may revoke licenses")
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	existed, err := uc.licenseRepo.Delete(storeCtx, req.PrincipalID)
	if err != nil {
		uc.logger.Errorw("license delete failed", "principal_id", req.PrincipalID, "error", err)
		if errors.IsTimeout(err) {
			return errors.NewUnavailableError("license store timed out")
		}
		return errors.NewInternalError("failed to revoke license", err.Error())
	}
	if !existed {
		return errors.NewNotFoundError("no license found for principal")
	}

	if uc.dispatcher != nil {
		event := license.NewRevokedEvent(req.PrincipalID, req.ActorID, biztime.NowUTC())
		if err := uc.dispatcher.Publish(event); err != nil {
			uc.logger.Warnw("event publish failed", "event_type", event.GetEventType(), "error", err)
		}
	}

	uc.logger.Infow("license revoked", "principal_id", req.PrincipalID, "actor_id", req.ActorID)
	return nil
}
