package usecases

import (
	"context"
	"time"

	"keygate/internal/application/license/dto"
	"keygate/internal/domain/license"
	"keygate/internal/shared/authorization"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// GetLicenseRequest asks for a principal's license metadata.
type GetLicenseRequest struct {
	ActorID     string `json:"actor_id" validate:"required"`
	PrincipalID string `json:"principal_id" validate:"required"`
}

// GetLicenseUseCase returns issuer-visible license metadata. The key is
// never included; reissue if the principal lost it.
type GetLicenseUseCase struct {
	licenseRepo  license.Repository
	roles        *authorization.Directory
	storeTimeout time.Duration
	logger       logger.Interface
}

func NewGetLicenseUseCase(
	licenseRepo license.Repository,
	roles *authorization.Directory,
	storeTimeout time.Duration,
	log logger.Interface,
) *GetLicenseUseCase {
	return &GetLicenseUseCase{
		licenseRepo:  licenseRepo,
		roles:        roles,
		storeTimeout: storeTimeout,
		logger:       log,
	}
}

func (uc *GetLicenseUseCase) Execute(ctx context.Context, req GetLicenseRequest) (*dto.LicenseInfoDTO, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !uc.roles.RoleOf(req.ActorID).CanIssue() {
		return nil, errors.NewForbiddenError("actor is not permitted to inspect licenses")
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	lic, err := uc.licenseRepo.GetByPrincipal(storeCtx, req.PrincipalID)
	if err != nil {
		if err == license.ErrLicenseNotFound {
			return nil, errors.NewNotFoundError("no license found for principal")
		}
		uc.logger.Errorw("license lookup failed", "principal_id", req.PrincipalID, "error", err)
		if errors.IsTimeout(err) {
			return nil, errors.NewUnavailableError("license store timed out")
		}
		return nil, errors.NewInternalError("failed to load license", err.Error())
	}

	return dto.NewLicenseInfoDTO(lic, biztime.NowUTC()), nil
}
