package usecases

import (
	"context"
	"time"

	"keygate/internal/application/license/dto"
	"keygate/internal/domain/quota"
	"keygate/internal/shared/authorization"
	"keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// GetQuotaRequest asks for an issuer's remaining grant counter.
type GetQuotaRequest struct {
	ActorID  string `json:"actor_id" validate:"required"`
	IssuerID string `json:"issuer_id" validate:"required"`
}

// GetQuotaUseCase reports remaining grants. Admins may inspect any issuer;
// issuers may only inspect themselves.
type GetQuotaUseCase struct {
	ledger       quota.Ledger
	roles        *authorization.Directory
	storeTimeout time.Duration
	logger       logger.Interface
}

func NewGetQuotaUseCase(
	ledger quota.Ledger,
	roles *authorization.Directory,
	storeTimeout time.Duration,
	log logger.Interface,
) *GetQuotaUseCase {
	return &GetQuotaUseCase{
		ledger:       ledger,
		roles:        roles,
		storeTimeout: storeTimeout,
		logger:       log,
	}
}

func (uc *GetQuotaUseCase) Execute(ctx context.Context, req GetQuotaRequest) (*dto.QuotaDTO, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	role := uc.roles.RoleOf(req.ActorID)
	if !role.IsAdmin() && req.ActorID != req.IssuerID {
		return nil, errors.NewForbiddenError("issuers may only inspect their own quota")
	}
	if !role.CanIssue() {
		return nil, errors.NewForbiddenError("actor is not permitted to inspect quotas")
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	remaining, err := uc.ledger.Remaining(storeCtx, req.IssuerID)
	if err != nil {
		uc.logger.Errorw("quota lookup failed", "issuer_id", req.IssuerID, "error", err)
		if errors.IsTimeout(err) {
			return nil, errors.NewUnavailableError("quota ledger timed out")
		}
		return nil, errors.NewInternalError("failed to load quota", err.Error())
	}

	return &dto.QuotaDTO{IssuerID: req.IssuerID, RemainingGrants: remaining}, nil
}
