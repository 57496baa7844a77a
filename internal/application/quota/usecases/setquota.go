package usecases

import (
	"context"
	"time"

	"keygate/internal/application/license/dto"
	"keygate/internal/domain/quota"
	"keygate/internal/domain/shared/events"
	"keygate/internal/shared/authorization"
	"keygate/internal/shared/biztime"
	"keygate/internal/shared/errors"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

// SetQuotaRequest replaces an issuer's remaining grant counter.
type SetQuotaRequest struct {
	ActorID         string `json:"actor_id" validate:"required"`
	IssuerID        string `json:"issuer_id" validate:"required"`
	RemainingGrants int    `json:"remaining_grants" validate:"gte=0"`
}

// SetQuotaUseCase assigns grant capacity to an issuer. Admin only.
type SetQuotaUseCase struct {
	ledger       quota.Ledger
	roles        *authorization.Directory
	dispatcher   events.EventPublisher
	storeTimeout time.Duration
	logger       logger.Interface
}

func NewSetQuotaUseCase(
	ledger quota.Ledger,
	roles *authorization.Directory,
	dispatcher events.EventPublisher,
	storeTimeout time.Duration,
	log logger.Interface,
) *SetQuotaUseCase {
	return &SetQuotaUseCase{
		ledger:       ledger,
		roles:        roles,
		dispatcher:   dispatcher,
		storeTimeout: storeTimeout,
		logger:       log,
	}
}

func (uc *SetQuotaUseCase) Execute(ctx context.Context, req SetQuotaRequest) (*dto.QuotaDTO, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if !uc.roles.RoleOf(req.ActorID).IsAdmin() {
		return nil, errors.NewForbiddenError("only administrators may set quotas")
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()
	if err := uc.ledger.Set(storeCtx, req.IssuerID, req.RemainingGrants); err != nil {
		uc.logger.Errorw("quota set failed", "issuer_id", req.IssuerID, "error", err)
		if errors.IsTimeout(err) {
			return nil, errors.NewUnavailableError("quota ledger timed out")
		}
		return nil, errors.NewInternalError("failed to set quota", err.Error())
	}

	if uc.dispatcher != nil {
		event := quota.NewSetEvent(req.IssuerID, req.ActorID, req.RemainingGrants, biztime.NowUTC())
		if err := uc.dispatcher.Publish(event); err != nil {
			uc.logger.Warnw("event publish failed", "event_type", event.GetEventType(), "error", err)
		}
	}

	uc.logger.Infow("quota set",
		"issuer_id", req.IssuerID,
		"actor_id", req.ActorID,
		"remaining_grants", req.RemainingGrants,
	)
	return &dto.QuotaDTO{IssuerID: req.IssuerID, RemainingGrants: req.RemainingGrants}, nil
}
