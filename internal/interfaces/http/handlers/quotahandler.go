package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	quotaUsecases "keygate/internal/application/quota/usecases"
	"keygate/internal/interfaces/http/middleware"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

type setQuotaRequest struct {
	RemainingGrants *int `json:"remaining_grants" binding:"required"`
}

// QuotaHandler serves the authenticated quota command API.
type QuotaHandler struct {
	setUC  *quotaUsecases.SetQuotaUseCase
	getUC  *quotaUsecases.GetQuotaUseCase
	logger logger.Interface
}

func NewQuotaHandler(
	setUC *quotaUsecases.SetQuotaUseCase,
	getUC *quotaUsecases.GetQuotaUseCase,
	logger logger.Interface,
) *QuotaHandler {
	return &QuotaHandler{
		setUC:  setUC,
		getUC:  getUC,
		logger: logger,
	}
}

// Set handles PUT /api/quotas/:issuer_id
func (h *QuotaHandler) Set(c *gin.Context) {
	var req setQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.setUC.Execute(c.Request.Context(), quotaUsecases.SetQuotaRequest{
		ActorID:         middleware.ActorID(c),
		IssuerID:        c.Param("issuer_id"),
		RemainingGrants: *req.RemainingGrants,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "quota set", result)
}

// Get handles GET /api/quotas/:issuer_id
func (h *QuotaHandler) Get(c *gin.Context) {
	result, err := h.getUC.Execute(c.Request.Context(), quotaUsecases.GetQuotaRequest{
		ActorID:  middleware.ActorID(c),
		IssuerID: c.Param("issuer_id"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "quota found", result)
}
