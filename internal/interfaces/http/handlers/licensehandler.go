package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	licenseUsecases "keygate/internal/application/license/usecases"
	"keygate/internal/interfaces/http/middleware"
	"keygate/internal/shared/logger"
	"keygate/internal/shared/utils"
)

type issueLicenseRequest struct {
	PrincipalID string `json:"principal_id" binding:"required"`
	AssetName   string `json:"asset_name"`
}

// LicenseHandler serves the authenticated license command API.
type LicenseHandler struct {
	issueUC  *licenseUsecases.IssueLicenseUseCase
	revokeUC *licenseUsecases.RevokeLicenseUseCase
	getUC    *licenseUsecases.GetLicenseUseCase
	logger   logger.Interface
}

func NewLicenseHandler(
	issueUC *licenseUsecases.IssueLicenseUseCase,
	revokeUC *licenseUsecases.RevokeLicenseUseCase,
	getUC *licenseUsecases.GetLicenseUseCase,
	logger logger.Interface,
) *LicenseHandler {
	return &LicenseHandler{
		issueUC:  issueUC,
		revokeUC: revokeUC,
		getUC:    getUC,
		logger:   logger,
	}
}

// Issue handles POST /api/licenses
func (h *LicenseHandler) Issue(c *gin.Context) {
	var req issueLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.issueUC.Execute(c.Request.Context(), licenseUsecases.IssueLicenseRequest{
		ActorID:     middleware.ActorID(c),
		PrincipalID: req.PrincipalID,
		AssetName:   req.AssetName,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "license issued")
}

// Get handles GET /api/licenses/:principal_id
func (h *LicenseHandler) Get(c *gin.Context) {
	result, err := h.getUC.Execute(c.Request.Context(), licenseUsecases.GetLicenseRequest{
		ActorID:     middleware.ActorID(c),
		PrincipalID: c.Param("principal_id"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license found", result)
}

// Revoke handles DELETE /api/licenses/:principal_id
func (h *LicenseHandler) Revoke(c *gin.Context) {
	err := h.revokeUC.Execute(c.Request.Context(), licenseUsecases.RevokeLicenseRequest{
		ActorID:     middleware.ActorID(c),
		PrincipalID: c.Param("principal_id"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "license revoked", nil)
}
