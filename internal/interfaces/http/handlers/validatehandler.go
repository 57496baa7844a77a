package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	licenseUsecases "keygate/internal/application/license/usecases"
	"keygate/internal/domain/license"
	"keygate/internal/shared/logger"
)

// invalidBody is the only denial body the validation surface ever sends.
// Clients parse it verbatim; the status code carries the category and
// nothing else leaks.
const invalidBody = "INVALID"

// Field names are frozen: deployed client scripts send user_id and
// license_key and cannot be updated in lockstep with the server.
type validateRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	LicenseKey    string `json:"license_key" binding:"required"`
	ScriptRequest string `json:"script_request"`
}

// ValidateHandler serves the public validation endpoint. Plain-text
// responses only: admitted requests get the asset reference, everything
// else gets INVALID.
type ValidateHandler struct {
	validateUC *licenseUsecases.ValidateLicenseUseCase
	logger     logger.Interface
}

func NewValidateHandler(validateUC *licenseUsecases.ValidateLicenseUseCase, logger logger.Interface) *ValidateHandler {
	return &ValidateHandler{
		validateUC: validateUC,
		logger:     logger,
	}
}

// Validate handles POST /get_script
func (h *ValidateHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, invalidBody)
		return
	}

	decision, err := h.validateUC.Execute(c.Request.Context(), licenseUsecases.ValidateLicenseRequest{
		PrincipalID:  req.UserID,
		PresentedKey: req.LicenseKey,
		AssetName:    req.ScriptRequest,
		RemoteIP:     c.ClientIP(),
	})
	if err != nil {
		c.String(http.StatusInternalServerError, invalidBody)
		return
	}

	if decision.Admitted {
		c.String(http.StatusOK, decision.AssetRef)
		return
	}

	c.String(denialStatus(decision.Reason), invalidBody)
}

// denialStatus maps a deny reason to the legacy status codes. License
// denials are indistinguishable 403s; only a valid license whose asset
// cannot be served gets a 404.
func denialStatus(reason license.DenyReason) int {
	switch reason {
	case license.DenyAssetUnavailable:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}
