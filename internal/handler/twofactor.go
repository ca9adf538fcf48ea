package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoyda/auth-service/internal/constants"
	"github.com/yoyda/auth-service/internal/dto"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/service"
)

type TwoFactorHandler struct {
	twoFactor *service.TwoFactorService
}

func NewTwoFactorHandler(twoFactor *service.TwoFactorService) *TwoFactorHandler {
	return &TwoFactorHandler{twoFactor: twoFactor}
}

func (h *TwoFactorHandler) Enable(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.EnableTwoFaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	setup, err := h.twoFactor.BeginSetup(c.Request.Context(), user, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if setup.AlreadyEnabled {
		c.JSON(http.StatusOK, constants.BuildSuccessResponse("Two-factor authentication is already enabled", nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(
		"Two-factor setup started, confirm with a code from your authenticator app",
		dto.TwoFaSetupResponse{Secret: setup.Secret, ProvisioningURI: setup.ProvisioningURI},
	))
}

func (h *TwoFactorHandler) Activate(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.ActivateTwoFaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	codes, err := h.twoFactor.Activate(c.Request.Context(), user, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(
		"Two-factor authentication activated, store these recovery codes somewhere safe",
		dto.RecoveryCodesResponse{RecoveryCodes: codes},
	))
}

func (h *TwoFactorHandler) ShowRecoveryCodes(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	codes, err := h.twoFactor.ShowRecoveryCodes(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(
		"Recovery codes",
		dto.RecoveryCodesResponse{RecoveryCodes: codes},
	))
}

func (h *TwoFactorHandler) RegenerateRecoveryCodes(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	codes, err := h.twoFactor.RegenerateRecoveryCodes(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(
		"Recovery codes regenerated, previous codes are no longer valid",
		dto.RecoveryCodesResponse{RecoveryCodes: codes},
	))
}

func (h *TwoFactorHandler) Disable(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	if err := h.twoFactor.Disable(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Two-factor authentication disabled", nil))
}
