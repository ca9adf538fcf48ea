package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoyda/auth-service/config"
	"github.com/yoyda/auth-service/internal/constants"
	"github.com/yoyda/auth-service/internal/dto"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/middleware"
	"github.com/yoyda/auth-service/internal/model"
	"github.com/yoyda/auth-service/internal/service"
)

// AuthHandler exposes registration, the three login paths, logout and the
// password flows.
type AuthHandler struct {
	auth         *service.AuthService
	users        *service.UserService
	verification *service.VerificationService
	cookies      config.SessionConfig
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService, verification *service.VerificationService, cookies config.SessionConfig) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, verification: verification, cookies: cookies}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildSuccessResponse(
		"Registration successful, please verify your email address",
		gin.H{"user": toUserResponse(user)},
	))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, clientInfo(c, req.DeviceType))
	if err != nil {
		respondError(c, err)
		return
	}

	if result.TwoFaRequired {
		setPendingTwoFaCookie(c, h.cookies, result.PendingCookie)
		c.JSON(http.StatusOK, constants.BuildSuccessResponse(
			"Two-factor authentication required",
			dto.PendingTwoFaResponse{TwoFaRequired: true},
		))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Login successful", loginResponse(result)))
}

func (h *AuthHandler) LoginWithTwoFa(c *gin.Context) {
	var req dto.TwoFaLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	cookie, _ := c.Cookie(constants.PendingTwoFaCookie)
	result, err := h.auth.LoginWithTwoFa(c.Request.Context(), cookie, req.TwoFactorCode, clientInfo(c, req.DeviceType))
	if err != nil {
		respondError(c, err)
		return
	}

	clearPendingTwoFaCookie(c, h.cookies)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Login successful", loginResponse(result)))
}

func (h *AuthHandler) LoginWithRecoveryCode(c *gin.Context) {
	var req dto.RecoveryLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	cookie, _ := c.Cookie(constants.PendingTwoFaCookie)
	result, err := h.auth.LoginWithRecoveryCode(c.Request.Context(), cookie, req.Code, clientInfo(c, req.DeviceType))
	if err != nil {
		respondError(c, err)
		return
	}

	clearPendingTwoFaCookie(c, h.cookies)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Login successful", loginResponse(result)))
}

func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.auth.GoogleLogin(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Google authentication successful", loginResponse(result)))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := currentToken(c)
	if token == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Logged out", nil))
}

func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Current user", gin.H{"user": toUserResponse(user)}))
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		respondError(c, apperrors.ErrInvalidToken)
		return
	}

	user, err := h.verification.VerifyEmail(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(
		"Email verified successfully",
		gin.H{"user": toUserResponse(user)},
	))
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.verification.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Verification email sent", nil))
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Password updated", nil))
}

func (h *AuthHandler) SendResetPasswordInstruction(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.verification.SendResetPasswordInstruction(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Password reset instructions sent", nil))
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.verification.ResetPassword(c.Request.Context(), req.Email, req.Token, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Password has been reset", nil))
}

func clientInfo(c *gin.Context, deviceType string) service.ClientInfo {
	return service.ClientInfo{
		IP:         c.ClientIP(),
		UserAgent:  c.GetHeader(constants.HeaderUserAgent),
		DeviceType: deviceType,
	}
}

func loginResponse(result *service.LoginResult) dto.LoginResponse {
	return dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.User),
	}
}

func currentUser(c *gin.Context) *model.User {
	if value, exists := c.Get(middleware.GinKeyUser); exists {
		if user, ok := value.(*model.User); ok {
			return user
		}
	}
	return nil
}

func currentToken(c *gin.Context) *model.AccessToken {
	if value, exists := c.Get(middleware.GinKeyToken); exists {
		if token, ok := value.(*model.AccessToken); ok {
			return token
		}
	}
	return nil
}
