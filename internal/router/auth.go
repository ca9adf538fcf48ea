package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yoyda/auth-service/internal/middleware"
)

func (r *Router) authRoutes(rg *gin.RouterGroup) {
	// Public routes
	rg.POST("/register", r.authHandler.Register)
	rg.POST("/login", r.authHandler.Login)
	rg.POST("/login-with-twofa", r.authHandler.LoginWithTwoFa)
	rg.POST("/login-with-recovery-code", r.authHandler.LoginWithRecoveryCode)
	rg.POST("/auth/google/callback", r.authHandler.GoogleLogin)
	rg.GET("/email/verify", r.authHandler.VerifyEmail)
	rg.POST("/resend-email-verification", r.authHandler.ResendVerification)
	rg.POST("/send-reset-password-instruction", r.authHandler.SendResetPasswordInstruction)
	rg.PATCH("/reset-password", r.authHandler.ResetPassword)

	// Routes behind a bearer token
	authed := rg.Group("")
	authed.Use(middleware.AuthRequired(r.tokens))
	{
		authed.POST("/logout", r.authHandler.Logout)
		authed.GET("/current-user-info", r.authHandler.CurrentUser)
		authed.GET("/current-user-sessions", r.sessionHandler.List)
		authed.DELETE("/current-user-sessions/:id", r.sessionHandler.Delete)
		authed.PATCH("/update-password", r.authHandler.UpdatePassword)

		authed.POST("/enable-2fa", r.twoFactorHandler.Enable)
		authed.POST("/activate-2fa", r.twoFactorHandler.Activate)
		authed.GET("/show-recovery-codes", r.twoFactorHandler.ShowRecoveryCodes)
		authed.GET("/regenerate-recovery-code", r.twoFactorHandler.RegenerateRecoveryCodes)
		authed.POST("/disable-twofa", r.twoFactorHandler.Disable)
	}
}
