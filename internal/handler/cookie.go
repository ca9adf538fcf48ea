package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoyda/auth-service/config"
	"github.com/yoyda/auth-service/internal/constants"
)

func sameSiteFromConfig(policy string) http.SameSite {
	switch policy {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// setPendingTwoFaCookie installs the encrypted pending-2FA cookie with the
// fifteen-minute window it enforces internally as well.
func setPendingTwoFaCookie(c *gin.Context, cfg config.SessionConfig, value string) {
	c.SetSameSite(sameSiteFromConfig(cfg.CookieSameSite))
	c.SetCookie(
		constants.PendingTwoFaCookie,
		value,
		int(constants.PendingTwoFaTTL.Seconds()),
		"/",
		cfg.CookieDomain,
		cfg.CookieSecure,
		true,
	)
}

// clearPendingTwoFaCookie forgets the cookie. Called on every successful
// second-factor completion, whichever of the two paths was used.
func clearPendingTwoFaCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(sameSiteFromConfig(cfg.CookieSameSite))
	c.SetCookie(constants.PendingTwoFaCookie, "", -1, "/", cfg.CookieDomain, cfg.CookieSecure, true)
}
