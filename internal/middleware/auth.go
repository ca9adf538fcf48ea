package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yoyda/auth-service/internal/constants"
	apperrors "github.com/yoyda/auth-service/internal/errors"
	"github.com/yoyda/auth-service/internal/service"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// Gin context keys set by AuthRequired.
const (
	GinKeyUser  = "auth_user"
	GinKeyToken = "auth_token"
)

// AuthRequired resolves the bearer token and stores the owning user and
// token row on the gin context. Expired tokens are distinguished from
// invalid ones so clients know to re-login rather than retry.
func AuthRequired(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		bearer, found := strings.CutPrefix(header, "Bearer ")
		if !found || bearer == "" {
			respondError(c, apperrors.ErrUnauthenticated)
			c.Abort()
			return
		}

		user, token, err := tokens.ResolveBearer(c.Request.Context(), bearer)
		if err != nil {
			logger.WarnWithContext(c.Request.Context(), "Bearer token rejected").
				String("path", c.Request.URL.Path).
				Err(err).
				Log()
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(GinKeyUser, user)
		c.Set(GinKeyToken, token)

		ctx := ctxutil.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func respondError(c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)
	c.JSON(status, constants.BuildErrorResponse(apperrors.GetErrorMessage(err)))
}
