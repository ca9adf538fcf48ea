package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yoyda/auth-service/internal/constants"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// ContextMiddleware seeds every request context with a request id, client
// metadata and a start time, then logs request start and completion.
func ContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestInfo(
			c.Request.Context(),
			requestID,
			c.ClientIP(),
			c.GetHeader("User-Agent"),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderXRequestID, requestID)

		logger.InfoWithContext(ctx, "Request started").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Log()

		c.Next()

		logger.InfoWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()
	}
}

// RequestTimeoutMiddleware caps how long a request context stays live.
func RequestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := ctxutil.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
