package middleware

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yoyda/auth-service/internal/constants"
	"github.com/yoyda/auth-service/pkg/logger"
)

// LoggingMiddleware routes gin's access log through zap.
func LoggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			logger.LogRequest(
				param.Method,
				param.Path,
				param.StatusCode,
				param.Latency.Milliseconds(),
				param.ClientIP,
				param.Request.UserAgent(),
			)

			if param.ErrorMessage != "" {
				logger.GetLogger().Error("Request error",
					zap.String("error", param.ErrorMessage),
					zap.String("method", param.Method),
					zap.String("path", param.Path),
					zap.Int("status_code", param.StatusCode),
				)
			}

			if param.Latency > 2*time.Second {
				logger.GetLogger().Warn("Slow request detected",
					zap.String("method", param.Method),
					zap.String("path", param.Path),
					zap.Duration("latency", param.Latency),
				)
			}

			return ""
		},
		Output: io.Discard,
	})
}

// RecoveryMiddleware converts panics into a clean 500 envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.LogPanic(recovered)

		c.JSON(http.StatusInternalServerError,
			constants.BuildErrorResponse(constants.MsgInternalError))
	})
}
