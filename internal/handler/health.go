package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yoyda/auth-service/pkg/logger"
	"github.com/yoyda/auth-service/pkg/redis"
)

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
}

type HealthCheckResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redisClient: redisClient}
}

// HealthCheck reports database and queue connectivity. Redis only carries
// the mail queue, so a Redis outage degrades the response without marking
// the service unhealthy.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]HealthCheck),
	}

	dbStatus := h.checkDatabase(ctx)
	response.Checks["database"] = dbStatus
	if dbStatus.Status != "healthy" {
		response.Status = "unhealthy"
	}

	response.Checks["redis"] = h.checkRedis(ctx)

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// BasicHealth is the cheap probe for load balancers.
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) HealthCheck {
	if h.db == nil {
		return HealthCheck{Status: "unhealthy", Message: "Database connection not initialized"}
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		logger.GetLogger().Error("Failed to get DB instance for health check", zap.Error(err))
		return HealthCheck{Status: "unhealthy", Message: "Failed to get database instance"}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		logger.GetLogger().Error("Database ping failed", zap.Error(err))
		return HealthCheck{Status: "unhealthy", Message: "Database ping failed"}
	}

	stats := sqlDB.Stats()
	return HealthCheck{
		Status:  "healthy",
		Message: fmt.Sprintf("open: %d, idle: %d", stats.OpenConnections, stats.Idle),
	}
}

func (h *HealthHandler) checkRedis(ctx context.Context) HealthCheck {
	if h.redisClient == nil {
		return HealthCheck{Status: "disabled", Message: "Redis not configured"}
	}

	if err := h.redisClient.Ping(ctx); err != nil {
		logger.GetLogger().Error("Redis ping failed", zap.Error(err))
		return HealthCheck{Status: "unhealthy", Message: "Redis ping failed"}
	}

	return HealthCheck{Status: "healthy"}
}
