package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yoyda/auth-service/config"
	"github.com/yoyda/auth-service/internal/handler"
	"github.com/yoyda/auth-service/internal/middleware"
	"github.com/yoyda/auth-service/internal/service"
)

type Router struct {
	authHandler      *handler.AuthHandler
	twoFactorHandler *handler.TwoFactorHandler
	sessionHandler   *handler.SessionHandler
	healthHandler    *handler.HealthHandler

	tokens *service.TokenService
	config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	twoFactor *handler.TwoFactorHandler,
	sessions *handler.SessionHandler,
	health *handler.HealthHandler,
	tokens *service.TokenService,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      auth,
		twoFactorHandler: twoFactor,
		sessionHandler:   sessions,
		healthHandler:    health,
		tokens:           tokens,
		config:           cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.ContextMiddleware())
	router.Use(middleware.RequestTimeoutMiddleware(r.config.App.Timeout))

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/detailed", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.config.RateLimit.Request, time.Duration(r.config.RateLimit.Duration)*time.Second))

			r.authRoutes(v1)
		}
	}

	return router
}
