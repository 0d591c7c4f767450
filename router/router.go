package router

import (
	"net/http"

	"github.com/NomadCrew/nomad-feedback-backend/config"
	"github.com/NomadCrew/nomad-feedback-backend/handlers"
	"github.com/NomadCrew/nomad-feedback-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config          *config.Config
	FeedbackHandler *handlers.FeedbackHandler
	ChatHandler     *handlers.ChatHandler
	HealthHandler   *handlers.HealthHandler
	// HTTPMetrics is optional; without it requests are not instrumented.
	HTTPMetrics *middleware.HTTPMetrics
	// MetricsHandler serves /metrics. Defaults to the default Prometheus registry.
	MetricsHandler http.Handler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware())
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(&deps.Config.Server))

	// Health and Metrics Routes
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.HEAD("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.HEAD("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(metricsHandler))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group(deps.Config.Server.BasePath)
	{
		feedbackRoutes := api.Group("/feedback")
		{
			feedbackRoutes.GET("", deps.FeedbackHandler.ListFeedback)
			feedbackRoutes.POST("", deps.FeedbackHandler.CreateFeedback)
			feedbackRoutes.PUT("/:id", deps.FeedbackHandler.UpdateFeedbackStatus)
			feedbackRoutes.DELETE("/:id", deps.FeedbackHandler.DeleteFeedback)
		}

		api.POST("/chat", deps.ChatHandler.Chat)
	}

	return r
}
