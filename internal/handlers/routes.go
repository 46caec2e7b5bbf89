package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hightechgrafix/htg-shipping-tools/internal/metrics"
	"github.com/hightechgrafix/htg-shipping-tools/internal/middleware"
	"github.com/hightechgrafix/htg-shipping-tools/internal/repositories"
	"github.com/hightechgrafix/htg-shipping-tools/pkg/lambda"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	API     *API
	Health  repositories.HealthChecker
	Version string
}

// MiddlewareConfig holds the tunables of the global middleware
type MiddlewareConfig struct {
	AllowedOrigins   []string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxBodyBytes     int64
	SlowRequestAfter time.Duration
}

// SetupRoutes configures all routes. Endpoint paths are registered for every
// method so the pipeline, not gin, answers wrong methods with its own 405.
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	handler := GinHandler(config.API)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", healthHandler(config.Health, config.Version))

	for _, ep := range config.API.Endpoints() {
		router.Any(ep.Path, handler)
	}

	router.NoRoute(handler)
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *MiddlewareConfig, logger *logrus.Logger) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(config.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())

	if config.MaxBodyBytes > 0 {
		router.Use(middleware.RequestSizeLimit(config.MaxBodyBytes))
	}
	if config.RateLimitRPS > 0 {
		router.Use(middleware.RateLimiter(logger, config.RateLimitRPS, config.RateLimitBurst))
	}

	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PerformanceMonitor(logger, config.SlowRequestAfter))
	router.Use(middleware.AuditLogger(logger))
}

// GinHandler adapts the API pipeline to gin
func GinHandler(api *API) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			// Oversized bodies fail here once RequestSizeLimit has wrapped the reader
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "Request body too large",
				Code:  "REQUEST_TOO_LARGE",
			})
			return
		}

		req := lambda.FromHTTP(c.Request, body, c.GetString(middleware.RequestIDKey))
		resp, callerID := api.dispatch(c.Request.Context(), req)
		if callerID != "" {
			c.Set(middleware.UserIDKey, callerID)
		}

		for key, value := range resp.Headers {
			if key == "Content-Type" {
				continue
			}
			c.Header(key, value)
		}
		c.Data(resp.StatusCode, resp.Headers["Content-Type"], resp.Body)
	}
}

// @Summary Health check
// @Description Report process and storage health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthHandler(health repositories.HealthChecker, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{
			"status":  "healthy",
			"service": "htg-shipping-tools",
			"version": version,
		}

		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				status["status"] = "unhealthy"
				status["database"] = "unreachable"
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}

		c.JSON(http.StatusOK, status)
	}
}
