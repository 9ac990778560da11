// Package mockapi is a development stub of the marketplace backend. It serves
// the endpoint shapes page code expects at {base}/api/{endpoint} so front-end
// work and integration tests do not depend on a live deployment.
package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/propmarket/apicore/internal/utils/config"
	"github.com/propmarket/apicore/internal/utils/logger"
)

// Option tweaks router behavior.
type Option func(*routerOptions)

type routerOptions struct {
	warmup time.Duration
}

// WithWarmup makes every non-health endpoint answer 503 with a
// "Database not initialized" body until the warmup period has elapsed,
// mimicking a backend whose database is still starting.
func WithWarmup(d time.Duration) Option {
	return func(o *routerOptions) {
		o.warmup = d
	}
}

func setupCORS(r *gin.Engine, cfg *config.AppConfig) {
	corsOrigins := strings.Split(cfg.ApiServer.AllowedOrigins, ";")
	r.Use(func(c *gin.Context) {
		cors.New(
			cors.Config{
				AllowOrigins: corsOrigins,
				AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
				AllowHeaders: []string{
					"Origin", "Host", "Content-Type", "Content-Length", "Accept-Encoding", "Accept-Language", "Accept",
					"X-CSRF-Token", "Authorization", "X-Requested-With", "X-Access-Token",
				},
				AllowCredentials: true,
			},
		)(c)
	})
}

// NewRouter builds the stub backend engine.
func NewRouter(appConfig *config.AppConfig, logger *logger.Logger, opts ...Option) *gin.Engine {
	options := &routerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	r := gin.New()
	r.Use(
		gin.LoggerWithWriter(gin.DefaultWriter, "/api/health"),
		gin.Recovery(),
	)
	setupCORS(r, appConfig)

	if options.warmup > 0 {
		ready := time.Now().Add(options.warmup)
		r.Use(func(c *gin.Context) {
			if c.Request.URL.Path != "/api/health" && time.Now().Before(ready) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"success": false,
					"error":   "Database not initialized",
				})
				return
			}
			c.Next()
		})
	}

	loadRoutes(r, logger)

	return r
}

type broadcastRequest struct {
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Audience string `json:"audience"`
}

func loadRoutes(r *gin.Engine, logger *logger.Logger) {
	api := r.Group("/api")

	// Readiness probes only need a 2xx; no body required.
	api.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	api.GET("/categories", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": []gin.H{
				{"id": 1, "name": "Apartments", "slug": "apartments"},
				{"id": 2, "name": "Houses", "slug": "houses"},
				{"id": 3, "name": "Commercial", "slug": "commercial"},
			},
		})
	})

	api.GET("/packages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": []gin.H{
				{"id": 1, "name": "Starter", "price": 0, "listings": 3},
				{"id": 2, "name": "Gold", "price": 49, "listings": 25},
				{"id": 3, "name": "Platinum", "price": 99, "listings": 100},
			},
		})
	})

	api.GET("/properties", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": []gin.H{
				{"id": 101, "title": "2BR apartment, city center", "price": 185000, "category": "apartments"},
				{"id": 102, "title": "Family house with garden", "price": 320000, "category": "houses"},
			},
		})
	})

	api.GET("/sliders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    []gin.H{},
		})
	})

	api.POST("/notifications/broadcast", func(c *gin.Context) {
		var req broadcastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		logger.Info("broadcast accepted", map[string]string{
			"title":    req.Title,
			"audience": req.Audience,
		})

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Notification queued",
		})
	})
}
