package router

import (
	"net/http"
	"time"

	apphttp "realaddress_backend/internal/http"
	"realaddress_backend/platform/config"
	"realaddress_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// New builds the gin engine: global middleware, health and metrics
// endpoints, then every module's routes under /api.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	metricsOn := app.Metrics != nil && app.Config.IsMetricsEnabled()
	if metricsOn {
		engine.Use(app.Metrics.Middleware())
		engine.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	}

	api := engine.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limiter := httpkit.NewIPRateLimiter(rate.Limit(app.Config.GetRateLimitRPS()), app.Config.GetRateLimitBurst(), app.Logger)
	limited := api.Group("")
	limited.Use(limiter.RateLimit())

	rc := &apphttp.RouterContext{
		Engine: engine,
		API:    limited,
	}
	for _, module := range app.Modules {
		app.Logger.Debug("registering module routes", "module", module.Name())
		module.RegisterRoutes(rc)
	}

	return engine
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	switch {
	case cfg.GetCORSAllowAll():
		c.AllowAllOrigins = true
	case len(cfg.GetCORSOrigins()) == 0:
		c.AllowOriginFunc = func(string) bool { return false }
	default:
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}
