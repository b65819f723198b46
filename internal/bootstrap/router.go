package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/devfolio/portfolio-api/internal/api/http"
	"github.com/devfolio/portfolio-api/internal/api/http/middleware"
	authhttp "github.com/devfolio/portfolio-api/internal/auth/http"
	authmw "github.com/devfolio/portfolio-api/internal/auth/middleware"
	"github.com/devfolio/portfolio-api/internal/contact"
	projecthttp "github.com/devfolio/portfolio-api/internal/projects/http"
)

const serviceName = "portfolio-api"

type RouterDeps struct {
	App      *App
	Registry *prometheus.Registry
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	app, cfg := dep.App, dep.App.Config

	reg := dep.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	r := gin.New()
	if !cfg.Server.TrustProxy {
		// rate limits key on ClientIP; never take it from forwarded headers
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(app.Log.Named("http")))
	r.Use(middleware.NewMetrics(reg).Handler())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var cache httpapi.Pinger
	if app.Redis != nil {
		cache = httpapi.PingFunc(func(ctx context.Context) error { return app.Redis.Ping(ctx).Err() })
	}
	httpapi.NewHealthHandler(serviceName, cfg.App.Version, app.Stores, cache).RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	if cfg.Storage.Backend == "local" {
		r.Static(cfg.Storage.UploadURLPrefix, cfg.Storage.UploadDir)
	}

	api := r.Group("/api/v1")

	requireAuth := authmw.RequireAuth(app.Auth)
	authLimit := middleware.NewRateLimiter(5, 15*time.Minute)
	authhttp.New(app.Auth).Register(api.Group("/auth"), authLimit.Handler(), requireAuth)

	projecthttp.New(app.Projects, app.Log.Named("projects")).
		Register(api.Group("/projects"), requireAuth, authmw.RequireAdmin())

	contactLimit := middleware.NewRateLimiter(5, time.Hour)
	contact.NewHandler(app.Contact).Register(api.Group("/contact"), contactLimit.Handler())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "kind": "NotFound", "error": "route not found"})
	})

	return r
}
