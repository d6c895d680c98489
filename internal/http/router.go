package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roadcheck/inspecthub/internal/auth"
	"github.com/roadcheck/inspecthub/internal/config"
	"github.com/roadcheck/inspecthub/internal/http/handlers"
	"github.com/roadcheck/inspecthub/internal/http/middlewares"
	"github.com/roadcheck/inspecthub/internal/observability"
	"github.com/roadcheck/inspecthub/internal/redisclient"
	"github.com/roadcheck/inspecthub/internal/repo/postgres"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxRequestBody = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterCustomValidators()

	r := gin.New()

	// metrics live on a per-router registry so tests can build routers freely
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware, ordered: hardening first, then identity/logging
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	}

	r.Use(middlewares.MaxBodyBytes(maxRequestBody))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("inspecthub"))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	inspectionsRepo := postgres.NewInspectionsRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	inspectionsHandler := handlers.NewInspectionsHandler(inspectionsRepo)

	authMiddleware := middlewares.NewAuthMiddleware(jwtManager)

	api := r.Group("/api")

	// signup/login carry a redis-backed limiter when redis is configured
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		limiter := middlewares.NewRateLimiter(rdb.Raw(), cfg.RateLimitAuth, cfg.RateLimitWindow)

		api.POST("/signup", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.SignUp)
		api.POST("/login", limiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	} else {
		api.POST("/signup", authHandler.SignUp)
		api.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())

	protected.GET("/profile", authHandler.Profile)
	protected.POST("/inspection", inspectionsHandler.CreateInspection)
	protected.GET("/inspection", inspectionsHandler.ListInspections)
	protected.GET("/inspection/:id", inspectionsHandler.GetInspection)
	protected.PATCH("/inspection/:id", inspectionsHandler.UpdateInspectionStatus)

	return r
}
