package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-screener/internal/extract"
	"resume-screener/internal/history"
	"resume-screener/internal/llm/deepseek"
	"resume-screener/internal/maintenance"
	"resume-screener/internal/positions"
	"resume-screener/internal/screening"
	"resume-screener/internal/services/health"
	"resume-screener/internal/shared/auth"
	"resume-screener/internal/shared/config"
	"resume-screener/internal/shared/metrics"
	"resume-screener/internal/shared/server/middleware"
	"resume-screener/internal/shared/server/respond"
	"resume-screener/internal/shared/storage/db"
	"resume-screener/internal/shared/storage/localcache"
	"resume-screener/internal/shared/util"
	"resume-screener/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
// An unreachable database degrades persistence to the local cache.
func NewRouter(cfg config.Config) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	return newEngine(cfg, connectDatabase(cfg))
}

func connectDatabase(cfg config.Config) *sql.DB {
	if !cfg.HasDatabase() {
		return nil
	}
	conn, err := db.Open(context.Background(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		log.Printf("database unavailable, falling back to local cache: %v", err)
		return nil
	}
	return conn
}

func newEngine(cfg config.Config, sqlDB *sql.DB) (*gin.Engine, error) {
	cache, err := localcache.New(cfg.LocalCacheDir)
	if err != nil {
		return nil, fmt.Errorf("local cache: %w", err)
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.Env, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("session issuer: %w", err)
	}

	// Remote tiers stay untyped nil when there is no database.
	var (
		userRepo     users.Repo
		positionRepo positions.Repo
		historyRepo  history.Repo
		repairer     *maintenance.DateRepairer
	)
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		positionRepo = &positions.PGRepo{DB: sqlDB}
		historyRepo = &history.PGRepo{DB: sqlDB}
		repairer = &maintenance.DateRepairer{DB: sqlDB}
	}

	ids := util.NewIDSource(nil)
	userSvc := users.NewService(userRepo, cache, ids)
	positionSvc := positions.NewService(positionRepo, cache, ids)
	historySvc := history.NewService(historyRepo, cache, userSvc, ids)
	sessions := users.NewSessionRegistry(cache, nil)

	gateway := deepseek.New(deepseek.Config{
		APIKey:  cfg.LLMAPIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	orchestrator := &screening.Orchestrator{
		Extractor: screening.ExtractorFunc(extract.PDF),
		Analyzer:  gateway,
		History:   historySvc,
		Positions: positionSvc,
	}
	workspace := screening.NewWorkspace(nil)

	limiter := middleware.NewRateLimiter(time.Now)
	analyzeLimit := middleware.RateLimitRule{PerMinute: cfg.AnalyzeRatePerMin, Burst: cfg.AnalyzeRateBurst}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(respond.MethodNotAllowed)
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	ops := &maintenance.Handler{
		Repairer:    repairer,
		DatabaseURL: cfg.DatabaseURL,
		Env:         cfg.Env,
		Proxy:       gateway,
	}
	raw := r.Group("/api")
	raw.Any("/users", (&users.Endpoint{Repo: userRepo}).Serve)
	raw.Any("/positions", (&positions.Endpoint{Repo: positionRepo}).Serve)
	raw.Any("/history", (&history.Endpoint{Repo: historyRepo}).Serve)
	raw.Any("/analyze", middleware.RateLimit("proxy", analyzeLimit, limiter), ops.AnalyzeProxy)
	raw.GET("/test", ops.Diagnostics)
	raw.GET("/fix-dates", ops.FixDates)
	raw.POST("/fix-dates", ops.FixDates)

	api := r.Group("/api/v1")
	var pinger health.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	healthSvc := health.NewService(pinger)
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status(c.Request.Context()))
	})
	api.GET("/metrics", metrics.Handler())

	userHandler := users.NewHandler(userSvc, sessions, issuer)
	userHandler.RegisterPublic(api)

	protected := api.Group("", middleware.Auth(issuer, sessions))
	userHandler.RegisterRoutes(protected)
	positions.NewHandler(positionSvc).RegisterRoutes(protected)
	history.NewHandler(historySvc).RegisterRoutes(protected)
	screening.NewHandler(workspace, orchestrator).RegisterRoutes(protected,
		middleware.RateLimit("analyze", analyzeLimit, limiter))

	return r, nil
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
