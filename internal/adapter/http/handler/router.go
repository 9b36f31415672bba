package handler

import (
	"solana-deposit-engine/internal/adapter/http/middleware"
	redisStore "solana-deposit-engine/internal/adapter/storage/redis"
	"solana-deposit-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	SnapshotSvc    ports.SnapshotService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis + chain RPC)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes (operator views) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	ledgerHandler := NewLedgerHandler(deps.SnapshotSvc)

	ledger := v1.Group("/ledger", jwtAuth)
	{
		ledger.GET("", rl("admin"), ledgerHandler.List)
		ledger.GET("/:user_id", rl("admin"), ledgerHandler.Get)
	}

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("", rl("admin"), ledgerHandler.Wallets)
	}

	return r
}
