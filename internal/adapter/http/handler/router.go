package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TxnSvc         ports.TransactionService
	Ledger         ports.Ledger
	LimitSvc       ports.LimitService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))

	transferHandler := NewTransferHandler(deps.TxnSvc)
	transfers := v1.Group("/transfers")
	{
		transfers.POST("", rl("transfers"), transferHandler.Initiate)
		transfers.GET("/:id", rl("reads"), transferHandler.Get)
		transfers.PUT("/:id/status", rl("settlements"), transferHandler.Settle)
	}

	accountHandler := NewAccountHandler(deps.TxnSvc, deps.Ledger)
	accounts := v1.Group("/accounts")
	{
		accounts.GET("/:id/balance", rl("reads"), accountHandler.GetBalance)
		accounts.POST("/:id/topup", rl("funding"), accountHandler.Topup)
		accounts.POST("/:id/withdraw", rl("funding"), accountHandler.Withdraw)
	}

	limitHandler := NewLimitHandler(deps.LimitSvc)
	v1.POST("/limits", rl("limits"), limitHandler.Configure)

	return r
}
