package handler

import (
	"tokenized-asset-ledger/internal/adapter/http/middleware"
	redisStore "tokenized-asset-ledger/internal/adapter/storage/redis"
	"tokenized-asset-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	RegistrySvc    ports.RegistryService
	LedgerSvc      ports.LedgerService
	MarketSvc      ports.MarketService
	ComplianceSvc  ports.ComplianceService
	NativeSvc      ports.NativeService
	Heights        ports.HeightSource
	AccountRepo    ports.AccountRepository
	EncSvc         ports.EncryptionService
	SigSvc         ports.SignatureService
	NonceStore     ports.NonceStore
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit journal disabled
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

	// Audit journal (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep, verifies PostgreSQL and Redis)
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
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- HMAC-authenticated routes (mutating ledger calls) ---
	hmacAuth := middleware.HMACAuth(deps.AccountRepo, deps.EncSvc, deps.SigSvc, deps.NonceStore, deps.Logger)
	assetHandler := NewAssetHandler(deps.RegistrySvc, deps.LedgerSvc, deps.Heights)
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc, deps.Heights)
	marketHandler := NewMarketHandler(deps.MarketSvc, deps.Heights)
	complianceHandler := NewComplianceHandler(deps.ComplianceSvc, deps.Heights)
	nativeHandler := NewNativeHandler(deps.NativeSvc, deps.Heights)

	assets := v1.Group("/assets", hmacAuth)
	{
		assets.POST("", rl("registry"), assetHandler.Register)
		assets.POST("/:id/mint", rl("registry"), assetHandler.Mint)
	}

	v1.POST("/transfers", hmacAuth, rl("transfers"), ledgerHandler.Transfer)

	market := v1.Group("/market", hmacAuth)
	{
		market.POST("/listings", rl("market"), marketHandler.List)
		market.POST("/buy", rl("market"), marketHandler.Buy)
	}

	compliance := v1.Group("/compliance", hmacAuth)
	{
		compliance.PUT("/authority", rl("compliance"), complianceHandler.SetAuthority)
		compliance.POST("/approvals", rl("compliance"), complianceHandler.ApproveUser)
	}

	v1.POST("/native/deposit", hmacAuth, rl("native"), nativeHandler.Deposit)

	// --- JWT-authenticated routes (read-only queries) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	queries := v1.Group("", jwtAuth)
	{
		queries.GET("/height", rl("queries"), ledgerHandler.Height)
		queries.GET("/assets/:id", rl("queries"), assetHandler.GetAsset)
		queries.GET("/assets/:id/balances/:address", rl("queries"), assetHandler.GetBalance)
		queries.GET("/market/listings/:id/:seller", rl("queries"), marketHandler.GetListing)
		queries.GET("/compliance/approvals/:id/:address", rl("queries"), complianceHandler.GetApproval)
		queries.GET("/native/balance", rl("queries"), nativeHandler.GetBalance)
	}

	return r
}
