package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokenized-asset-ledger/config"
	httpHandler "tokenized-asset-ledger/internal/adapter/http/handler"
	pgStorage "tokenized-asset-ledger/internal/adapter/storage/postgres"
	redisStorage "tokenized-asset-ledger/internal/adapter/storage/redis"
	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/internal/service"
	"tokenized-asset-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Tokenized Asset Ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	assetRepo := pgStorage.NewAssetRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	listingRepo := pgStorage.NewListingRepo(pool)
	complianceRepo := pgStorage.NewComplianceRepo(pool)
	stateRepo := pgStorage.NewStateRepo(pool)
	nativeRepo := pgStorage.NewNativeBalanceRepo(pool)
	accountRepo := pgStorage.NewAccountRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	assetCache := redisStorage.NewAssetCache(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Engine identities and height source
	params := ports.EngineParams{
		Contract: domain.Principal(cfg.Ledger.ContractAddress),
		Owner:    domain.Principal(cfg.Ledger.OwnerAddress),
	}
	genesis, err := cfg.Ledger.GenesisTime()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid genesis timestamp")
	}
	heights := service.NewIntervalHeightSource(genesis, cfg.Ledger.BlockInterval)

	// Seed the singleton ledger state row. Idempotent across restarts.
	if err := stateRepo.Init(ctx, params.Owner); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger state")
	}

	// Initialize host services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize engine services
	authSvc := service.NewAuthService(accountRepo, hashSvc, encSvc, tokenSvc)
	registrySvc := service.NewRegistryService(params, assetRepo, balanceRepo, stateRepo, assetCache, transactor, log)
	ledgerSvc := service.NewLedgerService(params, assetRepo, balanceRepo, transactor, log)
	nativeSvc := service.NewNativeService(nativeRepo, transactor, log)
	marketSvc := service.NewMarketService(assetRepo, balanceRepo, listingRepo, ledgerSvc, nativeSvc, transactor, log)
	complianceSvc := service.NewComplianceService(params, assetRepo, complianceRepo, stateRepo, transactor, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		RegistrySvc:    registrySvc,
		LedgerSvc:      ledgerSvc,
		MarketSvc:      marketSvc,
		ComplianceSvc:  complianceSvc,
		NativeSvc:      nativeSvc,
		Heights:        heights,
		AccountRepo:    accountRepo,
		EncSvc:         encSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
